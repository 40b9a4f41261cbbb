package domain

import "testing"

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"Admin", "Manager", "Executive"} {
		if _, ok := ParseRole(raw); !ok {
			t.Fatalf("expected %q to parse", raw)
		}
	}
	if _, ok := ParseRole("admin"); ok {
		t.Fatal("role tags are case sensitive")
	}
	if _, ok := ParseRole("Intern"); ok {
		t.Fatal("unknown role must not parse")
	}
}

func TestNewRoleSetEmptyMeansUnrestricted(t *testing.T) {
	set := NewRoleSet()
	if set != nil {
		t.Fatal("empty role list must produce a nil set")
	}
	if !set.Allows(RoleExecutive) {
		t.Fatal("nil set must allow any role")
	}
}

func TestRoleSetAllows(t *testing.T) {
	set := NewRoleSet(RoleAdmin, RoleManager)
	if !set.Allows(RoleAdmin) || !set.Allows(RoleManager) {
		t.Fatal("listed roles must pass")
	}
	if set.Allows(RoleExecutive) {
		t.Fatal("unlisted role must not pass")
	}
}

func TestRoleSetSliceStableOrder(t *testing.T) {
	got := NewRoleSet(RoleExecutive, RoleAdmin).Slice()
	if len(got) != 2 || got[0] != RoleAdmin || got[1] != RoleExecutive {
		t.Fatalf("unexpected order: %v", got)
	}
	if NewRoleSet().Slice() != nil {
		t.Fatal("unrestricted set must serialize as nil")
	}
}
