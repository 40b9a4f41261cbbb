package domain

import (
	"testing"

	dirdomain "github.com/niketshah083/lead-management-backend-sub002/internal/directory/domain"

	"github.com/google/uuid"
)

func edge(active bool, requiresComment bool, roles ...dirdomain.Role) *Edge {
	return &Edge{
		FromStatusID:    uuid.New(),
		ToStatusID:      uuid.New(),
		IsActive:        active,
		RequiresComment: requiresComment,
		AllowedRoles:    dirdomain.NewRoleSet(roles...),
	}
}

func TestDecideMissingEdgeDenies(t *testing.T) {
	decision := Decide(nil, dirdomain.RoleAdmin)
	if decision.Allowed {
		t.Fatal("missing edge must deny the move")
	}
	if decision.RequiresComment {
		t.Fatal("missing edge has no comment requirement")
	}
}

func TestDecideInactiveEdgeDeniesButMirrorsCommentFlag(t *testing.T) {
	decision := Decide(edge(false, true), dirdomain.RoleAdmin)
	if decision.Allowed {
		t.Fatal("inactive edge must deny the move")
	}
	if !decision.RequiresComment {
		t.Fatal("comment flag must mirror the edge regardless of allow/deny")
	}
}

func TestDecideRoleGate(t *testing.T) {
	restricted := edge(true, false, dirdomain.RoleAdmin, dirdomain.RoleManager)

	if got := Decide(restricted, dirdomain.RoleExecutive); got.Allowed {
		t.Fatal("executive must not pass an Admin/Manager edge")
	}
	if got := Decide(restricted, dirdomain.RoleManager); !got.Allowed {
		t.Fatal("manager must pass an Admin/Manager edge")
	}
	if got := Decide(restricted, dirdomain.RoleAdmin); !got.Allowed {
		t.Fatal("admin must pass an Admin/Manager edge")
	}
}

func TestDecideUnrestrictedEdgeAllowsAnyRole(t *testing.T) {
	open := edge(true, false)

	for _, role := range []dirdomain.Role{dirdomain.RoleAdmin, dirdomain.RoleManager, dirdomain.RoleExecutive} {
		if got := Decide(open, role); !got.Allowed {
			t.Fatalf("unrestricted edge must allow %s", role)
		}
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	e := edge(true, true, dirdomain.RoleManager)

	first := Decide(e, dirdomain.RoleManager)
	for i := 0; i < 10; i++ {
		if got := Decide(e, dirdomain.RoleManager); got != first {
			t.Fatalf("decision changed between identical calls: %+v vs %+v", first, got)
		}
	}
}
