package visibility

import (
	"context"
	"testing"

	dirdomain "github.com/niketshah083/lead-management-backend-sub002/internal/directory/domain"

	"github.com/google/uuid"
)

type fakeDirectory struct {
	reports    map[uuid.UUID][]uuid.UUID
	categories map[uuid.UUID][]uuid.UUID
}

func (f *fakeDirectory) ListDirectReportIDs(_ context.Context, managerID uuid.UUID) ([]uuid.UUID, error) {
	return f.reports[managerID], nil
}

func (f *fakeDirectory) ListUserCategoryIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return f.categories[userID], nil
}

func ref(id uuid.UUID) *uuid.UUID { return &id }

func TestAdminSeesEverything(t *testing.T) {
	filter := New(&fakeDirectory{})
	admin := Actor{ID: uuid.New(), Role: dirdomain.RoleAdmin}

	leads := []LeadView{
		{},
		{AssignedToID: ref(uuid.New())},
		{AssignedToID: ref(uuid.New()), CategoryID: ref(uuid.New())},
	}
	for i, lead := range leads {
		visible, err := filter.IsVisible(context.Background(), admin, lead)
		if err != nil {
			t.Fatalf("lead %d: %v", i, err)
		}
		if !visible {
			t.Fatalf("lead %d must be visible to an admin", i)
		}
	}

	scope, err := filter.ScopeFor(context.Background(), admin)
	if err != nil {
		t.Fatal(err)
	}
	if !scope.All {
		t.Fatal("admin scope must be unrestricted")
	}
}

func TestManagerTeamScoping(t *testing.T) {
	manager := Actor{ID: uuid.New(), Role: dirdomain.RoleManager}
	report := uuid.New()
	stranger := uuid.New()

	filter := New(&fakeDirectory{reports: map[uuid.UUID][]uuid.UUID{
		manager.ID: {report},
	}})
	ctx := context.Background()

	cases := []struct {
		name    string
		lead    LeadView
		visible bool
	}{
		{"unassigned", LeadView{}, true},
		{"own lead", LeadView{AssignedToID: ref(manager.ID)}, true},
		{"direct report's lead", LeadView{AssignedToID: ref(report)}, true},
		{"other team's lead", LeadView{AssignedToID: ref(stranger)}, false},
	}
	for _, tc := range cases {
		visible, err := filter.IsVisible(ctx, manager, tc.lead)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if visible != tc.visible {
			t.Fatalf("%s: visible = %v, want %v", tc.name, visible, tc.visible)
		}
	}
}

func TestExecutiveCategoryRules(t *testing.T) {
	executive := Actor{ID: uuid.New(), Role: dirdomain.RoleExecutive}
	ownCategory := uuid.New()
	otherCategory := uuid.New()

	filter := New(&fakeDirectory{categories: map[uuid.UUID][]uuid.UUID{
		executive.ID: {ownCategory},
	}})
	ctx := context.Background()

	cases := []struct {
		name    string
		lead    LeadView
		visible bool
	}{
		{"own lead", LeadView{AssignedToID: ref(executive.ID)}, true},
		{"someone else's lead", LeadView{AssignedToID: ref(uuid.New())}, false},
		{"unassigned in own category", LeadView{CategoryID: ref(ownCategory)}, true},
		{"unassigned in other category", LeadView{CategoryID: ref(otherCategory)}, false},
		{"unassigned without category", LeadView{}, false},
	}
	for _, tc := range cases {
		visible, err := filter.IsVisible(ctx, executive, tc.lead)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if visible != tc.visible {
			t.Fatalf("%s: visible = %v, want %v", tc.name, visible, tc.visible)
		}
	}
}

func TestExecutiveWithoutCategoriesSeesOnlyOwnLeads(t *testing.T) {
	executive := Actor{ID: uuid.New(), Role: dirdomain.RoleExecutive}
	filter := New(&fakeDirectory{})

	scope, err := filter.ScopeFor(context.Background(), executive)
	if err != nil {
		t.Fatal(err)
	}
	if scope.All {
		t.Fatal("executive scope must be restricted")
	}
	if scope.IncludeUnassigned {
		t.Fatal("no categories means no unassigned leads")
	}
	if len(scope.UserIDs) != 1 || scope.UserIDs[0] != executive.ID {
		t.Fatalf("scope user ids = %v", scope.UserIDs)
	}
}
