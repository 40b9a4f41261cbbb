package service

import (
	"context"
	"testing"

	"github.com/niketshah083/lead-management-backend-sub002/internal/statusflow/repository"
	"github.com/niketshah083/lead-management-backend-sub002/internal/statusflow/transport"
	"github.com/niketshah083/lead-management-backend-sub002/platform/apperr"

	"github.com/google/uuid"
)

// fakeRepo records write calls so tests can assert on delegation: the bulk
// path must reach the repository as one call or not at all.
type fakeRepo struct {
	statuses map[uuid.UUID]repository.LeadStatus

	singleCreates []repository.CreateTransitionParams
	bulkCreates   [][]repository.CreateTransitionParams
	bulkErr       error
}

func (f *fakeRepo) CreateStatus(_ context.Context, _ repository.CreateStatusParams) (repository.LeadStatus, error) {
	return repository.LeadStatus{}, nil
}

func (f *fakeRepo) GetStatus(_ context.Context, id uuid.UUID) (repository.LeadStatus, error) {
	status, ok := f.statuses[id]
	if !ok {
		return repository.LeadStatus{}, repository.ErrNotFound
	}
	return status, nil
}

func (f *fakeRepo) ListActiveStatuses(_ context.Context) ([]repository.LeadStatus, error) {
	return nil, nil
}

func (f *fakeRepo) GetInitialStatus(_ context.Context) (repository.LeadStatus, error) {
	return repository.LeadStatus{}, repository.ErrNotFound
}

func (f *fakeRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ repository.UpdateStatusParams) (repository.LeadStatus, error) {
	return repository.LeadStatus{}, nil
}

func (f *fakeRepo) SoftDeleteStatus(_ context.Context, _ uuid.UUID) error { return nil }

func (f *fakeRepo) ReorderStatuses(_ context.Context, _ []uuid.UUID) error { return nil }

func (f *fakeRepo) CreateTransition(_ context.Context, params repository.CreateTransitionParams) (repository.StatusTransition, error) {
	f.singleCreates = append(f.singleCreates, params)
	return repository.StatusTransition{ID: uuid.New(), FromStatusID: params.FromStatusID, ToStatusID: params.ToStatusID, IsActive: true}, nil
}

func (f *fakeRepo) CreateTransitionsBulk(_ context.Context, params []repository.CreateTransitionParams) ([]repository.StatusTransition, error) {
	f.bulkCreates = append(f.bulkCreates, params)
	if f.bulkErr != nil {
		return nil, f.bulkErr
	}
	transitions := make([]repository.StatusTransition, 0, len(params))
	for _, p := range params {
		transitions = append(transitions, repository.StatusTransition{
			ID: uuid.New(), FromStatusID: p.FromStatusID, ToStatusID: p.ToStatusID, IsActive: true,
		})
	}
	return transitions, nil
}

func (f *fakeRepo) GetTransition(_ context.Context, _, _ uuid.UUID) (repository.StatusTransition, error) {
	return repository.StatusTransition{}, repository.ErrTransitionNotFound
}

func (f *fakeRepo) ListTransitions(_ context.Context) ([]repository.StatusTransition, error) {
	return nil, nil
}

func (f *fakeRepo) ListTransitionsFrom(_ context.Context, _ uuid.UUID) ([]repository.StatusTransition, error) {
	return nil, nil
}

func (f *fakeRepo) UpdateTransition(_ context.Context, _ uuid.UUID, _ repository.UpdateTransitionParams) (repository.StatusTransition, error) {
	return repository.StatusTransition{}, nil
}

func (f *fakeRepo) DeleteTransition(_ context.Context, _ uuid.UUID) error { return nil }

func newBulkFixture() (*Service, *fakeRepo, uuid.UUID, []uuid.UUID) {
	from := uuid.New()
	targets := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	repo := &fakeRepo{statuses: map[uuid.UUID]repository.LeadStatus{
		from: {ID: from, Name: "New", IsActive: true},
	}}
	for _, id := range targets {
		repo.statuses[id] = repository.LeadStatus{ID: id, IsActive: true}
	}

	return New(repo), repo, from, targets
}

func bulkRequest(from uuid.UUID, targets []uuid.UUID, roles []string) transport.BulkCreateTransitionsRequest {
	toIDs := make([]string, 0, len(targets))
	for _, id := range targets {
		toIDs = append(toIDs, id.String())
	}
	return transport.BulkCreateTransitionsRequest{
		FromStatusID: from.String(),
		ToStatusIDs:  toIDs,
		AllowedRoles: roles,
	}
}

func TestBulkCreateWritesAllEdgesInOneCall(t *testing.T) {
	svc, repo, from, targets := newBulkFixture()

	responses, err := svc.CreateTransitionsBulk(context.Background(), bulkRequest(from, targets, nil))
	if err != nil {
		t.Fatal(err)
	}
	if len(responses) != len(targets) {
		t.Fatalf("expected %d edges, got %d", len(targets), len(responses))
	}

	if len(repo.singleCreates) != 0 {
		t.Fatal("bulk creation must not fall back to per-edge writes")
	}
	if len(repo.bulkCreates) != 1 {
		t.Fatalf("expected one bulk write, got %d", len(repo.bulkCreates))
	}
	if len(repo.bulkCreates[0]) != len(targets) {
		t.Fatalf("bulk write carried %d edges, want %d", len(repo.bulkCreates[0]), len(targets))
	}
}

func TestBulkCreateValidatesEveryEdgeBeforeWriting(t *testing.T) {
	svc, repo, from, targets := newBulkFixture()

	_, err := svc.CreateTransitionsBulk(context.Background(), bulkRequest(from, targets, []string{"SUPERVISOR"}))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected Validation, got %v", err)
	}
	if len(repo.bulkCreates) != 0 || len(repo.singleCreates) != 0 {
		t.Fatal("an invalid batch must not reach the repository")
	}
}

func TestBulkCreateUnknownTargetWritesNothing(t *testing.T) {
	svc, repo, from, targets := newBulkFixture()
	targets = append(targets, uuid.New())

	_, err := svc.CreateTransitionsBulk(context.Background(), bulkRequest(from, targets, nil))
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if len(repo.bulkCreates) != 0 {
		t.Fatal("an unknown target must fail the whole batch before any write")
	}
}

func TestBulkCreateDuplicateMapsToConflict(t *testing.T) {
	svc, repo, from, targets := newBulkFixture()
	repo.bulkErr = repository.ErrDuplicateTransition

	responses, err := svc.CreateTransitionsBulk(context.Background(), bulkRequest(from, targets, nil))
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
	if responses != nil {
		t.Fatal("a failed batch must return no partial edges")
	}
}
