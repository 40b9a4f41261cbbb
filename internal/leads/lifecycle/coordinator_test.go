package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	dirdomain "github.com/niketshah083/lead-management-backend-sub002/internal/directory/domain"
	domevents "github.com/niketshah083/lead-management-backend-sub002/internal/events"
	"github.com/niketshah083/lead-management-backend-sub002/internal/leads/repository"
	"github.com/niketshah083/lead-management-backend-sub002/internal/leads/transport"
	sladomain "github.com/niketshah083/lead-management-backend-sub002/internal/sla/domain"
	slatransport "github.com/niketshah083/lead-management-backend-sub002/internal/sla/transport"
	sfdomain "github.com/niketshah083/lead-management-backend-sub002/internal/statusflow/domain"
	sftransport "github.com/niketshah083/lead-management-backend-sub002/internal/statusflow/transport"
	"github.com/niketshah083/lead-management-backend-sub002/internal/visibility"
	"github.com/niketshah083/lead-management-backend-sub002/platform/apperr"
	"github.com/niketshah083/lead-management-backend-sub002/platform/events"
	"github.com/niketshah083/lead-management-backend-sub002/platform/logger"

	"github.com/google/uuid"
)

type fakeLeadStore struct {
	leads map[uuid.UUID]repository.Lead

	applied  []repository.ApplyTransitionParams
	applyErr error

	messages      []repository.InsertMessageParams
	firstResponse bool
}

func (f *fakeLeadStore) CreateLead(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	lead := repository.Lead{
		ID:           uuid.New(),
		Name:         params.Name,
		Phone:        params.Phone,
		StatusID:     params.StatusID,
		AssignedToID: params.AssignedToID,
		CategoryID:   params.CategoryID,
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeLeadStore) GetLead(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeLeadStore) ListLeads(_ context.Context, _ visibility.Scope, _, _ int) ([]repository.Lead, error) {
	leads := make([]repository.Lead, 0, len(f.leads))
	for _, lead := range f.leads {
		leads = append(leads, lead)
	}
	return leads, nil
}

func (f *fakeLeadStore) UpdateLead(_ context.Context, id uuid.UUID, _ repository.UpdateLeadParams) (repository.Lead, error) {
	return f.leads[id], nil
}

func (f *fakeLeadStore) SoftDeleteLead(_ context.Context, id uuid.UUID) error {
	delete(f.leads, id)
	return nil
}

func (f *fakeLeadStore) ApplyTransition(_ context.Context, params repository.ApplyTransitionParams) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, params)
	lead := f.leads[params.LeadID]
	lead.StatusID = params.ToStatusID
	f.leads[params.LeadID] = lead
	return nil
}

func (f *fakeLeadStore) InsertMessage(_ context.Context, params repository.InsertMessageParams) (repository.Message, bool, error) {
	f.messages = append(f.messages, params)
	return repository.Message{
		ID:        uuid.New(),
		LeadID:    params.LeadID,
		Direction: params.Direction,
		Body:      params.Body,
		CreatedAt: params.At,
	}, f.firstResponse, nil
}

func (f *fakeLeadStore) ListHistory(_ context.Context, _ uuid.UUID) ([]repository.HistoryEntry, error) {
	return nil, nil
}

func (f *fakeLeadStore) ListMessages(_ context.Context, _ uuid.UUID) ([]repository.Message, error) {
	return nil, nil
}

type fakeGraph struct {
	decision sfdomain.Decision
	statuses map[uuid.UUID]sftransport.StatusResponse
	initial  sftransport.StatusResponse
}

func (f *fakeGraph) IsTransitionAllowed(_ context.Context, _, _ uuid.UUID, _ dirdomain.Role) (sfdomain.Decision, error) {
	return f.decision, nil
}

func (f *fakeGraph) GetStatus(_ context.Context, id uuid.UUID) (sftransport.StatusResponse, error) {
	return f.statuses[id], nil
}

func (f *fakeGraph) InitialStatus(_ context.Context) (sftransport.StatusResponse, error) {
	return f.initial, nil
}

type fakeTiming struct {
	policy sladomain.Policy
}

func (f *fakeTiming) DefaultPolicy(_ context.Context) (sladomain.Policy, error) {
	return f.policy, nil
}

func (f *fakeTiming) GetLeadTracking(_ context.Context, leadID uuid.UUID) (slatransport.TrackingResponse, error) {
	return slatransport.TrackingResponse{LeadID: leadID}, nil
}

type fakeVisibility struct {
	visible bool
}

func (f *fakeVisibility) IsVisible(_ context.Context, _ visibility.Actor, _ visibility.LeadView) (bool, error) {
	return f.visible, nil
}

func (f *fakeVisibility) ScopeFor(_ context.Context, _ visibility.Actor) (visibility.Scope, error) {
	return visibility.Scope{All: true}, nil
}

type recordingBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) events() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.published...)
}

type fixture struct {
	coord *Coordinator
	store *fakeLeadStore
	graph *fakeGraph
	vis   *fakeVisibility
	bus   *recordingBus

	lead     repository.Lead
	toStatus sftransport.StatusResponse
	actor    visibility.Actor
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	lead := repository.Lead{ID: uuid.New(), Name: "Acme rooftop", StatusID: uuid.New()}
	toStatus := sftransport.StatusResponse{ID: uuid.New(), Name: "Qualified"}

	store := &fakeLeadStore{leads: map[uuid.UUID]repository.Lead{lead.ID: lead}}
	graph := &fakeGraph{
		decision: sfdomain.Decision{Allowed: true},
		statuses: map[uuid.UUID]sftransport.StatusResponse{toStatus.ID: toStatus},
		initial:  sftransport.StatusResponse{ID: uuid.New(), Name: "New", IsInitial: true},
	}
	vis := &fakeVisibility{visible: true}
	bus := &recordingBus{}

	coord := NewCoordinator(store, graph, &fakeTiming{policy: sladomain.Policy{
		ID: uuid.New(), FirstResponseMinutes: 30, ResolutionMinutes: 240, WarningThresholdPercent: 80,
	}}, vis, bus, logger.New("development"))
	coord.WithClock(func() time.Time { return now })

	return &fixture{
		coord:    coord,
		store:    store,
		graph:    graph,
		vis:      vis,
		bus:      bus,
		lead:     lead,
		toStatus: toStatus,
		actor:    visibility.Actor{ID: uuid.New(), Role: dirdomain.RoleManager},
		now:      now,
	}
}

func (f *fixture) transition(comment string) (transport.LeadResponse, error) {
	return f.coord.RequestTransition(context.Background(), f.actor, f.lead.ID,
		transport.TransitionRequest{ToStatusID: f.toStatus.ID.String(), Comment: comment})
}

func TestRequestTransitionForbiddenWhenNotVisible(t *testing.T) {
	f := newFixture(t)
	f.vis.visible = false

	_, err := f.transition("")
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
	if len(f.store.applied) != 0 {
		t.Fatal("no write may happen on a forbidden request")
	}
}

func TestRequestTransitionRejectsMissingEdge(t *testing.T) {
	f := newFixture(t)
	f.graph.decision = sfdomain.Decision{}

	_, err := f.transition("")
	if !apperr.Is(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
	if len(f.store.applied) != 0 {
		t.Fatal("no write may happen on a rejected transition")
	}
}

func TestRequestTransitionRequiresComment(t *testing.T) {
	f := newFixture(t)
	f.graph.decision = sfdomain.Decision{Allowed: true, RequiresComment: true}

	_, err := f.transition("   ")
	if !apperr.Is(err, apperr.KindCommentRequired) {
		t.Fatalf("expected CommentRequired, got %v", err)
	}
	if len(f.store.applied) != 0 {
		t.Fatal("lead status must be unchanged")
	}

	if _, err := f.transition("spoke to the customer"); err != nil {
		t.Fatalf("transition with comment failed: %v", err)
	}
}

func TestRequestTransitionAppliesAtomicallyAndEmits(t *testing.T) {
	f := newFixture(t)

	result, err := f.transition("moving along")
	if err != nil {
		t.Fatal(err)
	}
	if result.StatusID != f.toStatus.ID {
		t.Fatalf("response status = %v", result.StatusID)
	}

	if len(f.store.applied) != 1 {
		t.Fatalf("expected one apply, got %d", len(f.store.applied))
	}
	applied := f.store.applied[0]
	if applied.FromStatusID != f.lead.StatusID || applied.ToStatusID != f.toStatus.ID {
		t.Fatalf("apply params: %+v", applied)
	}
	if applied.ActorID != f.actor.ID {
		t.Fatal("history must record the acting user")
	}
	if applied.MarkResolved {
		t.Fatal("non-final status must not resolve the tracking")
	}

	published := f.bus.events()
	if len(published) != 1 {
		t.Fatalf("expected one event, got %d", len(published))
	}
	event, ok := published[0].(domevents.StatusChanged)
	if !ok {
		t.Fatalf("unexpected event type %T", published[0])
	}
	if event.LeadID != f.lead.ID || event.ToStatusID != f.toStatus.ID {
		t.Fatalf("event payload: %+v", event)
	}
}

func TestRequestTransitionIntoFinalStatusResolves(t *testing.T) {
	f := newFixture(t)
	f.toStatus.IsFinal = true
	f.graph.statuses[f.toStatus.ID] = f.toStatus

	if _, err := f.transition(""); err != nil {
		t.Fatal(err)
	}
	if !f.store.applied[0].MarkResolved {
		t.Fatal("final status must resolve the tracking")
	}

	event := f.bus.events()[0].(domevents.StatusChanged)
	if !event.Resolved {
		t.Fatal("event must carry the resolution")
	}
}

func TestRequestTransitionStaleStatusConflicts(t *testing.T) {
	f := newFixture(t)
	f.store.applyErr = repository.ErrStaleStatus

	_, err := f.transition("")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
	if len(f.bus.events()) != 0 {
		t.Fatal("no event may fire for an uncommitted transition")
	}
}

func TestRequestTransitionKeepsStorageOutageTyped(t *testing.T) {
	f := newFixture(t)
	f.store.applyErr = apperr.Unavailable("storage temporarily unavailable", errors.New("dial refused"))

	_, err := f.transition("")
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected Unavailable, got %v", err)
	}
	if len(f.bus.events()) != 0 {
		t.Fatal("no event may fire for an uncommitted transition")
	}
}

func TestAddMessageOutboundCarriesSender(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.AddMessage(context.Background(), f.actor, f.lead.ID, transport.AddMessageRequest{
		Direction: repository.DirectionOutbound,
		Body:      "following up",
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(f.store.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(f.store.messages))
	}
	inserted := f.store.messages[0]
	if inserted.SenderID == nil || *inserted.SenderID != f.actor.ID {
		t.Fatal("outbound message must carry the acting user as sender")
	}
	if !inserted.At.Equal(f.now) {
		t.Fatalf("message timestamp = %v", inserted.At)
	}
}

func TestAddMessageInboundHasNoSender(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.AddMessage(context.Background(), f.actor, f.lead.ID, transport.AddMessageRequest{
		Direction: repository.DirectionInbound,
		Body:      "customer reply",
	})
	if err != nil {
		t.Fatal(err)
	}
	if f.store.messages[0].SenderID != nil {
		t.Fatal("inbound message must not carry a sender")
	}
}
