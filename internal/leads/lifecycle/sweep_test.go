package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domevents "github.com/niketshah083/lead-management-backend-sub002/internal/events"
	sladomain "github.com/niketshah083/lead-management-backend-sub002/internal/sla/domain"
	slarepo "github.com/niketshah083/lead-management-backend-sub002/internal/sla/repository"

	"github.com/google/uuid"
)

// fakeTrackingStore mirrors the monotonic flag semantics of the real
// repository: MarkFlag reports true only on the write that flips the flag.
type fakeTrackingStore struct {
	mu        sync.Mutex
	trackings []sladomain.Tracking
	flags     map[uuid.UUID]map[string]bool
	failIDs   map[uuid.UUID]bool
}

func newFakeTrackingStore(trackings ...sladomain.Tracking) *fakeTrackingStore {
	return &fakeTrackingStore{
		trackings: trackings,
		flags:     make(map[uuid.UUID]map[string]bool),
		failIDs:   make(map[uuid.UUID]bool),
	}
}

func (f *fakeTrackingStore) ListOpenTrackings(_ context.Context, afterID uuid.UUID, _ int) ([]sladomain.Tracking, error) {
	if afterID != uuid.Nil {
		return nil, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	open := make([]sladomain.Tracking, 0, len(f.trackings))
	for _, tracking := range f.trackings {
		t := tracking
		if flags := f.flags[t.ID]; flags != nil {
			t.FirstResponseWarned = t.FirstResponseWarned || flags[slarepo.FlagFirstResponseWarned]
			t.FirstResponseBreached = t.FirstResponseBreached || flags[slarepo.FlagFirstResponseBreached]
			t.ResolutionWarned = t.ResolutionWarned || flags[slarepo.FlagResolutionWarned]
			t.ResolutionBreached = t.ResolutionBreached || flags[slarepo.FlagResolutionBreached]
		}
		open = append(open, t)
	}
	return open, nil
}

func (f *fakeTrackingStore) MarkFlag(_ context.Context, trackingID uuid.UUID, flag string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[trackingID] {
		return false, errors.New("storage unavailable")
	}
	flags := f.flags[trackingID]
	if flags == nil {
		flags = make(map[string]bool)
		f.flags[trackingID] = flags
	}
	if flags[flag] {
		return false, nil
	}
	flags[flag] = true
	return true, nil
}

func openTracking(leadID uuid.UUID, startedAt time.Time) sladomain.Tracking {
	tracking := sladomain.StartClock(leadID, sladomain.Policy{
		ID:                      uuid.New(),
		FirstResponseMinutes:    30,
		ResolutionMinutes:       240,
		WarningThresholdPercent: 80,
	}, startedAt)
	tracking.ID = uuid.New()
	return tracking
}

func TestSweepEmitsBreachOnce(t *testing.T) {
	f := newFixture(t)
	tracking := openTracking(f.lead.ID, f.now.Add(-45*time.Minute))
	store := newFakeTrackingStore(tracking)

	stats, err := f.coord.Sweep(context.Background(), store, 100, 4)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Evaluated != 1 || stats.Breaches != 1 || stats.Warnings != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	published := f.bus.events()
	if len(published) != 1 {
		t.Fatalf("expected one event, got %d", len(published))
	}
	breach, ok := published[0].(domevents.SlaBreach)
	if !ok {
		t.Fatalf("unexpected event type %T", published[0])
	}
	if breach.LeadID != f.lead.ID || breach.Dimension != string(sladomain.DimensionFirstResponse) {
		t.Fatalf("event payload: %+v", breach)
	}
	if !breach.Due.Equal(tracking.FirstResponseDue) {
		t.Fatalf("event due = %v, want %v", breach.Due, tracking.FirstResponseDue)
	}

	// A rerun with no intervening writes changes nothing.
	stats, err = f.coord.Sweep(context.Background(), store, 100, 4)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Breaches != 0 || stats.Warnings != 0 {
		t.Fatalf("rerun stats = %+v", stats)
	}
	if len(f.bus.events()) != 1 {
		t.Fatal("rerun must not emit again")
	}
}

func TestSweepEmitsWarningBeforeDue(t *testing.T) {
	f := newFixture(t)
	// 25 minutes into a 30 minute window with an 80 percent threshold.
	store := newFakeTrackingStore(openTracking(f.lead.ID, f.now.Add(-25*time.Minute)))

	stats, err := f.coord.Sweep(context.Background(), store, 100, 4)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Warnings != 1 || stats.Breaches != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	warning, ok := f.bus.events()[0].(domevents.SlaWarning)
	if !ok {
		t.Fatalf("unexpected event type %T", f.bus.events()[0])
	}
	if warning.Dimension != string(sladomain.DimensionFirstResponse) {
		t.Fatalf("event payload: %+v", warning)
	}
}

func TestSweepLeavesOnTimeTrackingsAlone(t *testing.T) {
	f := newFixture(t)
	store := newFakeTrackingStore(openTracking(f.lead.ID, f.now.Add(-5*time.Minute)))

	stats, err := f.coord.Sweep(context.Background(), store, 100, 4)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Evaluated != 1 || stats.Warnings != 0 || stats.Breaches != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(f.bus.events()) != 0 {
		t.Fatal("no event may fire for an on-time tracking")
	}
}

func TestSweepCountsFailuresWithoutAborting(t *testing.T) {
	f := newFixture(t)
	failing := openTracking(uuid.New(), f.now.Add(-45*time.Minute))
	healthy := openTracking(f.lead.ID, f.now.Add(-45*time.Minute))
	store := newFakeTrackingStore(failing, healthy)
	store.failIDs[failing.ID] = true

	stats, err := f.coord.Sweep(context.Background(), store, 100, 1)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Evaluated != 2 || stats.Failures != 1 || stats.Breaches != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(f.bus.events()) != 1 {
		t.Fatal("the healthy tracking must still raise its breach")
	}
}

func TestSweepCarriesAssigneeOnEvents(t *testing.T) {
	f := newFixture(t)
	assignee := uuid.New()
	lead := f.store.leads[f.lead.ID]
	lead.AssignedToID = &assignee
	f.store.leads[f.lead.ID] = lead

	store := newFakeTrackingStore(openTracking(f.lead.ID, f.now.Add(-45*time.Minute)))
	if _, err := f.coord.Sweep(context.Background(), store, 100, 4); err != nil {
		t.Fatal(err)
	}

	breach := f.bus.events()[0].(domevents.SlaBreach)
	if breach.AssignedToID == nil || *breach.AssignedToID != assignee {
		t.Fatal("breach event must carry the lead's assignee")
	}
}
