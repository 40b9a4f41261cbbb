package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

var t0 = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func testPolicy() Policy {
	return Policy{
		ID:                      uuid.New(),
		Name:                    "standard",
		FirstResponseMinutes:    30,
		FollowUpMinutes:         60,
		ResolutionMinutes:       240,
		WarningThresholdPercent: 80,
		IsDefault:               true,
		IsActive:                true,
	}
}

func TestStartClockAnchorsDueTimes(t *testing.T) {
	tracking := StartClock(uuid.New(), testPolicy(), t0)

	if got := tracking.FirstResponseDue; !got.Equal(t0.Add(30 * time.Minute)) {
		t.Fatalf("firstResponseDue = %v", got)
	}
	if got := tracking.ResolutionDue; !got.Equal(t0.Add(4 * time.Hour)) {
		t.Fatalf("resolutionDue = %v", got)
	}
	if tracking.WarningThresholdPercent != 80 {
		t.Fatalf("warning threshold not snapshotted: %d", tracking.WarningThresholdPercent)
	}
}

func TestOnTimeFirstResponse(t *testing.T) {
	tracking := StartClock(uuid.New(), testPolicy(), t0)

	if !tracking.RecordFirstResponse(t0.Add(20 * time.Minute)) {
		t.Fatal("first stamp must take effect")
	}
	if tracking.FirstResponseBreached {
		t.Fatal("response within the window must not breach")
	}
	if got := *tracking.FirstResponseAt; !got.Equal(t0.Add(20 * time.Minute)) {
		t.Fatalf("firstResponseAt = %v", got)
	}
}

func TestLateFirstResponseSetsBreach(t *testing.T) {
	tracking := StartClock(uuid.New(), testPolicy(), t0)

	tracking.RecordFirstResponse(t0.Add(45 * time.Minute))
	if !tracking.FirstResponseBreached {
		t.Fatal("response after the deadline must breach")
	}
}

func TestRecordFirstResponseIsWriteOnce(t *testing.T) {
	tracking := StartClock(uuid.New(), testPolicy(), t0)
	tracking.RecordFirstResponse(t0.Add(45 * time.Minute))

	if tracking.RecordFirstResponse(t0.Add(10 * time.Minute)) {
		t.Fatal("second stamp must be a no-op")
	}
	if !tracking.FirstResponseBreached {
		t.Fatal("breach flag must never regress")
	}
	if got := *tracking.FirstResponseAt; !got.Equal(t0.Add(45 * time.Minute)) {
		t.Fatalf("first stamp moved: %v", got)
	}
}

func TestEvaluateBreachedFirstResponse(t *testing.T) {
	tracking := StartClock(uuid.New(), testPolicy(), t0)

	got := Evaluate(tracking, t0.Add(45*time.Minute))
	if got.State != StateBreached || got.Dimension != DimensionFirstResponse {
		t.Fatalf("expected BREACHED/FIRST_RESPONSE, got %+v", got)
	}
}

func TestEvaluateWarningThreshold(t *testing.T) {
	// 30 minute window at 80 percent: warning opens at T0+24m.
	tracking := StartClock(uuid.New(), testPolicy(), t0)

	if got := Evaluate(tracking, t0.Add(23*time.Minute)); got.State != StateOnTime {
		t.Fatalf("77%% elapsed must be on time, got %+v", got)
	}
	if got := Evaluate(tracking, t0.Add(25*time.Minute)); got.State != StateWarning || got.Dimension != DimensionFirstResponse {
		t.Fatalf("83%% elapsed must warn on first response, got %+v", got)
	}
}

func TestEvaluateResolutionOnlyAfterFirstResponse(t *testing.T) {
	tracking := StartClock(uuid.New(), testPolicy(), t0)

	// Past the resolution warning threshold but no response yet: the first
	// response window still owns the classification.
	got := Evaluate(tracking, t0.Add(230*time.Minute))
	if got.Dimension != DimensionFirstResponse {
		t.Fatalf("resolution window must wait for a first response, got %+v", got)
	}

	tracking.RecordFirstResponse(t0.Add(10 * time.Minute))

	got = Evaluate(tracking, t0.Add(230*time.Minute))
	if got.State != StateWarning || got.Dimension != DimensionResolution {
		t.Fatalf("expected WARNING/RESOLUTION after response, got %+v", got)
	}

	got = Evaluate(tracking, t0.Add(241*time.Minute))
	if got.State != StateBreached || got.Dimension != DimensionResolution {
		t.Fatalf("expected BREACHED/RESOLUTION, got %+v", got)
	}
}

func TestEvaluateResolvedIsAlwaysOnTime(t *testing.T) {
	tracking := StartClock(uuid.New(), testPolicy(), t0)
	tracking.RecordFirstResponse(t0.Add(10 * time.Minute))
	tracking.RecordResolution(t0.Add(300 * time.Minute))

	got := Evaluate(tracking, t0.Add(1000*time.Hour))
	if got.State != StateOnTime || got.Dimension != DimensionNone {
		t.Fatalf("resolved tracking must evaluate on time, got %+v", got)
	}
	// The late resolution itself is still recorded as a breach.
	if !tracking.ResolutionBreached {
		t.Fatal("late resolution must set the breach flag")
	}
}

func TestEvaluateIsPure(t *testing.T) {
	tracking := StartClock(uuid.New(), testPolicy(), t0)
	at := t0.Add(45 * time.Minute)

	before := tracking
	first := Evaluate(tracking, at)
	for i := 0; i < 5; i++ {
		if got := Evaluate(tracking, at); got != first {
			t.Fatalf("evaluation not stable: %+v vs %+v", first, got)
		}
	}
	if tracking != before {
		t.Fatal("evaluation must not mutate the tracking")
	}
}
