package repository

import (
	"strings"
	"testing"
)

func TestDemoteInitialStatusesQueryTargetsOnlyLiveInitialRows(t *testing.T) {
	query := strings.ToLower(demoteInitialStatusesQuery)

	requiredFragments := []string{
		"set is_initial = false",
		"where is_initial = true",
		"deleted_at is null",
	}

	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected demotion query fragment %q to be present", fragment)
		}
	}
}

func TestPromotionDemotionSparesThePromotedRow(t *testing.T) {
	query := strings.ToLower(demoteOtherInitialStatusesQuery)

	if !strings.Contains(query, "id <> $1") {
		t.Fatal("promotion demotion must exclude the row being promoted")
	}
	if !strings.Contains(query, "where is_initial = true") {
		t.Fatal("promotion demotion must only touch the current initial status")
	}
}
