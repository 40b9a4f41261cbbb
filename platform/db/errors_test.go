package db

import (
	"errors"
	"testing"

	"github.com/niketshah083/lead-management-backend-sub002/platform/apperr"

	"github.com/jackc/pgx/v5/pgconn"
)

type retryableErr struct{}

func (retryableErr) Error() string     { return "conn closed" }
func (retryableErr) SafeToRetry() bool { return true }

func TestClassifyNilStaysNil(t *testing.T) {
	if err := Classify(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestClassifyConnectionFailureIsUnavailable(t *testing.T) {
	err := Classify(&pgconn.PgError{Code: "08006", Message: "connection failure"})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected Unavailable, got %v", err)
	}
}

func TestClassifyRetryableErrorIsUnavailable(t *testing.T) {
	err := Classify(retryableErr{})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected Unavailable, got %v", err)
	}
}

func TestClassifyDataErrorPassesThrough(t *testing.T) {
	cause := &pgconn.PgError{Code: "23505", Message: "duplicate"}
	if err := Classify(cause); !errors.Is(err, cause) {
		t.Fatalf("constraint violation must pass through, got %v", err)
	}
}

func TestClassifyTypedErrorPassesThrough(t *testing.T) {
	cause := apperr.NotFound("lead not found")
	if err := Classify(cause); !errors.Is(err, cause) {
		t.Fatalf("typed error must pass through, got %v", err)
	}
}
