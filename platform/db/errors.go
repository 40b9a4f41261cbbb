package db

import (
	"errors"
	"strings"

	"github.com/niketshah083/lead-management-backend-sub002/platform/apperr"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE class 08 covers connection exceptions.
const connectionExceptionClass = "08"

// Classify maps connection-class database failures to a retryable
// apperr.Unavailable so a down database surfaces as 503, not as a client
// error. Typed domain errors and data errors pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		return err
	}

	if isTransient(err) {
		return apperr.Unavailable("storage temporarily unavailable", err)
	}

	return err
}

func isTransient(err error) bool {
	if pgconn.SafeToRetry(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, connectionExceptionClass) {
		return true
	}

	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
