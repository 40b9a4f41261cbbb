// Package repository persists leads, their status history and message log.
// The writes that must be atomic with timing updates (lead creation,
// transitions, first-touch stamping) run as single transactions here.
package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	sladomain "github.com/niketshah083/lead-management-backend-sub002/internal/sla/domain"
	"github.com/niketshah083/lead-management-backend-sub002/internal/visibility"
	"github.com/niketshah083/lead-management-backend-sub002/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const foreignKeyViolation = "23503"

var (
	ErrNotFound     = errors.New("lead not found")
	ErrStaleStatus  = errors.New("lead status changed concurrently")
	ErrBadReference = errors.New("referenced row does not exist")
	ErrNoTracking   = errors.New("lead has no sla tracking")
)

type Lead struct {
	ID           uuid.UUID
	Name         string
	Phone        string
	Email        *string
	Source       *string
	StatusID     uuid.UUID
	AssignedToID *uuid.UUID
	CategoryID   *uuid.UUID
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, name, phone, email, source, status_id, assigned_to_id, category_id,
	deleted_at, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.Name, &l.Phone, &l.Email, &l.Source, &l.StatusID, &l.AssignedToID,
		&l.CategoryID, &l.DeletedAt, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

type CreateLeadParams struct {
	Name         string
	Phone        string
	Email        *string
	Source       *string
	StatusID     uuid.UUID
	AssignedToID *uuid.UUID
	CategoryID   *uuid.UUID
	Tracking     sladomain.Tracking
}

// CreateLead inserts the lead and its tracking row in one transaction. A
// lead never exists without a tracking.
func (r *Repository) CreateLead(ctx context.Context, params CreateLeadParams) (Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, db.Classify(err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO leads (name, phone, email, source, status_id, assigned_to_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+leadColumns,
		params.Name, params.Phone, params.Email, params.Source, params.StatusID,
		params.AssignedToID, params.CategoryID)

	lead, err := scanLead(row)
	if err != nil {
		return Lead{}, mapReferenceError(err)
	}

	t := params.Tracking
	_, err = tx.Exec(ctx, `
		INSERT INTO sla_trackings (lead_id, policy_id, started_at, warning_threshold_percent,
			first_response_due, resolution_due)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		lead.ID, t.PolicyID, t.StartedAt, t.WarningThresholdPercent,
		t.FirstResponseDue, t.ResolutionDue)
	if err != nil {
		return Lead{}, mapReferenceError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, db.Classify(err)
	}

	return lead, nil
}

func (r *Repository) GetLead(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE id = $1 AND deleted_at IS NULL`, id)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, db.Classify(err)
	}

	return lead, nil
}

// ListLeads returns non-deleted leads matching the actor's visibility scope,
// newest first.
func (r *Repository) ListLeads(ctx context.Context, scope visibility.Scope, limit, offset int) ([]Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE deleted_at IS NULL`
	args := []any{}

	if !scope.All {
		if scope.IncludeUnassigned && scope.CategoryIDs == nil {
			query += ` AND (assigned_to_id = ANY($1) OR assigned_to_id IS NULL)`
			args = append(args, scope.UserIDs)
		} else if scope.IncludeUnassigned {
			query += ` AND (assigned_to_id = ANY($1) OR (assigned_to_id IS NULL AND category_id = ANY($2)))`
			args = append(args, scope.UserIDs, scope.CategoryIDs)
		} else {
			query += ` AND assigned_to_id = ANY($1)`
			args = append(args, scope.UserIDs)
		}
	}

	args = append(args, limit, offset)
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, db.Classify(err)
		}
		leads = append(leads, lead)
	}

	return leads, db.Classify(rows.Err())
}

type UpdateLeadParams struct {
	Name          *string
	Phone         *string
	Email         *string
	Source        *string
	AssignedToID  *uuid.UUID
	ClearAssignee bool
	CategoryID    *uuid.UUID
	ClearCategory bool
}

func (r *Repository) UpdateLead(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			name = COALESCE($2, name),
			phone = COALESCE($3, phone),
			email = COALESCE($4, email),
			source = COALESCE($5, source),
			assigned_to_id = CASE WHEN $7 THEN NULL ELSE COALESCE($6, assigned_to_id) END,
			category_id = CASE WHEN $9 THEN NULL ELSE COALESCE($8, category_id) END,
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+leadColumns,
		id, params.Name, params.Phone, params.Email, params.Source,
		params.AssignedToID, params.ClearAssignee, params.CategoryID, params.ClearCategory)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, mapReferenceError(err)
	}

	return lead, nil
}

func (r *Repository) SoftDeleteLead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func mapReferenceError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return ErrBadReference
	}
	return db.Classify(err)
}
