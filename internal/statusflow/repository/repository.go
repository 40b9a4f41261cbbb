// Package repository provides data access for the status graph: pipeline
// statuses and the directed, role-gated transitions between them.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("status not found")
	ErrDuplicateName = errors.New("status name already in use")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type LeadStatus struct {
	ID         uuid.UUID
	Name       string
	Rank       int
	IsInitial  bool
	IsFinal    bool
	StatusType *string
	IsActive   bool
	DeletedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CreateStatusParams struct {
	Name       string
	Rank       int
	IsInitial  bool
	IsFinal    bool
	StatusType *string
}

const statusColumns = `id, name, rank, is_initial, is_final, status_type, is_active, deleted_at, created_at, updated_at`

// demoteInitialStatusesQuery clears the initial flag on every live status.
// Run before inserting a new initial status so exactly one remains.
const demoteInitialStatusesQuery = `
	UPDATE lead_statuses SET is_initial = false, updated_at = now()
	WHERE is_initial = true AND deleted_at IS NULL`

// demoteOtherInitialStatusesQuery is the promotion variant: it spares the
// row being promoted so the update is idempotent for an already-initial status.
const demoteOtherInitialStatusesQuery = `
	UPDATE lead_statuses SET is_initial = false, updated_at = now()
	WHERE is_initial = true AND deleted_at IS NULL AND id <> $1`

func scanStatus(row pgx.Row) (LeadStatus, error) {
	var s LeadStatus
	err := row.Scan(&s.ID, &s.Name, &s.Rank, &s.IsInitial, &s.IsFinal, &s.StatusType, &s.IsActive, &s.DeletedAt, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// CreateStatus inserts a status. When the new status is flagged initial, the
// previous initial status is demoted in the same transaction so exactly one
// active status stays initial.
func (r *Repository) CreateStatus(ctx context.Context, params CreateStatusParams) (LeadStatus, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return LeadStatus{}, err
	}
	defer tx.Rollback(ctx)

	if params.IsInitial {
		if _, err := tx.Exec(ctx, demoteInitialStatusesQuery); err != nil {
			return LeadStatus{}, err
		}
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO lead_statuses (name, rank, is_initial, is_final, status_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+statusColumns,
		params.Name, params.Rank, params.IsInitial, params.IsFinal, params.StatusType,
	)

	status, err := scanStatus(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return LeadStatus{}, ErrDuplicateName
		}
		return LeadStatus{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return LeadStatus{}, err
	}

	return status, nil
}

func (r *Repository) GetStatus(ctx context.Context, id uuid.UUID) (LeadStatus, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+statusColumns+` FROM lead_statuses WHERE id = $1 AND deleted_at IS NULL`, id)

	status, err := scanStatus(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LeadStatus{}, ErrNotFound
		}
		return LeadStatus{}, err
	}

	return status, nil
}

func (r *Repository) ListActiveStatuses(ctx context.Context) ([]LeadStatus, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+statusColumns+`
		FROM lead_statuses
		WHERE deleted_at IS NULL AND is_active = true
		ORDER BY rank ASC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make([]LeadStatus, 0)
	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}

	return statuses, rows.Err()
}

// GetInitialStatus returns the unique active initial status.
func (r *Repository) GetInitialStatus(ctx context.Context) (LeadStatus, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+statusColumns+`
		FROM lead_statuses
		WHERE is_initial = true AND deleted_at IS NULL AND is_active = true
	`)

	status, err := scanStatus(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LeadStatus{}, ErrNotFound
		}
		return LeadStatus{}, err
	}

	return status, nil
}

type UpdateStatusParams struct {
	Name       *string
	IsInitial  *bool
	IsFinal    *bool
	StatusType *string
	ClearType  bool
	IsActive   *bool
}

// UpdateStatus updates a status, demoting any other initial status in the
// same transaction when this one is promoted to initial.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, params UpdateStatusParams) (LeadStatus, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return LeadStatus{}, err
	}
	defer tx.Rollback(ctx)

	if params.IsInitial != nil && *params.IsInitial {
		if _, err := tx.Exec(ctx, demoteOtherInitialStatusesQuery, id); err != nil {
			return LeadStatus{}, err
		}
	}

	row := tx.QueryRow(ctx, `
		UPDATE lead_statuses SET
			name = COALESCE($2, name),
			is_initial = COALESCE($3, is_initial),
			is_final = COALESCE($4, is_final),
			status_type = CASE WHEN $6 THEN NULL ELSE COALESCE($5, status_type) END,
			is_active = COALESCE($7, is_active),
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+statusColumns,
		id, params.Name, params.IsInitial, params.IsFinal, params.StatusType, params.ClearType, params.IsActive,
	)

	status, err := scanStatus(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LeadStatus{}, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return LeadStatus{}, ErrDuplicateName
		}
		return LeadStatus{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return LeadStatus{}, err
	}

	return status, nil
}

// SoftDeleteStatus marks a status deleted and deactivates every transition
// touching it in the same transaction. The row itself is kept: leads and
// history records may still reference it.
func (r *Repository) SoftDeleteStatus(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE lead_statuses SET deleted_at = now(), is_active = false, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
		UPDATE status_transitions SET is_active = false, updated_at = now()
		WHERE (from_status_id = $1 OR to_status_id = $1) AND is_active = true
	`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ReorderStatuses rewrites the rank of every listed status in one
// transaction, in list order.
func (r *Repository) ReorderStatuses(ctx context.Context, orderedIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for rank, id := range orderedIDs {
		tag, err := tx.Exec(ctx, `
			UPDATE lead_statuses SET rank = $2, updated_at = now()
			WHERE id = $1 AND deleted_at IS NULL
		`, id, rank)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
	}

	return tx.Commit(ctx)
}
