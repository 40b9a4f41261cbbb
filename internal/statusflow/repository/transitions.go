package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrTransitionNotFound  = errors.New("transition not found")
	ErrDuplicateTransition = errors.New("transition already exists for status pair")
)

type StatusTransition struct {
	ID              uuid.UUID
	FromStatusID    uuid.UUID
	ToStatusID      uuid.UUID
	IsActive        bool
	RequiresComment bool
	// AllowedRoles is empty when the edge is unrestricted.
	AllowedRoles []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateTransitionParams struct {
	FromStatusID    uuid.UUID
	ToStatusID      uuid.UUID
	RequiresComment bool
	AllowedRoles    []string
}

const transitionColumns = `id, from_status_id, to_status_id, is_active, requires_comment, COALESCE(allowed_roles, '{}'), created_at, updated_at`

func scanTransition(row pgx.Row) (StatusTransition, error) {
	var t StatusTransition
	err := row.Scan(&t.ID, &t.FromStatusID, &t.ToStatusID, &t.IsActive, &t.RequiresComment, &t.AllowedRoles, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func insertTransition(ctx context.Context, tx pgx.Tx, params CreateTransitionParams) (StatusTransition, error) {
	var roles *[]string
	if len(params.AllowedRoles) > 0 {
		roles = &params.AllowedRoles
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO status_transitions (from_status_id, to_status_id, requires_comment, allowed_roles)
		VALUES ($1, $2, $3, $4)
		RETURNING `+transitionColumns,
		params.FromStatusID, params.ToStatusID, params.RequiresComment, roles,
	)

	transition, err := scanTransition(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolation:
				return StatusTransition{}, ErrDuplicateTransition
			case foreignKeyViolation:
				return StatusTransition{}, ErrNotFound
			}
		}
		return StatusTransition{}, err
	}

	return transition, nil
}

func (r *Repository) CreateTransition(ctx context.Context, params CreateTransitionParams) (StatusTransition, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return StatusTransition{}, err
	}
	defer tx.Rollback(ctx)

	transition, err := insertTransition(ctx, tx, params)
	if err != nil {
		return StatusTransition{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return StatusTransition{}, err
	}

	return transition, nil
}

// CreateTransitionsBulk inserts one edge per target status inside a single
// transaction. A failure on any edge leaves no edges created.
func (r *Repository) CreateTransitionsBulk(ctx context.Context, params []CreateTransitionParams) ([]StatusTransition, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	transitions := make([]StatusTransition, 0, len(params))
	for _, p := range params {
		transition, err := insertTransition(ctx, tx, p)
		if err != nil {
			return nil, err
		}
		transitions = append(transitions, transition)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return transitions, nil
}

// GetTransition returns the edge for an ordered status pair, active or not.
// The guard needs inactive edges too, so it can mirror their comment flag.
func (r *Repository) GetTransition(ctx context.Context, fromStatusID, toStatusID uuid.UUID) (StatusTransition, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+transitionColumns+`
		FROM status_transitions
		WHERE from_status_id = $1 AND to_status_id = $2
	`, fromStatusID, toStatusID)

	transition, err := scanTransition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StatusTransition{}, ErrTransitionNotFound
		}
		return StatusTransition{}, err
	}

	return transition, nil
}

func (r *Repository) ListTransitions(ctx context.Context) ([]StatusTransition, error) {
	return r.queryTransitions(ctx, `
		SELECT `+transitionColumns+` FROM status_transitions ORDER BY created_at ASC`)
}

func (r *Repository) ListTransitionsFrom(ctx context.Context, fromStatusID uuid.UUID) ([]StatusTransition, error) {
	return r.queryTransitions(ctx, `
		SELECT `+transitionColumns+`
		FROM status_transitions
		WHERE from_status_id = $1 AND is_active = true
		ORDER BY created_at ASC
	`, fromStatusID)
}

func (r *Repository) queryTransitions(ctx context.Context, query string, args ...any) ([]StatusTransition, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transitions := make([]StatusTransition, 0)
	for rows.Next() {
		transition, err := scanTransition(rows)
		if err != nil {
			return nil, err
		}
		transitions = append(transitions, transition)
	}

	return transitions, rows.Err()
}

type UpdateTransitionParams struct {
	IsActive        *bool
	RequiresComment *bool
	AllowedRoles    *[]string
}

func (r *Repository) UpdateTransition(ctx context.Context, id uuid.UUID, params UpdateTransitionParams) (StatusTransition, error) {
	var roles *[]string
	var setRoles bool
	if params.AllowedRoles != nil {
		setRoles = true
		if len(*params.AllowedRoles) > 0 {
			roles = params.AllowedRoles
		}
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE status_transitions SET
			is_active = COALESCE($2, is_active),
			requires_comment = COALESCE($3, requires_comment),
			allowed_roles = CASE WHEN $5 THEN $4 ELSE allowed_roles END,
			updated_at = now()
		WHERE id = $1
		RETURNING `+transitionColumns,
		id, params.IsActive, params.RequiresComment, roles, setRoles,
	)

	transition, err := scanTransition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StatusTransition{}, ErrTransitionNotFound
		}
		return StatusTransition{}, err
	}

	return transition, nil
}

func (r *Repository) DeleteTransition(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM status_transitions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransitionNotFound
	}
	return nil
}
