// Package repository persists policies and trackings. Tracking rows are
// co-created with leads inside the leads repository's transactions; this
// package owns policy administration, sweep reads, and the monotonic flag
// updates the sweep performs.
package repository

import (
	"context"
	"errors"

	"github.com/niketshah083/lead-management-backend-sub002/internal/sla/domain"
	"github.com/niketshah083/lead-management-backend-sub002/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

var (
	ErrPolicyNotFound   = errors.New("sla policy not found")
	ErrDuplicatePolicy  = errors.New("sla policy name already in use")
	ErrNoDefaultPolicy  = errors.New("no default sla policy configured")
	ErrTrackingNotFound = errors.New("sla tracking not found")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const policyColumns = `id, name, first_response_minutes, follow_up_minutes, resolution_minutes,
	warning_threshold_percent, is_default, is_active, created_at, updated_at`

func scanPolicy(row pgx.Row) (domain.Policy, error) {
	var p domain.Policy
	err := row.Scan(&p.ID, &p.Name, &p.FirstResponseMinutes, &p.FollowUpMinutes, &p.ResolutionMinutes,
		&p.WarningThresholdPercent, &p.IsDefault, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

type CreatePolicyParams struct {
	Name                    string
	FirstResponseMinutes    int
	FollowUpMinutes         int
	ResolutionMinutes       int
	WarningThresholdPercent int
	IsDefault               bool
}

// CreatePolicy inserts a policy. When the new policy is flagged default the
// previous default is demoted in the same transaction so at most one default
// exists at any commit point.
func (r *Repository) CreatePolicy(ctx context.Context, params CreatePolicyParams) (domain.Policy, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Policy{}, db.Classify(err)
	}
	defer tx.Rollback(ctx)

	if params.IsDefault {
		if _, err := tx.Exec(ctx, `UPDATE sla_policies SET is_default = false, updated_at = now() WHERE is_default = true`); err != nil {
			return domain.Policy{}, db.Classify(err)
		}
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO sla_policies (name, first_response_minutes, follow_up_minutes, resolution_minutes,
			warning_threshold_percent, is_default)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+policyColumns,
		params.Name, params.FirstResponseMinutes, params.FollowUpMinutes, params.ResolutionMinutes,
		params.WarningThresholdPercent, params.IsDefault)

	policy, err := scanPolicy(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Policy{}, ErrDuplicatePolicy
		}
		return domain.Policy{}, db.Classify(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Policy{}, db.Classify(err)
	}

	return policy, nil
}

func (r *Repository) GetPolicy(ctx context.Context, id uuid.UUID) (domain.Policy, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+policyColumns+` FROM sla_policies WHERE id = $1`, id)

	policy, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Policy{}, ErrPolicyNotFound
		}
		return domain.Policy{}, db.Classify(err)
	}

	return policy, nil
}

// GetDefaultPolicy returns the active default policy consulted at lead
// creation.
func (r *Repository) GetDefaultPolicy(ctx context.Context) (domain.Policy, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+policyColumns+` FROM sla_policies WHERE is_default = true AND is_active = true`)

	policy, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Policy{}, ErrNoDefaultPolicy
		}
		return domain.Policy{}, db.Classify(err)
	}

	return policy, nil
}

func (r *Repository) ListPolicies(ctx context.Context) ([]domain.Policy, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+policyColumns+` FROM sla_policies ORDER BY name ASC`)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	policies := make([]domain.Policy, 0)
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, db.Classify(err)
		}
		policies = append(policies, policy)
	}

	return policies, db.Classify(rows.Err())
}

type UpdatePolicyParams struct {
	Name                    *string
	FirstResponseMinutes    *int
	FollowUpMinutes         *int
	ResolutionMinutes       *int
	WarningThresholdPercent *int
	IsDefault               *bool
	IsActive                *bool
}

// UpdatePolicy patches a policy. Promoting a policy to default demotes the
// previous default in the same transaction.
func (r *Repository) UpdatePolicy(ctx context.Context, id uuid.UUID, params UpdatePolicyParams) (domain.Policy, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Policy{}, db.Classify(err)
	}
	defer tx.Rollback(ctx)

	if params.IsDefault != nil && *params.IsDefault {
		if _, err := tx.Exec(ctx, `UPDATE sla_policies SET is_default = false, updated_at = now() WHERE is_default = true AND id <> $1`, id); err != nil {
			return domain.Policy{}, db.Classify(err)
		}
	}

	row := tx.QueryRow(ctx, `
		UPDATE sla_policies SET
			name = COALESCE($2, name),
			first_response_minutes = COALESCE($3, first_response_minutes),
			follow_up_minutes = COALESCE($4, follow_up_minutes),
			resolution_minutes = COALESCE($5, resolution_minutes),
			warning_threshold_percent = COALESCE($6, warning_threshold_percent),
			is_default = COALESCE($7, is_default),
			is_active = COALESCE($8, is_active),
			updated_at = now()
		WHERE id = $1
		RETURNING `+policyColumns,
		id, params.Name, params.FirstResponseMinutes, params.FollowUpMinutes, params.ResolutionMinutes,
		params.WarningThresholdPercent, params.IsDefault, params.IsActive)

	policy, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Policy{}, ErrPolicyNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Policy{}, ErrDuplicatePolicy
		}
		return domain.Policy{}, db.Classify(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Policy{}, db.Classify(err)
	}

	return policy, nil
}

const trackingColumns = `id, lead_id, policy_id, started_at, warning_threshold_percent,
	first_response_due, first_response_at, first_response_breached, first_response_warned,
	resolution_due, resolved_at, resolution_breached, resolution_warned, created_at, updated_at`

func scanTracking(row pgx.Row) (domain.Tracking, error) {
	var t domain.Tracking
	err := row.Scan(&t.ID, &t.LeadID, &t.PolicyID, &t.StartedAt, &t.WarningThresholdPercent,
		&t.FirstResponseDue, &t.FirstResponseAt, &t.FirstResponseBreached, &t.FirstResponseWarned,
		&t.ResolutionDue, &t.ResolvedAt, &t.ResolutionBreached, &t.ResolutionWarned, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// GetTracking returns a lead's tracking row.
func (r *Repository) GetTracking(ctx context.Context, leadID uuid.UUID) (domain.Tracking, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+trackingColumns+` FROM sla_trackings WHERE lead_id = $1`, leadID)

	tracking, err := scanTracking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tracking{}, ErrTrackingNotFound
		}
		return domain.Tracking{}, db.Classify(err)
	}

	return tracking, nil
}

// ListOpenTrackings returns unresolved trackings on non-deleted leads.
// Batches page by id keyset; the order is arbitrary but stable, which is all
// the sweep cursor needs. Pass uuid.Nil to start from the beginning.
func (r *Repository) ListOpenTrackings(ctx context.Context, afterID uuid.UUID, limit int) ([]domain.Tracking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+prefixedTrackingColumns+`
		FROM sla_trackings t
		JOIN leads l ON l.id = t.lead_id
		WHERE t.resolved_at IS NULL
		  AND l.deleted_at IS NULL
		  AND t.id > $1
		ORDER BY t.id ASC
		LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	trackings := make([]domain.Tracking, 0, limit)
	for rows.Next() {
		tracking, err := scanTracking(rows)
		if err != nil {
			return nil, db.Classify(err)
		}
		trackings = append(trackings, tracking)
	}

	return trackings, db.Classify(rows.Err())
}

const prefixedTrackingColumns = `t.id, t.lead_id, t.policy_id, t.started_at, t.warning_threshold_percent,
	t.first_response_due, t.first_response_at, t.first_response_breached, t.first_response_warned,
	t.resolution_due, t.resolved_at, t.resolution_breached, t.resolution_warned, t.created_at, t.updated_at`

// Flag names accepted by MarkFlag.
const (
	FlagFirstResponseBreached = "first_response_breached"
	FlagFirstResponseWarned   = "first_response_warned"
	FlagResolutionBreached    = "resolution_breached"
	FlagResolutionWarned      = "resolution_warned"
)

// MarkFlag raises one of the monotonic tracking flags. It returns true only
// when this call flipped the flag, which is what gates notification emission
// to exactly once per state change.
func (r *Repository) MarkFlag(ctx context.Context, trackingID uuid.UUID, flag string) (bool, error) {
	switch flag {
	case FlagFirstResponseBreached, FlagFirstResponseWarned, FlagResolutionBreached, FlagResolutionWarned:
	default:
		return false, errors.New("unknown tracking flag: " + flag)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE sla_trackings SET `+flag+` = true, updated_at = now()
		WHERE id = $1 AND `+flag+` = false`, trackingID)
	if err != nil {
		return false, db.Classify(err)
	}

	return tag.RowsAffected() > 0, nil
}
