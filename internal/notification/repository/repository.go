// Package repository persists in-app notifications.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("notification not found")

// Notification types.
const (
	TypeStatusChanged = "status_changed"
	TypeSlaWarning    = "sla_warning"
	TypeSlaBreach     = "sla_breach"
)

type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	LeadID    *uuid.UUID
	Type      string
	Title     string
	Body      string
	ReadAt    *time.Time
	CreatedAt time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const notificationColumns = `id, user_id, lead_id, type, title, body, read_at, created_at`

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.UserID, &n.LeadID, &n.Type, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt)
	return n, err
}

type InsertParams struct {
	UserID uuid.UUID
	LeadID *uuid.UUID
	Type   string
	Title  string
	Body   string
}

func (r *Repository) Insert(ctx context.Context, params InsertParams) (Notification, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, lead_id, type, title, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+notificationColumns,
		params.UserID, params.LeadID, params.Type, params.Title, params.Body)

	return scanNotification(row)
}

// ListForUser returns the user's notifications, newest first. When
// unreadOnly is set, read rows are skipped.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]Notification, 0)
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	return notifications, rows.Err()
}

// MarkRead stamps a single notification. Scoped to the owner so one user
// cannot mark another's rows.
func (r *Repository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read_at = now()
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead stamps every unread notification for the user and returns how
// many were affected.
func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read_at = now()
		WHERE user_id = $1 AND read_at IS NULL`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
