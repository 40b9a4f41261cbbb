package repository

import (
	"context"
	"errors"
	"time"

	"github.com/niketshah083/lead-management-backend-sub002/platform/db"

	"github.com/google/uuid"
)

type ApplyTransitionParams struct {
	LeadID       uuid.UUID
	FromStatusID uuid.UUID
	ToStatusID   uuid.UUID
	ActorID      uuid.UUID
	Comment      *string
	At           time.Time
	MarkResolved bool
}

// ApplyTransition moves the lead to its new status, stamps the resolution
// when the target status is final, and appends the history record. The
// status update is guarded on the expected current status so a concurrent
// transition fails cleanly instead of silently overwriting; everything
// commits or nothing does.
//
// The resolution stamp only lands when resolved_at is still null, and the
// breach flag is derived from the row's own due time, so a replay can never
// move a stamp or lower a flag.
func (r *Repository) ApplyTransition(ctx context.Context, params ApplyTransitionParams) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.Classify(err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE leads SET status_id = $3, updated_at = now()
		WHERE id = $1 AND status_id = $2 AND deleted_at IS NULL`,
		params.LeadID, params.FromStatusID, params.ToStatusID)
	if err != nil {
		return mapReferenceError(err)
	}
	if tag.RowsAffected() == 0 {
		// Either the lead is gone or another transition won the race.
		if _, err := r.GetLead(ctx, params.LeadID); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrStaleStatus
	}

	if params.MarkResolved {
		if _, err := tx.Exec(ctx, `
			UPDATE sla_trackings SET
				resolved_at = $2,
				resolution_breached = resolution_breached OR $2 > resolution_due,
				updated_at = now()
			WHERE lead_id = $1 AND resolved_at IS NULL`,
			params.LeadID, params.At); err != nil {
			return db.Classify(err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO lead_status_history (lead_id, from_status_id, to_status_id, actor_id, comment, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		params.LeadID, params.FromStatusID, params.ToStatusID, params.ActorID, params.Comment, params.At)
	if err != nil {
		return mapReferenceError(err)
	}

	return db.Classify(tx.Commit(ctx))
}

type HistoryEntry struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	FromStatusID uuid.UUID
	ToStatusID   uuid.UUID
	ActorID      uuid.UUID
	Comment      *string
	OccurredAt   time.Time
}

// ListHistory returns a lead's transition records, oldest first.
func (r *Repository) ListHistory(ctx context.Context, leadID uuid.UUID) ([]HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, from_status_id, to_status_id, actor_id, comment, occurred_at
		FROM lead_status_history
		WHERE lead_id = $1
		ORDER BY occurred_at ASC, id ASC`, leadID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.LeadID, &e.FromStatusID, &e.ToStatusID, &e.ActorID, &e.Comment, &e.OccurredAt); err != nil {
			return nil, db.Classify(err)
		}
		entries = append(entries, e)
	}

	return entries, db.Classify(rows.Err())
}

// Message directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

type Message struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	SenderID    *uuid.UUID
	Direction   string
	Body        string
	IsAutoReply bool
	CreatedAt   time.Time
}

type InsertMessageParams struct {
	LeadID      uuid.UUID
	SenderID    *uuid.UUID
	Direction   string
	Body        string
	IsAutoReply bool
	At          time.Time
}

// InsertMessage appends to the lead's message log. An outbound human message
// stamps the tracking's first response in the same transaction when none was
// recorded yet; auto-replies never count as a first touch. Returns the
// message and whether this write recorded the first response.
func (r *Repository) InsertMessage(ctx context.Context, params InsertMessageParams) (Message, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Message{}, false, db.Classify(err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO lead_messages (lead_id, sender_id, direction, body, is_auto_reply, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, lead_id, sender_id, direction, body, is_auto_reply, created_at`,
		params.LeadID, params.SenderID, params.Direction, params.Body, params.IsAutoReply, params.At)

	var m Message
	if err := row.Scan(&m.ID, &m.LeadID, &m.SenderID, &m.Direction, &m.Body, &m.IsAutoReply, &m.CreatedAt); err != nil {
		return Message{}, false, mapReferenceError(err)
	}

	firstResponse := false
	if params.Direction == DirectionOutbound && !params.IsAutoReply {
		tag, err := tx.Exec(ctx, `
			UPDATE sla_trackings SET
				first_response_at = $2,
				first_response_breached = first_response_breached OR $2 > first_response_due,
				updated_at = now()
			WHERE lead_id = $1 AND first_response_at IS NULL`,
			params.LeadID, params.At)
		if err != nil {
			return Message{}, false, db.Classify(err)
		}
		firstResponse = tag.RowsAffected() > 0
	}

	if err := tx.Commit(ctx); err != nil {
		return Message{}, false, db.Classify(err)
	}

	return m, firstResponse, nil
}

// ListMessages returns the lead's message log, oldest first.
func (r *Repository) ListMessages(ctx context.Context, leadID uuid.UUID) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, sender_id, direction, body, is_auto_reply, created_at
		FROM lead_messages
		WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC`, leadID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.LeadID, &m.SenderID, &m.Direction, &m.Body, &m.IsAutoReply, &m.CreatedAt); err != nil {
			return nil, db.Classify(err)
		}
		messages = append(messages, m)
	}

	return messages, db.Classify(rows.Err())
}
