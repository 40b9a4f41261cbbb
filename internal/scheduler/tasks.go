// Package scheduler owns the background work: the asynq queue for breach
// escalation email and the periodic sweep that feeds it.
package scheduler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TypeBreachEmail is the task type for SLA breach escalation mail.
const TypeBreachEmail = "email:sla_breach"

// BreachEmailPayload carries everything the worker needs so it never has to
// query the database to deliver.
type BreachEmailPayload struct {
	LeadID    uuid.UUID `json:"leadId"`
	LeadName  string    `json:"leadName"`
	To        string    `json:"to"`
	ToName    string    `json:"toName"`
	Dimension string    `json:"dimension"`
	Due       time.Time `json:"due"`
}

// NewBreachEmailTask builds the queue task for a breach alert.
func NewBreachEmailTask(payload BreachEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal breach email payload: %w", err)
	}

	return asynq.NewTask(TypeBreachEmail, data,
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	), nil
}
