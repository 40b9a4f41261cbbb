package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/niketshah083/lead-management-backend-sub002/internal/email"
	"github.com/niketshah083/lead-management-backend-sub002/platform/config"
	"github.com/niketshah083/lead-management-backend-sub002/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes queued tasks and delivers breach email.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logger.Logger
}

// NewWorker builds the asynq server and registers the task handlers.
func NewWorker(cfg config.SchedulerConfig, sender *email.Sender, log *logger.Logger) (*Worker, error) {
	connOpt, err := redisConnOpt(cfg)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(connOpt, asynq.Config{
		Concurrency: cfg.GetAsynqConcurrency(),
		Queues:      map[string]int{cfg.GetAsynqQueueName(): 1},
		Logger:      asynqLogger{log},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBreachEmail, breachEmailHandler(sender))

	return &Worker{server: server, mux: mux, log: log}, nil
}

// Run processes tasks until the context is cancelled, then drains in-flight
// handlers before returning.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start task server: %w", err)
	}

	<-ctx.Done()
	w.log.Info("task worker shutting down")
	w.server.Shutdown()
	return nil
}

func breachEmailHandler(sender *email.Sender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload BreachEmailPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal breach email payload: %v: %w", err, asynq.SkipRetry)
		}

		return sender.SendBreachAlert(ctx, payload.To, payload.ToName, payload.LeadName,
			payload.Dimension, payload.Due)
	}
}

// asynqLogger adapts the structured logger to asynq's logging interface.
type asynqLogger struct {
	log *logger.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Error(fmt.Sprint(args...)) }
