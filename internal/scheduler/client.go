package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/niketshah083/lead-management-backend-sub002/platform/config"
	"github.com/niketshah083/lead-management-backend-sub002/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// redisConnOpt builds the asynq connection options from the Redis URL.
func redisConnOpt(cfg config.SchedulerConfig) (asynq.RedisClientOpt, error) {
	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("parse redis url: %w", err)
	}

	connOpt := asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	}
	if opts.TLSConfig != nil {
		connOpt.TLSConfig = opts.TLSConfig
		if cfg.GetRedisTLSInsecure() {
			connOpt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
		}
	}

	return connOpt, nil
}

// Client enqueues background tasks.
type Client struct {
	client *asynq.Client
	queue  string
	log    *logger.Logger
}

// NewClient connects the task queue.
func NewClient(cfg config.SchedulerConfig, log *logger.Logger) (*Client, error) {
	connOpt, err := redisConnOpt(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(connOpt),
		queue:  cfg.GetAsynqQueueName(),
		log:    log,
	}, nil
}

// EnqueueBreachEmail queues a breach alert for delivery. Delivery and retry
// are the worker's concern; a failed enqueue is surfaced to the caller.
func (c *Client) EnqueueBreachEmail(ctx context.Context, payload BreachEmailPayload) error {
	task, err := NewBreachEmailTask(payload)
	if err != nil {
		return err
	}

	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	if err != nil {
		return fmt.Errorf("enqueue breach email: %w", err)
	}

	c.log.Info("breach email queued", "task_id", info.ID, "lead_id", payload.LeadID)
	return nil
}

// Close releases the queue connection.
func (c *Client) Close() error {
	return c.client.Close()
}
