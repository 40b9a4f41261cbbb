// The sweeper binary runs the background side of the system: the periodic
// SLA sweep and the task worker that delivers breach escalation email.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/niketshah083/lead-management-backend-sub002/internal/directory"
	"github.com/niketshah083/lead-management-backend-sub002/internal/email"
	"github.com/niketshah083/lead-management-backend-sub002/internal/leads"
	"github.com/niketshah083/lead-management-backend-sub002/internal/notification"
	notifsvc "github.com/niketshah083/lead-management-backend-sub002/internal/notification/service"
	"github.com/niketshah083/lead-management-backend-sub002/internal/scheduler"
	"github.com/niketshah083/lead-management-backend-sub002/internal/sla"
	"github.com/niketshah083/lead-management-backend-sub002/internal/statusflow"
	"github.com/niketshah083/lead-management-backend-sub002/internal/visibility"
	"github.com/niketshah083/lead-management-backend-sub002/platform/config"
	"github.com/niketshah083/lead-management-backend-sub002/platform/db"
	"github.com/niketshah083/lead-management-backend-sub002/platform/events"
	"github.com/niketshah083/lead-management-backend-sub002/platform/logger"
	"github.com/niketshah083/lead-management-backend-sub002/platform/validator"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("sweeper exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	val := validator.New()
	bus := events.NewInMemoryBus(log)

	directoryModule := directory.NewModule(pool, val)
	statusflowModule := statusflow.NewModule(pool, val)
	slaModule := sla.NewModule(pool, val)

	filter := visibility.New(directoryModule.Repository())
	leadsModule := leads.NewModule(pool, val,
		statusflowModule.Service(), slaModule.Service(), filter, bus, log)

	var mailer notifsvc.BreachEmailEnqueuer
	if cfg.RedisURL != "" && cfg.EmailEnabled {
		client, err := scheduler.NewClient(cfg, log)
		if err != nil {
			return err
		}
		defer client.Close()
		mailer = client
	}

	notification.NewModule(pool, bus,
		directoryModule.Repository(), leadsModule.Repository(), mailer, log)

	runner := scheduler.NewSweepRunner(leadsModule.Coordinator(), slaModule.Repository(), cfg, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Run(gctx)
	})

	if cfg.RedisURL != "" && cfg.EmailEnabled {
		sender, err := email.NewSender(cfg, log)
		if err != nil {
			return err
		}
		worker, err := scheduler.NewWorker(cfg, sender, log)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return worker.Run(gctx)
		})
	} else {
		log.Info("email worker disabled")
	}

	return g.Wait()
}
