// The api binary serves the lead management HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/niketshah083/lead-management-backend-sub002/internal/auth"
	"github.com/niketshah083/lead-management-backend-sub002/internal/directory"
	apphttp "github.com/niketshah083/lead-management-backend-sub002/internal/http"
	"github.com/niketshah083/lead-management-backend-sub002/internal/http/router"
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
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.RunMigrations(ctx, cfg, "migrations"); err != nil {
		return err
	}

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
	} else {
		log.Info("breach email escalation disabled")
	}

	notificationModule := notification.NewModule(pool, bus,
		directoryModule.Repository(), leadsModule.Repository(), mailer, log)
	authModule := auth.NewModule(directoryModule.Repository(), cfg, val, log)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: bus,
		Modules: []apphttp.Module{
			authModule,
			directoryModule,
			statusflowModule,
			slaModule,
			leadsModule,
			notificationModule,
		},
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
