package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hn-digest/trigger/internal/schedule"
	"github.com/hn-digest/trigger/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP trigger endpoint and the built-in schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	slog.Info("starting", "http_addr", cfg.HTTPAddr, "repo", cfg.GitHubRepo, "workflow", cfg.WorkflowFile,
		"schedule", cfg.Schedule, "schedule_tz", cfg.ScheduleTZ, "secret_configured", cfg.TriggerSecret != "")

	// Scheduler
	var sched *schedule.Scheduler
	if cfg.Schedule != "" {
		var err error
		sched, err = schedule.NewScheduler(a.service, cfg.Schedule, a.location(), cfg.HTTPTimeout())
		if err != nil {
			return err
		}
		sched.Start()
	} else {
		slog.Info("scheduler disabled", "reason", "TRIGGER_SCHEDULE is empty")
	}

	// HTTP server
	srv := server.NewServer(cfg.HTTPAddr, a.service, server.Options{
		Secret:   cfg.TriggerSecret,
		Metrics:  a.metrics,
		Gatherer: a.registry,
	})
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", cfg.HTTPAddr)
		serverErrors <- srv.Start()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case s := <-sig:
		slog.Info("shutting down", "signal", s.String())
	case <-ctx.Done():
		slog.Info("shutting down", "reason", ctx.Err())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			slog.Warn("scheduler shutdown", "err", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http server shutdown", "err", err)
	} else {
		slog.Info("http server stopped")
	}
	return runErr
}
