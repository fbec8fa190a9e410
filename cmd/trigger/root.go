package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hn-digest/trigger/internal/config"
	"github.com/hn-digest/trigger/internal/github"
	"github.com/hn-digest/trigger/internal/logging"
	"github.com/hn-digest/trigger/internal/metrics"
	"github.com/hn-digest/trigger/internal/trigger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// app is the state shared by subcommands once configuration is resolved.
type app struct {
	cfg      *config.Config
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	service  *trigger.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var envFile string

	root := &cobra.Command{
		Use:           "trigger",
		Short:         "Start the digest workflow on a schedule or on an authenticated HTTP call",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				envFile = os.Getenv("DOTENV_FILE")
			}
			if err := config.LoadEnvFile(envFile); err != nil {
				return err
			}
			return a.init(config.Load())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file loaded before reading the environment (default $DOTENV_FILE)")

	root.AddCommand(newServeCmd(a), newDispatchCmd(a), newLlmsCmd())
	return root
}

func (a *app) init(cfg *config.Config) error {
	slog.SetDefault(logging.New(cfg.LogLevel, cfg.LogFormat))
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	owner, repo, _ := cfg.RepoOwnerName()

	gh, err := github.NewClient(github.ClientConfig{
		Token:     cfg.GitHubToken,
		UserAgent: cfg.UserAgent,
		BaseURL:   cfg.GitHubAPIURL,
		Timeout:   cfg.HTTPTimeout(),
	})
	if err != nil {
		return fmt.Errorf("github client: %w", err)
	}

	a.cfg = cfg
	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.registry)
	a.service = trigger.NewService(gh, trigger.Target{Owner: owner, Repo: repo, Workflow: cfg.WorkflowFile}, a.metrics)
	return nil
}

func (a *app) location() *time.Location {
	loc, err := time.LoadLocation(a.cfg.ScheduleTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}
