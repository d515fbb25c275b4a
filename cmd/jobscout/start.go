package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okaneo/jobscout/internal/run"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the collection daemon",
	Long:  "Runs a collection cycle on the configured interval; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.Interval.String(),
		"sources", len(cfg.EnabledSources()),
		"store", cfg.Store.Backend,
		"concurrency", cfg.Concurrency,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seenStore, err := buildStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer seenStore.Close()

	if tracked, err := seenStore.Count(ctx); err == nil {
		logger.Info("store ready", "backend", cfg.Store.Backend, "tracked_postings", tracked)
	}

	orch, err := buildOrchestrator(ctx, cfg, seenStore, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	n := buildNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, logger)
	sched := run.NewScheduler(orch, cfg.Interval, func(res run.Result) {
		publish(cfg, n, logger, res)
	}, logger)

	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
