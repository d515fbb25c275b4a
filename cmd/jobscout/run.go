package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okaneo/jobscout/internal/model"
	"github.com/okaneo/jobscout/internal/notifier"
	"github.com/okaneo/jobscout/internal/store"
)

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one collection cycle and exit",
	Long:  "Collects from all enabled sources once, reports new postings, and exits.",
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "use an in-memory store; nothing is persisted and everything appears new")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var seenStore model.SeenStore
	if dryRun {
		logger.Info("dry-run mode enabled, nothing will be persisted")
		seenStore = store.NewMemoryStore()
	} else {
		seenStore, err = buildStore(ctx, cfg)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
	}
	defer seenStore.Close()

	orch, err := buildOrchestrator(ctx, cfg, seenStore, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	res, err := orch.Execute(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	if tracked, err := seenStore.Count(ctx); err == nil {
		logger.Info("run summary",
			"new", len(res.New),
			"seen", len(res.Seen),
			"tracked_postings", tracked,
		)
	}

	var n model.Notifier
	if dryRun {
		n = notifier.NewLogNotifier(logger)
	} else {
		n = buildNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, logger)
	}
	publish(cfg, n, logger, res)
	return nil
}
