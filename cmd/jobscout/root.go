package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okaneo/jobscout/internal/config"
	"github.com/okaneo/jobscout/internal/dedup"
	"github.com/okaneo/jobscout/internal/extract"
	"github.com/okaneo/jobscout/internal/fetch"
	"github.com/okaneo/jobscout/internal/llm"
	"github.com/okaneo/jobscout/internal/model"
	"github.com/okaneo/jobscout/internal/normalize"
	"github.com/okaneo/jobscout/internal/notifier"
	"github.com/okaneo/jobscout/internal/output"
	"github.com/okaneo/jobscout/internal/ratelimit"
	"github.com/okaneo/jobscout/internal/run"
	"github.com/okaneo/jobscout/internal/source"
	"github.com/okaneo/jobscout/internal/store"
)

var (
	cfgPath           string
	debug             bool
	skipNormalization bool
	outputDir         string
)

var rootCmd = &cobra.Command{
	Use:   "jobscout",
	Short: "Job posting collector",
	Long:  "JobScout collects postings from job boards and career pages, flags the ones it has never seen before, and alerts you.",
	// Default to `start` so that `jobscout` with no args runs the daemon.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSCOUT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&skipNormalization, "skip-normalization", false, "skip LLM normalization of collected postings")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "override the configured output directory")
}

// loadConfig resolves the config path, parses it, and applies CLI flag
// overrides. Priority: explicit path arg > JOBSCOUT_CONFIG env var >
// "./config.yaml".
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBSCOUT_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	// The flag turns skipping on; it never re-enables normalization the
	// config disabled.
	if skipNormalization {
		cfg.SkipNormalization = true
	}
	return cfg, nil
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func buildStore(ctx context.Context, cfg *config.Config) (model.SeenStore, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return store.NewSQLiteStore(cfg.Store.Path)
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.Store.DSN)
	case "redis":
		return store.NewRedisStore(ctx, cfg.Store.URL)
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func buildNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	case "email":
		logger.Info("using email notifier", "host", cfg.Notification.Email.Host)
		return notifier.NewEmailNotifier(notifier.EmailConfig{
			Host:     cfg.Notification.Email.Host,
			Port:     cfg.Notification.Email.Port,
			Username: cfg.Notification.Email.Username,
			Password: cfg.Notification.Email.Password,
			From:     cfg.Notification.Email.From,
			To:       cfg.Notification.Email.To,
		}, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func buildProvider(ctx context.Context, cfg *config.Config, httpClient *http.Client) (llm.Provider, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return llm.NewOpenAIProvider(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, httpClient), nil
	case "googleai":
		return llm.NewGoogleAIProvider(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// buildOrchestrator wires the whole pipeline around the given store.
func buildOrchestrator(ctx context.Context, cfg *config.Config, seenStore model.SeenStore, logger *slog.Logger) (*run.Orchestrator, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	var htmlExtractor model.HTMLExtractor
	var normalizer model.Normalizer = normalize.NewRules()

	if cfg.NeedsLLM() {
		provider, err := buildProvider(ctx, cfg, httpClient)
		if err != nil {
			return nil, err
		}
		htmlExtractor = llm.NewExtractor(provider, logger)
		if cfg.LLM.Normalize && !cfg.SkipNormalization {
			normalizer = llm.NewNormalizer(provider, logger)
		}
	}
	if cfg.SkipNormalization {
		normalizer = normalize.NewNop()
	}

	return run.NewOrchestrator(run.Options{
		Sources:     cfg.EnabledSources(),
		Registry:    source.NewRegistry(),
		Fetcher:     fetch.NewFetcher(httpClient, 2, 5*time.Second, logger),
		Extractor:   extract.NewExtractor(htmlExtractor, cfg.LLM.Timeout, logger),
		Classifier:  dedup.NewEngine(seenStore, logger),
		Normalizer:  normalizer,
		Limiter:     ratelimit.NewLimiter(cfg.RateLimit.MinDelay, cfg.RateLimit.Overrides),
		Concurrency: cfg.Concurrency,
		MaxAge:      cfg.MaxAge,
		Logger:      logger,
	}), nil
}

// publish delivers a finished run: notify on new postings and write the
// configured output files.
func publish(cfg *config.Config, n model.Notifier, logger *slog.Logger, res run.Result) {
	if len(res.New) > 0 {
		if err := n.Notify(res.New); err != nil {
			logger.Error("notification failed", "error", err)
		}
	}

	dir := cfg.OutputDir
	if outputDir != "" {
		dir = outputDir
	}
	writer := output.NewWriter(dir)
	all := append(append([]model.Posting{}, res.New...), res.Seen...)

	for _, format := range cfg.OutputFormats {
		var path string
		var err error
		switch format {
		case "json":
			path, err = writer.WriteJSON(all, res.Started)
		case "csv":
			path, err = writer.WriteCSV(all, res.Started)
		case "html":
			path, err = writer.WriteHTML(res.New, res.Seen, res.Started)
		}
		if err != nil {
			logger.Error("output write failed", "format", format, "error", err)
			continue
		}
		logger.Info("output written", "format", format, "path", path)
	}

	for _, f := range res.Failures {
		logger.Warn("source excluded from run", "source", f.Source, "error", f.Err)
	}
	if len(res.Truncated) > 0 {
		logger.Warn("sources hit record cap", "sources", res.Truncated)
	}
}
