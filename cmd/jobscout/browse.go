package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okaneo/jobscout/internal/browse"
	"github.com/okaneo/jobscout/internal/config"
	"github.com/okaneo/jobscout/internal/extract"
	"github.com/okaneo/jobscout/internal/fetch"
	"github.com/okaneo/jobscout/internal/identity"
	"github.com/okaneo/jobscout/internal/llm"
	"github.com/okaneo/jobscout/internal/model"
	"github.com/okaneo/jobscout/internal/source"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse postings interactively (TUI)",
	Long:  "Shows the source picker TUI, then fetches and browses that source's postings with new/seen badges.",
	RunE:  runBrowseCmd,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowseCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seenStore, err := buildStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer seenStore.Close()

	runBrowse(ctx, cfg, seenStore)
	return nil
}

func runBrowse(ctx context.Context, cfg *config.Config, seenStore model.SeenStore) {
	sources := cfg.EnabledSources()
	if len(sources) == 0 {
		fmt.Println("No enabled sources in config.")
		return
	}

	// The TUI owns the terminal; log output would corrupt the display.
	silent := slog.New(slog.NewTextHandler(io.Discard, nil))
	httpClient := &http.Client{Timeout: 30 * time.Second}
	registry := source.NewRegistry()
	fetcher := fetch.NewFetcher(httpClient, 2, 5*time.Second, silent)

	var htmlExtractor model.HTMLExtractor
	if cfg.NeedsLLM() {
		if provider, err := buildProvider(ctx, cfg, httpClient); err == nil {
			htmlExtractor = llm.NewExtractor(provider, silent)
		}
	}
	extractor := extract.NewExtractor(htmlExtractor, cfg.LLM.Timeout, silent)

	for {
		choice, err := browse.RunSourcePicker(sources)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return
		}
		if choice < 0 {
			return
		}
		desc := sources[choice]

		items, err := browse.RunLoader(desc.Name, func(ctx context.Context) ([]browse.Item, error) {
			strat, err := registry.Resolve(desc)
			if err != nil {
				return nil, err
			}
			raw, err := fetcher.Fetch(ctx, desc, strat)
			if err != nil {
				return nil, err
			}
			postings, _, err := extractor.Extract(ctx, raw, desc, strat)
			if err != nil {
				return nil, err
			}

			// Browsing is read-only: classify against the store without
			// recording anything.
			items := make([]browse.Item, 0, len(postings))
			for _, p := range postings {
				_, exists, err := seenStore.Get(ctx, identity.Key(p))
				if err != nil {
					return nil, err
				}
				items = append(items, browse.Item{Posting: p, New: !exists})
			}
			return items, nil
		})
		if err != nil {
			fmt.Printf("Error fetching postings: %v\n", err)
			continue
		}

		if err := browse.RunBrowser(desc.Name, items); err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		// loop → back to picker
	}
}
