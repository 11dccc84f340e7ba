package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/TechNxt05/Amazon-Recommendation-System/cmd/recsys-cli/ui"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/cache"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/eventlog"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/recommend"
)

var trustCmd = &cobra.Command{
	Use:   "trust <asin>",
	Short: "Fetch the trust report for one product",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrust,
}

func init() {
	rootCmd.AddCommand(trustCmd)
}

func runTrust(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	asin := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ui.InitUI(noColor, verbose)

	client := newClient(cfg)
	logger := newLogger()
	events := eventlog.NewSideChannel(client, logger, cfg.Backend.Timeout)
	trustCache := cache.NewMemoryClient(cfg.Cache.MaxEntries)

	fetcher := recommend.NewTrustFetcher(client, trustCache, cfg.Cache.TTL, events)

	sp := ui.NewSpinner(fmt.Sprintf("checking trust for %s...", asin))
	sp.Start()

	fetcher.Open(ctx, asin)
	state := fetcher.Active()
	for state != nil && state.Loading {
		select {
		case <-ctx.Done():
			sp.Stop()
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
		state = fetcher.Active()
	}
	sp.Stop()

	if state == nil || state.Data == nil {
		return fmt.Errorf("trust lookup for %s produced no result", asin)
	}

	report := state.Data
	if report.Error != "" {
		ui.Errorf("trust lookup failed: %s", report.Error)
		return fmt.Errorf("%s", report.Error)
	}

	switch {
	case report.TrustScore != nil:
		ui.Success("trust score for %s: %.3f", asin, *report.TrustScore)
	case report.Score != nil:
		ui.Success("trust score for %s: %.3f", asin, *report.Score)
	default:
		ui.Message("no trust score available for %s", asin)
	}

	for _, line := range report.Explanations {
		ui.Message("  - %s", line)
	}
	if report.Explain != "" {
		ui.Verbose("  %s", report.Explain)
	}

	fetcher.Dismiss()
	return nil
}
