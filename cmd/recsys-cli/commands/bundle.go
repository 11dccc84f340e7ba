package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/TechNxt05/Amazon-Recommendation-System/cmd/recsys-cli/ui"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/eventlog"
)

var bundlePrompt string

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Generate a complementary-product bundle for a prompt",
	RunE:  runBundle,
}

func init() {
	bundleCmd.Flags().StringVarP(&bundlePrompt, "prompt", "p", "", "free-text prompt (required)")
	bundleCmd.MarkFlagRequired("prompt")
	rootCmd.AddCommand(bundleCmd)
}

func runBundle(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ui.InitUI(noColor, verbose)

	client := newClient(cfg)
	logger := newLogger()
	events := eventlog.NewSideChannel(client, logger, cfg.Backend.Timeout)

	sp := ui.NewSpinner("generating bundle...")
	sp.Start()
	bundle, err := client.GenerateBundle(ctx, bundlePrompt)
	sp.Stop()

	if err != nil {
		events.Log(eventlog.LevelError, "bundle generation failed", map[string]any{
			"prompt": bundlePrompt,
			"error":  err.Error(),
		})
		ui.Errorf("bundle generation failed: %s", err)
		return err
	}

	if len(bundle.Bundle) == 0 {
		ui.Message("The backend returned an empty bundle.")
		return nil
	}

	rows := make([][]string, 0, len(bundle.Bundle))
	for _, item := range bundle.Bundle {
		price := "-"
		if item.Price != nil {
			price = fmt.Sprintf("%.2f", *item.Price)
		}
		rows = append(rows, []string{
			item.ASIN,
			truncate(item.Title, 48),
			price,
			fmt.Sprintf("%.2f", item.Trust),
		})
	}

	ui.Table([]string{"ASIN", "TITLE", "PRICE", "TRUST"}, rows)
	if bundle.Justification != "" {
		ui.Message("\n%s", bundle.Justification)
	}

	return nil
}
