package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/TechNxt05/Amazon-Recommendation-System/cmd/recsys-cli/ui"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/eventlog"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/recommend"
)

var (
	queryPrompt     string
	queryImportance int
	querySort       string
	queryPage       int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a recommendation query through the full client pipeline",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryPrompt, "prompt", "p", "", "free-text prompt (required)")
	queryCmd.Flags().IntVarP(&queryImportance, "importance", "i", 30, "price importance 0-100")
	queryCmd.Flags().StringVarP(&querySort, "sort", "s", "best_match", "sort key: best_match, price, reviews")
	queryCmd.Flags().IntVar(&queryPage, "page", 1, "1-based result page")
	queryCmd.MarkFlagRequired("prompt")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
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

	orch := recommend.NewOrchestrator(client, events, logger, recommend.OrchestratorConfig{
		PageSize:         cfg.Query.PageSize,
		DebounceInterval: cfg.Query.DebounceInterval,
	})
	defer orch.Close()

	orch.SetSortKey(recommend.ParseSortKey(querySort))

	sp := ui.NewSpinner("fetching recommendations...")
	sp.Start()
	orch.Query(ctx, queryPrompt, queryImportance)
	sp.Stop()

	state := orch.State()
	if state.Error != "" {
		ui.Errorf("query failed: %s", state.Error)
		return fmt.Errorf("%s", state.Error)
	}

	orch.SetPage(queryPage)
	pageItems, page, totalPages := orch.PageView()

	ui.Verbose("price window: %.0f - %.0f (importance %d)", state.PriceRange.Min, state.PriceRange.Max, state.PriceImportance)

	if len(pageItems) == 0 {
		ui.Message("No products matched %q.", queryPrompt)
		return nil
	}

	rows := make([][]string, 0, len(pageItems))
	for _, p := range pageItems {
		price := "-"
		if p.Price != nil {
			price = fmt.Sprintf("%.2f", *p.Price)
		}
		rows = append(rows, []string{
			p.ASIN,
			truncate(p.Title, 48),
			fmt.Sprintf("%.3f", p.Score),
			price,
			fmt.Sprintf("%d", p.Reviews),
		})
	}

	ui.Table([]string{"ASIN", "TITLE", "SCORE", "PRICE", "REVIEWS"}, rows)
	ui.Message("page %d/%d, %d products total", page, totalPages, len(state.Products))

	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
