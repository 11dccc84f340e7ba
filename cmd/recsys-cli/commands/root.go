// Package commands implements the demo CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/TechNxt05/Amazon-Recommendation-System/internal/backend"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/config"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/observability"
)

var (
	cfgFile string
	baseURL string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "recsys-cli",
	Short: "Recommendation demo client - query, trust, and bundle from the terminal",
	Long: `recsys-cli drives the product-recommendation demo backend from the terminal:
run prompt queries through the full normalize/filter/sort/paginate pipeline,
fetch per-product trust reports, and generate product bundles.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads configuration and applies CLI-level overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		cfg.Backend.BaseURL = baseURL
	}
	return cfg, nil
}

// newClient builds a backend client from the loaded config.
func newClient(cfg *config.Config) *backend.Client {
	return backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	})
}

// newLogger builds the diagnostic logger for CLI runs. Quiet unless -v.
func newLogger() *observability.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      "console",
		ServiceName: "recsys-cli",
	})
}
