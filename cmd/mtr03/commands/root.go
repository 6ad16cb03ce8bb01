package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/mtr03-counter/pkg/config"
)

var (
	// Global flags
	logLevel  string
	logFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mtr03",
	Short: "MTR03 egg production report counter",
	Long: `mtr03 reads MTR03 egg-production report PDFs and sums total and good
egg counts over date intervals.

Examples:
  mtr03 analyze --pdf relatorio.pdf --year 2025 --start 01/01/2025 --end 31/01/2025
  mtr03 analyze --pdf relatorio.pdf --year 2025 --start 01/01/2025 --count 4 --days 7 --out resultados_mtr03.xlsx
  mtr03 serve`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error), defaults to LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text|json), defaults to LOG_FORMAT")
}

// logConfig merges the global flags over the given settings
func logConfig(base config.LogConfig) config.LogConfig {
	if logLevel != "" {
		base.Level = logLevel
	}
	if logFormat != "" {
		base.Format = logFormat
	}
	return base
}

// cliLogger builds a stderr logger for one-off commands
func cliLogger() *slog.Logger {
	cfg := logConfig(config.LogConfig{
		Level:  envOr("LOG_LEVEL", "warn"),
		Format: envOr("LOG_FORMAT", "text"),
	})
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
