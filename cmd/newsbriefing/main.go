package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"NewsBriefing/internal/config"
	"NewsBriefing/internal/logging"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "newsbriefing",
		Short:         "newsbriefing | Milan daily news briefing",
		Long:          "Collects strikes, news and weather for Milan, dedups against earlier runs and renders a daily brief.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to the sources YAML (default $NEWSBRIEFING_CONFIG or config/sources.yaml)")

	root.AddCommand(
		runCmd(),
		checkCmd(),
		degradeCmd(),
		dailyCmd(),
		serveCmd(),
		sourcesCmd(),
		runsCmd(),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves --config and loads it.
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	path := configPath(cmd)
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, path, err
	}
	return cfg, path, nil
}

func cliLogger(cfg config.Config) *slog.Logger {
	return logging.New(cfg.Logging.Level, cfg.Logging.Format)
}
