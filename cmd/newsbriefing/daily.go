package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"NewsBriefing/internal/app"
	"NewsBriefing/internal/infrastructure/scheduler"
)

func dailyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Precheck, degrade if needed, run with retries and send alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			runOpts, err := runOptionsFromFlags(cmd, cfg)
			if err != nil {
				return err
			}

			application, err := app.New(cfg, app.Options{ConfigPath: path, Logger: cliLogger(cfg)})
			if err != nil {
				return err
			}
			defer application.Close()

			res, err := application.Daily(cmd.Context(), runOpts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %d for %s after %d attempt(s), config %s\n",
				res.Run.RunID, res.Run.Brief.ReportDate, res.Attempts, res.ConfigUsed)
			return nil
		},
	}
	addRunFlags(cmd)
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daily job on the configured cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := scheduler.Validate(cfg.Scheduler.CronExpression); err != nil {
				return err
			}

			application, err := app.New(cfg, app.Options{ConfigPath: path, Logger: cliLogger(cfg)})
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Serve(cmd.Context())
		},
	}
}

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent persisted runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			application, err := app.New(cfg, app.Options{ConfigPath: path, Logger: cliLogger(cfg)})
			if err != nil {
				return err
			}
			defer application.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			runs, err := application.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s  %s  %s\n", r.ID, r.ReportDate, r.CreatedAt, r.BriefPath)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 10, "Number of runs to show")
	return cmd
}
