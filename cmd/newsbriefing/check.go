package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"NewsBriefing/internal/app"
	"NewsBriefing/internal/config"
	"NewsBriefing/internal/health"
)

var errUnhealthy = errors.New("some sources failed the health check")

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe every configured source",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			report := app.NewChecker(cfg, cliLogger(cfg)).Check(cmd.Context(), cfg)
			printReport(cmd.OutOrStdout(), report)

			if path, _ := cmd.Flags().GetString("write-report"); path != "" {
				if err := writeReport(path, report); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", path)
			}
			if !report.Healthy() {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().String("write-report", "", "Also write the JSON report to this path")
	return cmd
}

func degradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "degrade",
		Short: "Write a config without the sources that fail the health check",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			report := app.NewChecker(cfg, cliLogger(cfg)).Check(cmd.Context(), cfg)
			degraded := health.BuildDegradedConfig(cfg, report)

			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				stamp := time.Now().In(cfg.Location()).Format("20060102-150405")
				out = filepath.Join(cfg.Output.Dir, "runtime_configs", "degraded-"+stamp+".yaml")
			}
			if err := config.Save(out, degraded); err != nil {
				return err
			}

			removed := health.Removed(cfg, degraded)
			fmt.Fprintf(cmd.OutOrStdout(), "degraded config written to %s (%d source(s) removed)\n", out, len(removed))
			for _, src := range removed {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s %s\n", src.Name, src.URL)
			}
			return nil
		},
	}
	cmd.Flags().String("out", "", "Output path (default <output>/runtime_configs/degraded-<timestamp>.yaml)")
	return cmd
}

func printReport(w io.Writer, report health.Report) {
	fmt.Fprintf(w, "sources: %d ok, %d failed, %d total\n", report.Summary.OK, report.Summary.Failed, report.Summary.Total)
	for _, res := range report.Results {
		mark := "ok  "
		if !res.OK {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "  %s %-13s %-20s %s\n", mark, res.Section, res.Name, res.Detail)
	}
}

func writeReport(path string, report health.Report) error {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
