package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"NewsBriefing/internal/app"
	"NewsBriefing/internal/config"
	"NewsBriefing/internal/infrastructure/output"
	"NewsBriefing/internal/render"
	"NewsBriefing/internal/usecase"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build today's brief once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			runOpts, err := runOptionsFromFlags(cmd, cfg)
			if err != nil {
				return err
			}
			formatName, _ := cmd.Flags().GetString("output-format")
			format, err := output.ParseFormat(formatName)
			if err != nil {
				return err
			}

			application, err := app.New(cfg, app.Options{ConfigPath: path, OutputFormat: format, Logger: cliLogger(cfg)})
			if err != nil {
				return err
			}
			defer application.Close()

			res, err := application.Run(cmd.Context(), runOpts)
			if err != nil {
				return err
			}
			if runOpts.DryRun {
				fmt.Fprint(cmd.OutOrStdout(), res.Text)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %d for %s\n", res.RunID, res.Brief.ReportDate)
			if res.TextPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  markdown: %s\n", res.TextPath)
			}
			if res.JSONPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  json:     %s\n", res.JSONPath)
			}
			return nil
		},
	}
	addRunFlags(cmd)
	cmd.Flags().String("output-format", string(output.FormatBoth), "Artifacts to write: markdown, json or both")
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("date", "", "Report day as YYYY-MM-DD (default today)")
	cmd.Flags().Bool("dry-run", false, "Render to stdout without writing files or touching the store")
	cmd.Flags().String("layout", "", "Layout: classic, editorial or brief (default from config)")
	cmd.Flags().StringSlice("section-order", nil, "Comma separated section order, e.g. weather,strikes,italian_news")
}

func runOptionsFromFlags(cmd *cobra.Command, cfg config.Config) (usecase.RunOptions, error) {
	var opts usecase.RunOptions

	if date, _ := cmd.Flags().GetString("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, cfg.Location())
		if err != nil {
			return opts, fmt.Errorf("invalid --date %q: %w", date, err)
		}
		opts.ReportDay = day
	}
	opts.DryRun, _ = cmd.Flags().GetBool("dry-run")

	opts.Layout, _ = cmd.Flags().GetString("layout")
	if opts.Layout != "" && !slices.Contains(render.Layouts(), opts.Layout) {
		return opts, fmt.Errorf("%w: %s", render.ErrUnknownLayout, opts.Layout)
	}

	opts.SectionOrder, _ = cmd.Flags().GetStringSlice("section-order")
	if err := render.ValidateOrder(opts.SectionOrder); err != nil {
		return opts, err
	}
	return opts, nil
}
