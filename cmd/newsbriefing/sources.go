package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"NewsBriefing/internal/config"
	"NewsBriefing/internal/domain"
)

func sourcesCmd() *cobra.Command {
	sources := &cobra.Command{
		Use:   "sources",
		Short: "Manage the source catalogue",
	}
	sources.AddCommand(sourcesListCmd(), sourcesAddCmd(), sourcesRemoveCmd())
	return sources
}

func sourcesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured sources per section",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			for _, section := range domain.AllSections {
				sec := cfg.Section(section)
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d)\n", section, len(sec.Sources))
				for _, src := range sec.Sources {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %-7s %-13s %s\n", src.Name, src.Type, src.Kind, src.URL)
				}
			}
			return nil
		},
	}
}

func sourcesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <section> <name> <type> <url>",
		Short: "Add a source; for search sources the url is the query",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			parserKey, _ := cmd.Flags().GetString("parser")
			count, _ := cmd.Flags().GetInt("count")
			country, _ := cmd.Flags().GetString("country")
			spec := domain.SourceSpec{
				Name:    args[1],
				Type:    domain.SourceType(args[2]),
				URL:     args[3],
				Parser:  parserKey,
				Count:   count,
				Country: country,
			}

			path := configPath(cmd)
			err := config.Edit(path, func(cfg *config.Config) error {
				return cfg.AddSource(domain.Section(args[0]), spec)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s in %s\n", spec.Name, args[0], path)
			return nil
		},
	}
	cmd.Flags().String("parser", "", "Parser key when the type alone is ambiguous")
	cmd.Flags().Int("count", 0, "Search result count")
	cmd.Flags().String("country", "", "Search country code")
	return cmd
}

func sourcesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <section> <name>",
		Short: "Remove a source by name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath(cmd)
			err := config.Edit(path, func(cfg *config.Config) error {
				return cfg.RemoveSource(domain.Section(args[0]), args[1])
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s from %s in %s\n", args[1], args[0], path)
			return nil
		},
	}
}

func configPath(cmd *cobra.Command) string {
	arg, _ := cmd.Flags().GetString("config")
	return config.Path(arg)
}
