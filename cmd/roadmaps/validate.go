package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/terra-clan/learning-roadmaps/internal/config"
	"github.com/terra-clan/learning-roadmaps/internal/content"
	"github.com/terra-clan/learning-roadmaps/internal/registry"
)

func validateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check content for duplicate ids, empty phases and unreferenced files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(func(cfg *config.Config) {
				if cmd.Flags().Changed("content") {
					cfg.Content.Dir = dir
				}
			})
			if err != nil {
				return err
			}

			loader := content.NewLoader(cfg.Content.Dir)
			reg, err := loader.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load content: %w", err)
			}

			orphans, err := loader.OrphanFragments()
			if err != nil {
				return err
			}

			issues := reg.Validate()
			report(cmd.OutOrStdout(), reg, issues, orphans)

			if registry.HasErrors(issues) {
				return fmt.Errorf("content has errors")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "content", "./content", "Content directory (overrides CONTENT_DIR)")

	return cmd
}

// report prints a human readable validation summary
func report(w io.Writer, reg *registry.Registry, issues []registry.Issue, orphans []string) {
	stats := reg.Stats()
	fmt.Fprintf(w, "%d roadmaps, %d phases, %d topics\n", stats.Roadmaps, stats.Phases, stats.Topics)

	for _, issue := range issues {
		fmt.Fprintln(w, issue.String())
	}
	for _, f := range orphans {
		fmt.Fprintf(w, "warning: %s is not referenced by any manifest\n", f)
	}

	if len(issues) == 0 && len(orphans) == 0 {
		fmt.Fprintln(w, "ok")
	}
}
