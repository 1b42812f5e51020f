package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/terra-clan/learning-roadmaps/internal/config"
	"github.com/terra-clan/learning-roadmaps/internal/content"
	"github.com/terra-clan/learning-roadmaps/internal/registry"
)

func importCmd() *cobra.Command {
	var (
		dir   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load YAML content and replace the content stored in PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(func(cfg *config.Config) {
				if cmd.Flags().Changed("content") {
					cfg.Content.Dir = dir
				}
			})
			if err != nil {
				return err
			}
			if !cfg.Database.Enabled() {
				return fmt.Errorf("DATABASE_DSN is required for import")
			}

			ctx := cmd.Context()

			reg, err := content.NewLoader(cfg.Content.Dir).Load(ctx)
			if err != nil {
				return fmt.Errorf("load content: %w", err)
			}
			if issues := reg.Validate(); registry.HasErrors(issues) && !force {
				for _, issue := range issues {
					slog.Error("content issue", "issue", issue.String())
				}
				return fmt.Errorf("content has errors; use --force to import anyway")
			}

			repo, err := openRepository(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.ReplaceContent(ctx, reg); err != nil {
				return err
			}

			stats := reg.Stats()
			slog.Info("content imported",
				"roadmaps", stats.Roadmaps,
				"phases", stats.Phases,
				"topics", stats.Topics,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "content", "./content", "Content directory (overrides CONTENT_DIR)")
	cmd.Flags().BoolVar(&force, "force", false, "Import even when validation reports errors")

	return cmd
}
