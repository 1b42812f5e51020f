package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/terra-clan/learning-roadmaps/internal/config"
	"github.com/terra-clan/learning-roadmaps/internal/content"
	"github.com/terra-clan/learning-roadmaps/internal/export"
	"github.com/terra-clan/learning-roadmaps/internal/site"
)

func buildCmd() *cobra.Command {
	var (
		outDir string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Export the site as static HTML and JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(func(cfg *config.Config) {
				if cmd.Flags().Changed("out") {
					cfg.Build.OutputDir = outDir
				}
				if cmd.Flags().Changed("content") {
					cfg.Content.Dir = dir
				}
			})
			if err != nil {
				return err
			}
			return build(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "./public", "Output directory (overrides BUILD_OUTPUT_DIR)")
	cmd.Flags().StringVar(&dir, "content", "./content", "Content directory (overrides CONTENT_DIR)")

	return cmd
}

func build(ctx context.Context, cfg *config.Config) error {
	start := time.Now()

	reg, err := content.NewLoader(cfg.Content.Dir).Load(ctx)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}

	renderer, err := site.NewRenderer(false)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	result, err := export.NewExporter(renderer).Export(ctx, reg, cfg.Build.OutputDir)
	if err != nil {
		return fmt.Errorf("export site: %w", err)
	}

	slog.Info("site exported",
		"out", cfg.Build.OutputDir,
		"revision", reg.Revision(),
		"pages", result.Pages,
		"json_files", result.JSONFiles,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
