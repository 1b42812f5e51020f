// Package export renders the whole site and its JSON catalog to a directory
// so it can be served by any static file host.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/terra-clan/learning-roadmaps/internal/registry"
	"github.com/terra-clan/learning-roadmaps/internal/site"
)

// maxParallelWrites bounds concurrent page renders
const maxParallelWrites = 8

// Result counts the files written by an export
type Result struct {
	Pages     int
	JSONFiles int
}

// Exporter writes static builds of a registry
type Exporter struct {
	renderer *site.Renderer
}

// NewExporter creates an exporter using renderer for HTML pages
func NewExporter(renderer *site.Renderer) *Exporter {
	return &Exporter{renderer: renderer}
}

// Export renders every reachable page into outDir/<path>/index.html, the
// not-found page into outDir/404.html and the catalog as JSON under
// outDir/api.
func (e *Exporter) Export(ctx context.Context, reg *registry.Registry, outDir string) (Result, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	var pages, jsonFiles atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelWrites)

	writePage := func(rel string, page site.Page) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			body, err := e.renderer.RenderBytes(page, reg.Revision())
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", rel, err)
			}
			if err := writeFile(filepath.Join(outDir, rel), body); err != nil {
				return err
			}
			pages.Add(1)
			return nil
		})
	}

	writeJSON := func(rel string, v any) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			body, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal %s: %w", rel, err)
			}
			if err := writeFile(filepath.Join(outDir, rel), body); err != nil {
				return err
			}
			jsonFiles.Add(1)
			return nil
		})
	}

	writePage("index.html", site.IndexPage(reg))
	writePage("404.html", site.NotFoundPage(""))

	cards := site.BuildCards(reg)
	writeJSON(filepath.Join("api", "roadmaps.json"), cards)

	for _, card := range cards {
		slug := card.Slug
		if !safeSegment(slug) {
			slog.Warn("skipping roadmap with unsafe slug", "slug", slug)
			continue
		}

		detail, _ := reg.RoadmapDetail(slug)
		writeJSON(filepath.Join("api", "roadmaps", slug+".json"), detail)

		if !card.Navigable {
			continue
		}

		if page, ok := site.RoadmapPage(reg, slug); ok {
			writePage(filepath.Join("roadmaps", slug, "index.html"), page)
		}

		for _, phase := range detail.Phases {
			if !safeSegment(phase.ID) {
				slog.Warn("skipping phase with unsafe id", "slug", slug, "phase_id", phase.ID)
				continue
			}
			if page, ok := site.PhasePage(reg, slug, phase.ID); ok {
				writePage(filepath.Join("roadmaps", slug, phase.ID, "index.html"), page)
			}

			for _, topic := range phase.Topics {
				if !safeSegment(topic.ID) {
					slog.Warn("skipping topic with unsafe id", "slug", slug, "phase_id", phase.ID, "topic_id", topic.ID)
					continue
				}
				if page, ok := site.TopicPage(reg, slug, phase.ID, topic.ID); ok {
					writePage(filepath.Join("roadmaps", slug, phase.ID, topic.ID, "index.html"), page)
				}
			}
		}
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{Pages: int(pages.Load()), JSONFiles: int(jsonFiles.Load())}
	slog.Info("static export complete",
		"out_dir", outDir,
		"revision", reg.Revision(),
		"pages", result.Pages,
		"json_files", result.JSONFiles,
	)
	return result, nil
}

// safeSegment reports whether s can be used as a single path element
func safeSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

func writeFile(path string, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
