package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/terra-clan/learning-roadmaps/internal/models"
	"github.com/terra-clan/learning-roadmaps/internal/registry"
)

const (
	catalogFile  = "catalog.yaml"
	manifestFile = "roadmap.yaml"
	roadmapsDir  = "roadmaps"
)

// ErrCatalogMissing is returned when the content directory has no catalog.yaml
var ErrCatalogMissing = errors.New("catalog.yaml not found")

// Source produces a fresh registry snapshot
type Source interface {
	Load(ctx context.Context) (*registry.Registry, error)
}

// Loader reads roadmap content from a directory of YAML files:
//
//	catalog.yaml                   ordered catalog entries
//	roadmaps/<slug>/roadmap.yaml   ordered phases and their continuation files
//	roadmaps/<slug>/*.yaml         phase fragments
type Loader struct {
	dir string
}

// NewLoader creates a loader rooted at dir
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Dir returns the content root
func (l *Loader) Dir() string {
	return l.dir
}

// Load builds a new registry from the content directory. A roadmap directory
// that fails to load is logged and skipped; a bad catalog fails the load.
func (l *Loader) Load(ctx context.Context) (*registry.Registry, error) {
	slog.Info("loading content from directory", "dir", l.dir)

	catalog, err := l.loadCatalog()
	if err != nil {
		return nil, err
	}

	phases := make(map[string][]models.Phase)

	entries, err := os.ReadDir(filepath.Join(l.dir, roadmapsDir))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read roadmaps directory: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}

		slug := entry.Name()
		dir := filepath.Join(l.dir, roadmapsDir, slug)
		if _, err := os.Stat(filepath.Join(dir, manifestFile)); os.IsNotExist(err) {
			continue // not a roadmap directory
		}

		list, err := l.loadRoadmap(slug, dir)
		if err != nil {
			slog.Warn("failed to load roadmap", "slug", slug, "error", err)
			continue
		}
		phases[slug] = list

		slog.Info("roadmap loaded", "slug", slug,
			"phases", len(list), "topics", models.CountTopics(list))
	}

	reg := registry.New(catalog, phases)
	stats := reg.Stats()
	slog.Info("content loaded",
		"revision", reg.Revision(),
		"roadmaps", stats.Roadmaps,
		"phases", stats.Phases,
		"topics", stats.Topics,
	)
	return reg, nil
}

// loadCatalog parses catalog.yaml
func (l *Loader) loadCatalog() ([]models.CatalogEntry, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, catalogFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCatalogMissing
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var cf catalogFileYAML
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	for i, e := range cf.Roadmaps {
		if e.Slug == "" {
			return nil, fmt.Errorf("catalog entry %d: slug is required", i+1)
		}
		if e.Title == "" {
			return nil, fmt.Errorf("catalog entry %q: title is required", e.Slug)
		}
	}

	return cf.Roadmaps, nil
}

// loadRoadmap reads a roadmap manifest and assembles its phases in order
func (l *Loader) loadRoadmap(slug, dir string) ([]models.Phase, error) {
	manifest, err := readManifest(dir)
	if err != nil {
		return nil, err
	}
	if len(manifest.Phases) == 0 {
		return nil, fmt.Errorf("%s lists no phases", manifestFile)
	}

	phases := make([]models.Phase, 0, len(manifest.Phases))
	for _, ref := range manifest.Phases {
		base, err := loadFragment(filepath.Join(dir, ref.File))
		if err != nil {
			return nil, fmt.Errorf("phase %s: %w", ref.File, err)
		}
		if base.ID == "" || base.Title == "" {
			return nil, fmt.Errorf("phase %s: id and title are required", ref.File)
		}

		continuations := make([]registry.PhaseFragment, 0, len(ref.Continuations))
		for _, file := range ref.Continuations {
			cont, err := loadFragment(filepath.Join(dir, file))
			if err != nil {
				return nil, fmt.Errorf("continuation %s: %w", file, err)
			}
			if cont.ID != "" && cont.ID != base.ID {
				slog.Warn("continuation fragment names a different phase",
					"slug", slug, "file", file, "id", cont.ID, "base", base.ID)
			}
			continuations = append(continuations, cont)
		}

		phases = append(phases, registry.AssemblePhase(base, continuations...))
	}

	return phases, nil
}

func readManifest(dir string) (*manifestYAML, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", manifestFile, err)
	}

	var m manifestYAML
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", manifestFile, err)
	}
	return &m, nil
}

// loadFragment parses one phase fragment file. Topics without an id or title
// are skipped with a warning.
func loadFragment(path string) (registry.PhaseFragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return registry.PhaseFragment{}, fmt.Errorf("failed to read file: %w", err)
	}

	var ff fragmentYAML
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return registry.PhaseFragment{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	topics := make([]models.Topic, 0, len(ff.Topics))
	for i, t := range ff.Topics {
		if t.ID == "" || t.Title == "" {
			slog.Warn("skipping topic without id or title", "file", path, "index", i)
			continue
		}
		topics = append(topics, t)
	}

	return registry.PhaseFragment{
		ID:          ff.ID,
		Title:       ff.Title,
		Emoji:       ff.Emoji,
		Description: ff.Description,
		Topics:      topics,
	}, nil
}

// OrphanFragments lists YAML files under roadmaps/ that no manifest refers
// to, relative to the content root
func (l *Loader) OrphanFragments() ([]string, error) {
	files, err := doublestar.Glob(os.DirFS(l.dir), roadmapsDir+"/*/*.{yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to glob fragments: %w", err)
	}

	referenced := make(map[string]bool)
	manifests, err := doublestar.Glob(os.DirFS(l.dir), roadmapsDir+"/*/"+manifestFile)
	if err != nil {
		return nil, fmt.Errorf("failed to glob manifests: %w", err)
	}
	for _, m := range manifests {
		roadmapDir := filepath.Dir(filepath.FromSlash(m))
		manifest, err := readManifest(filepath.Join(l.dir, roadmapDir))
		if err != nil {
			continue
		}
		referenced[filepath.ToSlash(filepath.Join(roadmapDir, manifestFile))] = true
		for _, ref := range manifest.Phases {
			referenced[filepath.ToSlash(filepath.Join(roadmapDir, ref.File))] = true
			for _, c := range ref.Continuations {
				referenced[filepath.ToSlash(filepath.Join(roadmapDir, c))] = true
			}
		}
	}

	var orphans []string
	for _, f := range files {
		if !referenced[f] && !strings.HasSuffix(f, "/"+manifestFile) {
			orphans = append(orphans, f)
		}
	}
	sort.Strings(orphans)
	return orphans, nil
}

// --- YAML file structs ---

// catalogFileYAML represents catalog.yaml
type catalogFileYAML struct {
	Roadmaps []models.CatalogEntry `yaml:"roadmaps"`
}

// manifestYAML represents a roadmap.yaml file
type manifestYAML struct {
	Phases []phaseRef `yaml:"phases"`
}

type phaseRef struct {
	File          string   `yaml:"file"`
	Continuations []string `yaml:"continuations"`
}

// fragmentYAML represents a phase fragment file
type fragmentYAML struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Emoji       string         `yaml:"emoji"`
	Description string         `yaml:"description"`
	Topics      []models.Topic `yaml:"topics"`
}
