package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func writeContent(t *testing.T, secondTopicID string) string {
	t.Helper()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "catalog.yaml"), `
roadmaps:
  - slug: go
    title: Go
  - slug: rust
    title: Rust
    coming_soon: true
`)
	writeFile(t, filepath.Join(dir, "roadmaps", "go", "roadmap.yaml"), `
phases:
  - file: basics.yaml
    continuations: [basics-b.yaml]
`)
	writeFile(t, filepath.Join(dir, "roadmaps", "go", "basics.yaml"), `
id: basics
title: Basics
topics:
  - id: slices
    title: Slices
`)
	writeFile(t, filepath.Join(dir, "roadmaps", "go", "basics-b.yaml"), `
topics:
  - id: `+secondTopicID+`
    title: More
`)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	t.Run("clean content", func(t *testing.T) {
		out, err := execute(t, "validate", "--content", writeContent(t, "maps"))
		require.NoError(t, err)
		assert.Contains(t, out, "2 roadmaps, 1 phases, 2 topics")
		assert.Contains(t, out, "ok")
	})

	t.Run("duplicate topic across continuation", func(t *testing.T) {
		out, err := execute(t, "validate", "--content", writeContent(t, "slices"))
		require.Error(t, err)
		assert.Contains(t, out, "[error] go/basics/slices")
	})

	t.Run("orphan fragment", func(t *testing.T) {
		dir := writeContent(t, "maps")
		writeFile(t, filepath.Join(dir, "roadmaps", "go", "draft.yaml"), "id: draft\n")

		out, err := execute(t, "validate", "--content", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "roadmaps/go/draft.yaml is not referenced")
	})

	t.Run("missing catalog", func(t *testing.T) {
		_, err := execute(t, "validate", "--content", t.TempDir())
		assert.Error(t, err)
	})
}

func TestValidateUsesContentDirEnv(t *testing.T) {
	t.Setenv("CONTENT_DIR", writeContent(t, "slices"))

	out, err := execute(t, "validate")
	require.Error(t, err)
	assert.Contains(t, out, "[error] go/basics/slices")

	t.Setenv("CONTENT_DIR", t.TempDir())
	out, err = execute(t, "validate", "--content", writeContent(t, "maps"))
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestBuildCommand(t *testing.T) {
	out := t.TempDir()

	_, err := execute(t, "build", "--content", writeContent(t, "maps"), "--out", out)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.FileExists(t, filepath.Join(out, "404.html"))
	assert.FileExists(t, filepath.Join(out, "roadmaps", "go", "basics", "maps", "index.html"))
	assert.FileExists(t, filepath.Join(out, "api", "roadmaps.json"))
	assert.NoDirExists(t, filepath.Join(out, "roadmaps", "rust"))
}

func TestImportRequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")

	_, err := execute(t, "import", "--content", writeContent(t, "maps"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DSN")
}

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"version"})
	assert.NoError(t, cmd.Execute())
}
