package fsartifact_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Strob0t/scenariogen/internal/adapter/fsartifact"
	"github.com/Strob0t/scenariogen/internal/config"
	"github.com/Strob0t/scenariogen/internal/port/artifact"
)

func testOutput(dir string) config.Output {
	out := config.Defaults().Output
	out.Dir = dir
	return out
}

func TestWriteAllArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gen")
	w := fsartifact.New(testOutput(dir))

	set := artifact.Set{
		Compose:  []byte("services: {}\n"),
		Scenario: []byte("[green_agent]\n"),
		Env:      []byte("API_TOKEN=\n"),
	}
	if err := w.Write(context.Background(), set); err != nil {
		t.Fatalf("Write: %v", err)
	}

	for name, want := range map[string]string{
		"docker-compose.yml": "services: {}\n",
		"a2a-scenario.toml":  "[green_agent]\n",
		".env.example":       "API_TOKEN=\n",
	} {
		got, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s: expected %q, got %q", name, want, got)
		}
	}
}

func TestWriteSkipsEmptyEnv(t *testing.T) {
	dir := t.TempDir()
	w := fsartifact.New(testOutput(dir))

	if err := w.Write(context.Background(), artifact.Set{Compose: []byte("a"), Scenario: []byte("b")}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".env.example")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no env manifest, stat err = %v", err)
	}
}

func TestWriteSurfacesIOError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := fsartifact.New(testOutput(filepath.Join(blocker, "sub")))

	if err := w.Write(context.Background(), artifact.Set{Compose: []byte("a"), Scenario: []byte("b")}); err == nil {
		t.Fatal("expected error when output dir cannot be created")
	}
}

func TestWriteLeavesNoPartialArtifacts(t *testing.T) {
	dir := t.TempDir()
	out := testOutput(dir)
	if err := os.Mkdir(filepath.Join(dir, out.ScenarioFile), 0o755); err != nil {
		t.Fatal(err)
	}
	w := fsartifact.New(out)

	set := artifact.Set{Compose: []byte("services: {}\n"), Scenario: []byte("[green_agent]\n")}
	if err := w.Write(context.Background(), set); err == nil {
		t.Fatal("expected error when an artifact path is a directory")
	}

	if _, err := os.Stat(filepath.Join(dir, out.ComposeFile)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("compose file must not be written, stat err = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the blocking directory, got %d entries", len(entries))
	}
}

func TestWriteReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	out := testOutput(dir)
	if err := os.WriteFile(filepath.Join(dir, out.ComposeFile), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := fsartifact.New(out).Write(context.Background(), artifact.Set{Compose: []byte("new"), Scenario: []byte("b")}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, out.ComposeFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("expected replaced content, got %q", got)
	}
	info, err := os.Stat(filepath.Join(dir, out.ComposeFile))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("expected 0644, got %v", info.Mode().Perm())
	}
}
