// Package fsartifact writes generated artifacts to a local directory.
package fsartifact

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Strob0t/scenariogen/internal/config"
	"github.com/Strob0t/scenariogen/internal/port/artifact"
)

// Writer implements artifact.Writer on the local filesystem.
type Writer struct {
	dir          string
	composeFile  string
	scenarioFile string
	envFile      string
}

// New returns a Writer using the directory and file names from cfg.
func New(cfg config.Output) *Writer {
	return &Writer{
		dir:          cfg.Dir,
		composeFile:  cfg.ComposeFile,
		scenarioFile: cfg.ScenarioFile,
		envFile:      cfg.EnvFile,
	}
}

type file struct {
	name string
	data []byte
	tmp  string
}

// Write creates the output directory if needed and writes each artifact.
// The env manifest is skipped when empty. Every artifact is staged in a
// temporary file first; existing files are only replaced once all of them
// were staged, so a failed write leaves the previous artifacts in place.
func (w *Writer) Write(ctx context.Context, set artifact.Set) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", w.dir, err)
	}

	files := []*file{
		{name: w.composeFile, data: set.Compose},
		{name: w.scenarioFile, data: set.Scenario},
	}
	if len(set.Env) > 0 {
		files = append(files, &file{name: w.envFile, data: set.Env})
	}

	defer func() {
		for _, f := range files {
			if f.tmp != "" {
				_ = os.Remove(f.tmp)
			}
		}
	}()

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.stage(f); err != nil {
			return err
		}
	}

	for _, f := range files {
		path := filepath.Join(w.dir, f.name)
		if err := os.Rename(f.tmp, path); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		f.tmp = ""
		slog.InfoContext(ctx, "artifact written", "path", path, "bytes", len(f.data))
	}
	return nil
}

// stage writes f to a temporary file next to its destination.
func (w *Writer) stage(f *file) error {
	path := filepath.Join(w.dir, f.name)
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return fmt.Errorf("write %s: is a directory", path)
	}

	tmp, err := os.CreateTemp(w.dir, "."+filepath.Base(f.name)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	f.tmp = tmp.Name()

	if _, err := tmp.Write(f.data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(f.tmp, 0o644); err != nil { //nolint:gosec // G302: generated manifests are not secret
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

var _ artifact.Writer = (*Writer)(nil)
