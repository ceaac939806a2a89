// Package testutil provides shared test helpers for setting up cheatsheet
// roots, configuration homes and databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/cognitio/internal/config"
	"github.com/starford/cognitio/internal/index"
	"github.com/starford/cognitio/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), config.DatabaseName))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Forest is a configuration home with a single titled cheatsheet root.
type Forest struct {
	Home       string
	Root       string
	ConfigPath string
	Cell       *config.Cell
	Store      *storage.FS
}

// TestForest creates a configuration home and a root titled "Sheets"
// populated with files (slash-separated path relative to the root -> content).
func TestForest(t *testing.T, files map[string]string) *Forest {
	t.Helper()
	f := &Forest{
		Home: t.TempDir(),
		Root: filepath.Join(t.TempDir(), "Sheets"),
	}
	f.ConfigPath = filepath.Join(f.Home, config.FileName)
	if err := os.MkdirAll(f.Root, 0o755); err != nil {
		t.Fatal(err)
	}
	for rel, content := range files {
		f.Write(t, rel, content)
	}
	f.WriteConfig(t, "cheatsheets:\n  - title: Sheets\n    path: '"+f.Root+"'\n")

	cell, err := config.OpenCell(f.ConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	f.Cell = cell
	f.Store = storage.NewFS(cell.Roots)
	return f
}

// Path returns the absolute path of rel inside the root.
func (f *Forest) Path(rel string) string {
	return filepath.Join(f.Root, filepath.FromSlash(rel))
}

// Write creates or replaces a file inside the root.
func (f *Forest) Write(t *testing.T, rel, content string) string {
	t.Helper()
	p := f.Path(rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// WriteConfig replaces the configuration file. It does not reload the cell.
func (f *Forest) WriteConfig(t *testing.T, content string) {
	t.Helper()
	if err := os.WriteFile(f.ConfigPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
