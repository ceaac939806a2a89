package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/cognitio/internal/apperr"
	"github.com/starford/cognitio/internal/checksum"
	"github.com/starford/cognitio/internal/models"
)

// RootsFunc returns the currently configured root directories.
type RootsFunc func() []string

// FS implements Provider backed by the local file system.
type FS struct {
	roots RootsFunc
}

// NewFS creates a new FS provider. Reads are confined to the directories
// returned by roots at the time of the call.
func NewFS(roots RootsFunc) *FS {
	return &FS{roots: roots}
}

// Root returns the configured root containing path, if any.
func (f *FS) Root(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	for _, root := range f.roots() {
		if abs == root || strings.HasPrefix(abs, root+string(os.PathSeparator)) {
			return root, true
		}
	}
	return "", false
}

// safePath resolves path and rejects any result outside the configured roots.
func (f *FS) safePath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("storage: relative paths not allowed: %s", path)
	}
	abs := filepath.Clean(path)
	if _, ok := f.Root(abs); !ok {
		return "", fmt.Errorf("storage: %s: %w", path, apperr.ErrOutsideRoots)
	}
	return abs, nil
}

// ReadDir lists the immediate entries of path. Symbolic links are followed;
// dangling links are left out.
func (f *FS) ReadDir(path string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("storage: read dir %s: %w", path, err)
	}
	out := make([]Entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		mode := d.Type()
		if mode&os.ModeSymlink != 0 {
			info, statErr := os.Stat(filepath.Join(path, d.Name()))
			if statErr != nil {
				continue
			}
			mode = info.Mode().Type()
		}
		out = append(out, Entry{
			Name:    d.Name(),
			IsDir:   mode.IsDir(),
			Regular: mode.IsRegular(),
		})
	}
	return out, nil
}

// Exists reports whether path exists, following symbolic links.
func (f *FS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Read returns the raw bytes of a cheatsheet file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// List walks dir and returns metadata for every markdown file below it,
// tagged with the configured root that owns dir. Hidden entries are skipped
// and unreadable subdirectories are left out.
func (f *FS) List(dir string) ([]models.CheatsheetMetadata, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	owner, _ := f.Root(base)
	var out []models.CheatsheetMetadata
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == base {
				return walkErr
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != base && models.IsHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || models.IsHidden(d.Name()) || !models.IsMarkdown(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil
		}
		out = append(out, models.CheatsheetMetadata{
			Path:      p,
			Root:      owner,
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

var _ Provider = (*FS)(nil)
