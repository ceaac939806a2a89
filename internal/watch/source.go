package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/cognitio/internal/models"
)

// Source is a raw notification stream for a set of directories.
type Source interface {
	Add(path string) error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
	Close() error
}

// SourceFactory creates a new Source. Every watch owns its own Source.
type SourceFactory func() (Source, error)

type fsnotifySource struct {
	w *fsnotify.Watcher
}

// NewFSNotifySource returns a Source backed by an fsnotify watcher.
func NewFSNotifySource() (Source, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &fsnotifySource{w: w}, nil
}

func (s *fsnotifySource) Add(path string) error         { return s.w.Add(path) }
func (s *fsnotifySource) Events() <-chan fsnotify.Event { return s.w.Events }
func (s *fsnotifySource) Errors() <-chan error          { return s.w.Errors }
func (s *fsnotifySource) Close() error                  { return s.w.Close() }

// addDirsRecursive adds root and all its visible subdirectories to src.
// Symlinked directories are followed and watched under their link path; each
// target directory is added once, so link cycles end.
// A root that is missing, not a directory or cannot be watched is an error;
// subdirectories that fail are skipped.
func addDirsRecursive(src Source, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("watch: %s is not a directory", root)
	}
	if err := src.Add(root); err != nil {
		return err
	}
	visited := map[string]struct{}{realPath(root): {}}
	addSubdirs(src, root, visited)
	return nil
}

func addSubdirs(src Source, dir string, visited map[string]struct{}) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if models.IsHidden(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if !e.IsDir() {
			if e.Type()&fs.ModeSymlink == 0 {
				continue
			}
			if info, err := os.Stat(path); err != nil || !info.IsDir() {
				continue
			}
		}
		target := realPath(path)
		if _, seen := visited[target]; seen {
			continue
		}
		visited[target] = struct{}{}
		_ = src.Add(path)
		addSubdirs(src, path, visited)
	}
}

// realPath resolves symlinks in path, falling back to path itself.
func realPath(path string) string {
	if target, err := filepath.EvalSymlinks(path); err == nil {
		return target
	}
	return path
}
