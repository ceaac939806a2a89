// Package cheatsheet coordinates the tree builder, storage and the search
// index behind the operations exposed by the CLI, HTTP API and MCP server.
package cheatsheet

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/starford/cognitio/internal/apperr"
	"github.com/starford/cognitio/internal/checksum"
	"github.com/starford/cognitio/internal/config"
	"github.com/starford/cognitio/internal/index"
	"github.com/starford/cognitio/internal/models"
	"github.com/starford/cognitio/internal/parser"
	"github.com/starford/cognitio/internal/shorthand"
	"github.com/starford/cognitio/internal/storage"
	"github.com/starford/cognitio/internal/tree"
	"github.com/starford/cognitio/internal/watch"
)

// ErrNoIndex is returned by Search when the service runs without an index.
var ErrNoIndex = errors.New("search index is not available")

// Service coordinates storage, tree and index operations.
type Service struct {
	cell    *config.Cell
	store   storage.Provider
	builder *tree.Builder
	db      index.Indexer
	logger  *slog.Logger
}

// NewService creates a cheatsheet service. db may be nil, in which case
// Search fails with ErrNoIndex and index maintenance is skipped.
func NewService(cell *config.Cell, store storage.Provider, db index.Indexer, logger *slog.Logger) *Service {
	return &Service{
		cell:    cell,
		store:   store,
		builder: tree.NewBuilder(store, cell, logger),
		db:      db,
		logger:  logger,
	}
}

// Config returns the current configuration.
func (s *Service) Config() *config.Configuration {
	return s.cell.Load()
}

// Root returns the configured root containing path, if any.
func (s *Service) Root(path string) (string, bool) {
	return s.store.Root(path)
}

// Tree builds the forest for the current configuration.
func (s *Service) Tree() []tree.Directory {
	return s.builder.Current()
}

// Expand returns the node for a directory inside a configured root with its
// files and subdirectories.
func (s *Service) Expand(path string) (tree.Directory, error) {
	if _, ok := s.store.Root(path); !ok {
		return tree.Directory{}, fmt.Errorf("cheatsheet: expand %s: %w", path, apperr.ErrOutsideRoots)
	}
	if !s.store.Exists(path) {
		return tree.Directory{}, fmt.Errorf("cheatsheet: expand %s: %w", path, apperr.ErrNotFound)
	}
	return s.builder.Expand(path), nil
}

// Load reads every file and keys its content by file name without the
// markdown extension. Unreadable files yield empty content.
func (s *Service) Load(files []string) map[string]string {
	out := make(map[string]string, len(files))
	for _, p := range files {
		key := strings.TrimSuffix(filepath.Base(p), models.MarkdownExt)
		data, err := s.store.Read(p)
		if err != nil {
			s.logger.Debug("cheatsheet: load failed", slog.String("path", p), slog.String("error", err.Error()))
			out[key] = ""
			continue
		}
		out[key] = string(data)
	}
	return out
}

// LoadSection loads every visible markdown file directly inside dir.
func (s *Service) LoadSection(dir string) (map[string]string, error) {
	if _, ok := s.store.Root(dir); !ok {
		return nil, fmt.Errorf("cheatsheet: load section %s: %w", dir, apperr.ErrOutsideRoots)
	}
	entries, err := s.store.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("cheatsheet: load section %s: %w", dir, apperr.ErrNotFound)
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Regular && !models.IsHidden(e.Name) && models.IsMarkdown(e.Name) {
			files = append(files, filepath.Join(dir, e.Name))
		}
	}
	return s.Load(files), nil
}

// Read returns a parsed cheatsheet. Hidden paths and non-markdown files are
// reported as not found.
func (s *Service) Read(path string) (*models.Cheatsheet, error) {
	if !s.visibleMarkdown(path) {
		return nil, fmt.Errorf("cheatsheet: read %s: %w", path, apperr.ErrNotFound)
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("cheatsheet: read %s: %w", path, apperr.ErrNotFound)
		}
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("cheatsheet: parse %s: %w", path, err)
	}
	name := filepath.Base(path)
	return &models.Cheatsheet{
		Path:        path,
		Name:        name,
		ShorthandID: shorthand.File(path),
		Title:       res.TitleOr(strings.TrimSuffix(name, models.MarkdownExt)),
		Content:     string(data),
		Sections:    nonNilSlice(res.Sections),
		Tags:        nonNilSlice(res.Tags),
		Frontmatter: res.Frontmatter,
		Checksum:    checksum.Sum(data),
		UpdatedAt:   time.Now(),
	}, nil
}

// Resolve turns a reference into targets. A reference is either an absolute
// path inside a configured root or a shorthand id. Shorthand ids can be
// shared; every match is returned, ordered by path.
func (s *Service) Resolve(ref string) ([]tree.Target, error) {
	if filepath.IsAbs(ref) {
		path := filepath.Clean(ref)
		if _, ok := s.store.Root(path); !ok {
			return nil, fmt.Errorf("cheatsheet: resolve %s: %w", ref, apperr.ErrOutsideRoots)
		}
		if !s.store.Exists(path) {
			return nil, fmt.Errorf("cheatsheet: resolve %s: %w", ref, apperr.ErrNotFound)
		}
		_, dirErr := s.store.ReadDir(path)
		return []tree.Target{{Path: path, Name: filepath.Base(path), IsDir: dirErr == nil}}, nil
	}

	id := strings.ToLower(ref)
	targets := tree.NewIndex(s.Tree()).Lookup(id)

	// The index also knows files nested deeper than the tree shows.
	if s.db != nil {
		rows, err := s.db.Lookup(id)
		if err != nil {
			s.logger.Warn("cheatsheet: index lookup failed", slog.String("id", id), slog.String("error", err.Error()))
		}
		for _, r := range rows {
			if !slices.ContainsFunc(targets, func(t tree.Target) bool { return t.Path == r.Path }) {
				targets = append(targets, tree.Target{Path: r.Path, Name: r.Name})
			}
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("cheatsheet: resolve %q: %w", ref, apperr.ErrNotFound)
	}
	slices.SortFunc(targets, func(a, b tree.Target) int { return strings.Compare(a.Path, b.Path) })
	return targets, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(query string, limit int) ([]index.SearchResult, error) {
	if s.db == nil {
		return nil, ErrNoIndex
	}
	return s.db.Search(query, limit)
}

// Resync brings the index in line with every configured root.
func (s *Service) Resync() error {
	if s.db == nil {
		return nil
	}
	return index.Sync(s.db, s.store, s.cell.Roots(), s.logger)
}

// Apply keeps the index synchronized with a watch event.
func (s *Service) Apply(ev watch.Event) error {
	if s.db == nil {
		return nil
	}
	switch e := ev.(type) {
	case watch.ConfigReloaded:
		return s.Resync()
	case watch.ChangeEvent:
		return s.applyChange(e)
	}
	return nil
}

func (s *Service) applyChange(e watch.ChangeEvent) error {
	if models.IsHidden(filepath.Base(e.Path)) {
		return nil
	}
	root, ok := s.store.Root(e.Path)
	if !ok {
		return nil
	}

	if e.Kind == watch.Removed {
		if models.IsMarkdown(e.Path) {
			return s.db.Delete(e.Path)
		}
		// Could have been a directory; drop everything below it.
		n, err := s.db.DeletePrefix(e.Path)
		if err == nil && n > 0 {
			s.logger.Debug("cheatsheet: removed directory", slog.String("path", e.Path), slog.Int64("rows", n))
		}
		return err
	}

	if models.IsMarkdown(e.Path) {
		data, err := s.store.Read(e.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return s.db.Delete(e.Path)
			}
			return err
		}
		if known, _ := s.db.GetChecksum(e.Path); !checksum.Changed(known, data) {
			return nil
		}
		return index.IndexFile(s.db, root, e.Path, data)
	}

	if e.Kind == watch.Created {
		// A new directory may arrive with files already inside it.
		metas, err := s.store.List(e.Path)
		if err != nil {
			return nil
		}
		for _, m := range metas {
			data, err := s.store.Read(m.Path)
			if err != nil {
				continue
			}
			if err := index.IndexFile(s.db, m.Root, m.Path, data); err != nil {
				s.logger.Warn("cheatsheet: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			}
		}
	}
	return nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// visibleMarkdown reports whether path names a markdown file with no hidden
// component below its root. Paths outside every root pass so that storage
// reports them as such.
func (s *Service) visibleMarkdown(path string) bool {
	root, ok := s.store.Root(path)
	if !ok {
		return true
	}
	if !models.IsMarkdown(path) {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if models.IsHidden(part) && part != "." {
			return false
		}
	}
	return true
}
