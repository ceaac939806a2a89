// Package tree builds the sorted, shorthand-annotated directory forest of the
// configured cheatsheet roots.
//
// A forest is a point-in-time value. It is never updated in place; callers
// rebuild it when a change event says it is stale.
package tree

import (
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/starford/cognitio/internal/config"
	"github.com/starford/cognitio/internal/models"
	"github.com/starford/cognitio/internal/shorthand"
	"github.com/starford/cognitio/internal/storage"
)

// File is a markdown file entry.
type File struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	ShorthandID string `json:"shorthand_id"`
}

// Directory is a directory node. Top-level nodes are configured roots.
type Directory struct {
	Name        string      `json:"name"`
	Path        string      `json:"path"`
	Files       []File      `json:"files"`
	Children    []Directory `json:"sub_directories"`
	ShorthandID string      `json:"shorthand_id"`
}

// Builder turns a Configuration into a forest.
type Builder struct {
	lister storage.Lister
	cell   *config.Cell
	logger *slog.Logger
}

// NewBuilder creates a Builder listing directories through lister. cell
// supplies the configuration for Current.
func NewBuilder(lister storage.Lister, cell *config.Cell, logger *slog.Logger) *Builder {
	return &Builder{lister: lister, cell: cell, logger: logger}
}

// Current builds the forest for the configuration currently held by the cell.
func (b *Builder) Current() []Directory {
	return b.Build(b.cell.Load())
}

// Build returns one top-level node per configured root, in configuration order.
// A root lists its immediate subdirectories, each with its own markdown files;
// the root itself never carries files. Listing failures yield empty lists.
func (b *Builder) Build(cfg *config.Configuration) []Directory {
	if cfg == nil {
		return []Directory{}
	}
	forest := make([]Directory, 0, len(cfg.Cheatsheets))
	for _, root := range cfg.Cheatsheets {
		dir := root.Dir()
		subdirs, _ := b.list(dir)
		node := Directory{
			Name:     root.Title(),
			Path:     dir,
			Files:    []File{},
			Children: make([]Directory, 0, len(subdirs)),
		}
		for _, sub := range subdirs {
			node.Children = append(node.Children, b.leaf(sub))
		}
		forest = append(forest, node)
	}
	annotate(forest)
	return forest
}

// Expand returns the node at path with its files and its immediate
// subdirectories, each carrying its own files. It serves deeper, on-demand
// expansion below the first level of a root.
func (b *Builder) Expand(path string) Directory {
	path = filepath.Clean(path)
	subdirs, files := b.list(path)
	node := Directory{
		Name:     filepath.Base(path),
		Path:     path,
		Files:    files,
		Children: make([]Directory, 0, len(subdirs)),
	}
	for _, sub := range subdirs {
		node.Children = append(node.Children, b.leaf(sub))
	}
	nodes := []Directory{node}
	annotate(nodes)
	return nodes[0]
}

// leaf returns a directory node populated with its files only.
func (b *Builder) leaf(path string) Directory {
	_, files := b.list(path)
	return Directory{
		Name:     filepath.Base(path),
		Path:     path,
		Files:    files,
		Children: []Directory{},
	}
}

// list returns the visible subdirectory paths and markdown files of dir, each
// sorted by name. Errors are logged and produce empty results.
func (b *Builder) list(dir string) ([]string, []File) {
	entries, err := b.lister.ReadDir(dir)
	if err != nil {
		b.logger.Debug("tree: list failed", slog.String("path", dir), slog.String("error", err.Error()))
		return []string{}, []File{}
	}

	subdirs := make([]string, 0, len(entries))
	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if models.IsHidden(e.Name) {
			continue
		}
		path := filepath.Join(dir, e.Name)
		switch {
		case e.IsDir:
			subdirs = append(subdirs, path)
		case e.Regular && models.IsMarkdown(e.Name):
			files = append(files, File{Name: e.Name, Path: path})
		}
	}

	slices.SortFunc(subdirs, func(a, b string) int {
		return strings.Compare(filepath.Base(a), filepath.Base(b))
	})
	slices.SortFunc(files, func(a, b File) int {
		return strings.Compare(a.Name, b.Name)
	})
	return subdirs, files
}

// annotate sets shorthand ids on every node of the forest.
func annotate(dirs []Directory) {
	for i := range dirs {
		dirs[i].ShorthandID = shorthand.Directory(dirs[i].Path)
		for j := range dirs[i].Files {
			dirs[i].Files[j].ShorthandID = shorthand.File(dirs[i].Files[j].Path)
		}
		annotate(dirs[i].Children)
	}
}
