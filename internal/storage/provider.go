// Package storage defines the file-system collaborators used by the tree builder,
// the watcher and the cheatsheet service.
package storage

import "github.com/starford/cognitio/internal/models"

// Entry is one immediate child of a listed directory.
type Entry struct {
	Name    string
	IsDir   bool
	Regular bool
}

// Lister lists the immediate entries of a directory.
type Lister interface {
	ReadDir(path string) ([]Entry, error)
}

// Provider is the interface for cheatsheet file operations. Paths are absolute.
type Provider interface {
	Lister
	// Root returns the configured root containing path, if any.
	Root(path string) (string, bool)
	// Exists reports whether path currently exists.
	Exists(path string) bool
	// Read returns the raw bytes of a file inside a configured root.
	Read(path string) ([]byte, error)
	// List walks dir and returns metadata for every markdown file below it.
	List(dir string) ([]models.CheatsheetMetadata, error)
}
