// Package models defines the domain types shared across Cognitio packages.
package models

import (
	"strings"
	"time"
)

// MarkdownExt is the only file extension indexed as a cheatsheet.
const MarkdownExt = ".md"

// IsMarkdown reports whether name carries the markdown extension.
func IsMarkdown(name string) bool {
	return strings.HasSuffix(name, MarkdownExt)
}

// IsHidden reports whether a file or directory name is dot-prefixed.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Cheatsheet is a parsed markdown file inside a configured root.
type Cheatsheet struct {
	Path        string         `json:"path"`
	Name        string         `json:"name"`
	ShorthandID string         `json:"shorthand_id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Sections    []string       `json:"sections"`
	Tags        []string       `json:"tags"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Checksum    string         `json:"checksum"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CheatsheetMetadata is a lightweight representation returned by list operations.
type CheatsheetMetadata struct {
	Path      string    `json:"path"`
	Root      string    `json:"root"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
