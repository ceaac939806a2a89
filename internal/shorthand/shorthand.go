// Package shorthand derives short quick-jump identifiers from filesystem paths.
//
// An identifier is built from the first two lower-cased characters of each of
// the last depth path components, in path order. Identifiers are not unique:
// siblings that share the leading letters of their trailing components collide.
package shorthand

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Depths used for tree nodes. A file id also encodes its parent directory.
const (
	DirectoryDepth = 2
	FileDepth      = 3
)

const fragmentLen = 2

// ID returns the shorthand identifier for path using its last depth usable
// components. Separators, volume names, "." and ".." and components that are
// not valid UTF-8 are skipped and do not count toward depth.
func ID(path string, depth int) string {
	if depth <= 0 {
		return ""
	}

	components := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")

	fragments := make([]string, 0, depth)
	for i := len(components) - 1; i >= 0 && len(fragments) < depth; i-- {
		component := components[i]
		if !usable(component) {
			continue
		}
		fragments = append(fragments, fragment(component))
	}

	var b strings.Builder
	for i := len(fragments) - 1; i >= 0; i-- {
		b.WriteString(fragments[i])
	}
	return b.String()
}

// Directory returns the identifier of a directory path.
func Directory(path string) string {
	return ID(path, DirectoryDepth)
}

// File returns the identifier of a file path.
func File(path string) string {
	return ID(path, FileDepth)
}

func usable(component string) bool {
	switch component {
	case "", ".", "..":
		return false
	}
	if filepath.VolumeName(component) == component {
		return false
	}
	return utf8.ValidString(component)
}

func fragment(component string) string {
	lower := []rune(strings.ToLower(component))
	if len(lower) > fragmentLen {
		lower = lower[:fragmentLen]
	}
	return string(lower)
}
