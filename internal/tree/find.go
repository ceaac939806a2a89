package tree

import (
	"slices"
	"strings"
)

// Walk calls fn for every directory of the forest, depth first in display order.
// Returning false stops the walk.
func Walk(forest []Directory, fn func(Directory) bool) bool {
	for _, dir := range forest {
		if !fn(dir) {
			return false
		}
		if !Walk(dir.Children, fn) {
			return false
		}
	}
	return true
}

// FindDirectory returns the directory node with the given path.
func FindDirectory(forest []Directory, path string) (Directory, bool) {
	var found Directory
	var ok bool
	Walk(forest, func(d Directory) bool {
		if d.Path == path {
			found, ok = d, true
			return false
		}
		return true
	})
	return found, ok
}

// FindFile returns the file entry with the given path.
func FindFile(forest []Directory, path string) (File, bool) {
	var found File
	var ok bool
	Walk(forest, func(d Directory) bool {
		for _, f := range d.Files {
			if f.Path == path {
				found, ok = f, true
				return false
			}
		}
		return true
	})
	return found, ok
}

// FirstWithCheatsheets returns the first directory, in display order, that
// directly contains at least one file.
func FirstWithCheatsheets(forest []Directory) (Directory, bool) {
	var found Directory
	var ok bool
	Walk(forest, func(d Directory) bool {
		if len(d.Files) > 0 {
			found, ok = d, true
			return false
		}
		return true
	})
	return found, ok
}

// Target is a node addressed by a shorthand id.
type Target struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
}

// Index maps shorthand ids to the nodes carrying them. Ids may collide; a
// lookup returns every match.
type Index struct {
	byID map[string][]Target
}

// NewIndex indexes every directory and file of the forest.
func NewIndex(forest []Directory) *Index {
	idx := &Index{byID: make(map[string][]Target)}
	Walk(forest, func(d Directory) bool {
		idx.add(d.ShorthandID, Target{Path: d.Path, Name: d.Name, IsDir: true})
		for _, f := range d.Files {
			idx.add(f.ShorthandID, Target{Path: f.Path, Name: f.Name})
		}
		return true
	})
	for id := range idx.byID {
		slices.SortFunc(idx.byID[id], func(a, b Target) int {
			return strings.Compare(a.Path, b.Path)
		})
	}
	return idx
}

func (idx *Index) add(id string, t Target) {
	if id == "" {
		return
	}
	for _, existing := range idx.byID[id] {
		if existing.Path == t.Path {
			return
		}
	}
	idx.byID[id] = append(idx.byID[id], t)
}

// Lookup returns every node whose shorthand id equals id, sorted by path.
func (idx *Index) Lookup(id string) []Target {
	return slices.Clone(idx.byID[strings.ToLower(id)])
}

// Collisions returns the ids shared by more than one node, sorted.
func (idx *Index) Collisions() []string {
	var ids []string
	for id, targets := range idx.byID {
		if len(targets) > 1 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
