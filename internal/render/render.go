// Package render prints cheatsheet forests for the terminal.
package render

import (
	"strings"

	"github.com/disiqueira/gotree/v3"

	"github.com/starford/cognitio/internal/tree"
)

// Forest renders every root as its own tree. Roots are labelled by title;
// directories and files carry their shorthand id in parentheses.
func Forest(forest []tree.Directory) string {
	var b strings.Builder
	for _, root := range forest {
		t := gotree.New(root.Name)
		addChildren(t, root)
		b.WriteString(t.Print())
	}
	return b.String()
}

// Directory renders a single node, labelled with its shorthand id.
func Directory(d tree.Directory) string {
	t := gotree.New(label(d.Name, d.ShorthandID))
	addChildren(t, d)
	return t.Print()
}

func addChildren(t gotree.Tree, d tree.Directory) {
	for _, f := range d.Files {
		t.Add(label(f.Name, f.ShorthandID))
	}
	for _, c := range d.Children {
		addChildren(t.Add(label(c.Name, c.ShorthandID)), c)
	}
}

func label(name, id string) string {
	if id == "" {
		return name
	}
	return name + " (" + id + ")"
}
