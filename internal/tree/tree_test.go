package tree

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/starford/cognitio/internal/config"
	"github.com/starford/cognitio/internal/storage"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(root, filepath.FromSlash(r))
		if strings.HasSuffix(r, "/") {
			if err := os.MkdirAll(p, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("# "+filepath.Base(p)), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func builderFor(cfg *config.Configuration) *Builder {
	cell := config.NewCell("/tmp/cognitio.yaml", cfg)
	return NewBuilder(storage.NewFS(cell.Roots), cell, discard)
}

func TestBuild_RootShapeAndFilters(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"top.md",
		"Go/select.md", "Go/Channels.md", "Go/notes.txt", "Go/.draft.md",
		"Go/deep/ctx.md",
		"bash/vars.md",
		".git/config.md",
		"empty/",
	)
	cfg := &config.Configuration{Cheatsheets: config.RootList{config.TitledRoot{Name: "Mine", Path: root}}}

	forest := builderFor(cfg).Build(cfg)
	if len(forest) != 1 {
		t.Fatalf("len(forest) = %d", len(forest))
	}
	top := forest[0]
	if top.Name != "Mine" || top.Path != root {
		t.Errorf("root node = %q %q", top.Name, top.Path)
	}
	if len(top.Files) != 0 {
		t.Errorf("root files must be empty, got %v", top.Files)
	}

	var names []string
	for _, c := range top.Children {
		names = append(names, c.Name)
	}
	if want := []string{"Go", "bash", "empty"}; !reflect.DeepEqual(names, want) {
		t.Errorf("children = %v, want %v", names, want)
	}

	goDir := top.Children[0]
	var files []string
	for _, f := range goDir.Files {
		files = append(files, f.Name)
		if f.Path != filepath.Join(root, "Go", f.Name) {
			t.Errorf("file path = %q", f.Path)
		}
	}
	if want := []string{"Channels.md", "select.md"}; !reflect.DeepEqual(files, want) {
		t.Errorf("Go files = %v, want %v", files, want)
	}
	if len(goDir.Children) != 0 {
		t.Errorf("building must stop one level below the root, got %v", goDir.Children)
	}
}

func TestBuild_ShorthandIDs(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "Docs")
	touch(t, root, "Bash/Variables.md")
	cfg := &config.Configuration{Cheatsheets: config.RootList{config.BareRoot{Path: root}}}

	forest := builderFor(cfg).Build(cfg)
	top := forest[0]
	if top.Name != "Docs" {
		t.Errorf("bare root title = %q", top.Name)
	}
	bash := top.Children[0]
	if bash.ShorthandID != "doba" {
		t.Errorf("dir id = %q, want doba", bash.ShorthandID)
	}
	if got := bash.Files[0].ShorthandID; got != "dobava" {
		t.Errorf("file id = %q, want dobava", got)
	}
	if top.ShorthandID == "" {
		t.Error("root must be annotated")
	}
}

func TestBuild_MissingRootYieldsEmptyNode(t *testing.T) {
	good := t.TempDir()
	touch(t, good, "k8s/pods.md")
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	cfg := &config.Configuration{Cheatsheets: config.RootList{
		config.BareRoot{Path: missing},
		config.BareRoot{Path: good},
	}}

	forest := builderFor(cfg).Build(cfg)
	if len(forest) != 2 {
		t.Fatalf("len(forest) = %d", len(forest))
	}
	if forest[0].Children == nil || len(forest[0].Children) != 0 {
		t.Errorf("missing root children = %#v, want empty", forest[0].Children)
	}
	if len(forest[1].Children) != 1 {
		t.Errorf("remaining roots must still be built")
	}
}

func TestBuild_PreservesRootOrder(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	cfg := &config.Configuration{Cheatsheets: config.RootList{
		config.TitledRoot{Name: "zeta", Path: a},
		config.TitledRoot{Name: "alpha", Path: b},
	}}
	forest := builderFor(cfg).Build(cfg)
	if forest[0].Name != "zeta" || forest[1].Name != "alpha" {
		t.Errorf("root order not preserved: %q, %q", forest[0].Name, forest[1].Name)
	}
}

func TestBuild_SortedAndIdempotent(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "b/Z.md", "b/a.md", "b/M.md", "A/x.md", "a/y.md", "C/")
	cfg := &config.Configuration{Cheatsheets: config.RootList{config.BareRoot{Path: root}}}
	b := builderFor(cfg)

	first := b.Build(cfg)
	Walk(first, func(d Directory) bool {
		if !slices.IsSortedFunc(d.Children, func(x, y Directory) int { return strings.Compare(x.Name, y.Name) }) {
			t.Errorf("children of %s not sorted", d.Path)
		}
		if !slices.IsSortedFunc(d.Files, func(x, y File) int { return strings.Compare(x.Name, y.Name) }) {
			t.Errorf("files of %s not sorted", d.Path)
		}
		return true
	})

	second := b.Build(cfg)
	if !reflect.DeepEqual(first, second) {
		t.Error("two builds over an unchanged tree differ")
	}
}

type failingLister struct{ fail string }

func (l failingLister) ReadDir(path string) ([]storage.Entry, error) {
	if path == l.fail {
		return nil, errors.New("permission denied")
	}
	return storage.NewFS(func() []string { return nil }).ReadDir(path)
}

func TestBuild_UnreadableSubdirectoryAbsorbed(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "locked/secret.md", "open/ok.md")
	cfg := &config.Configuration{Cheatsheets: config.RootList{config.BareRoot{Path: root}}}
	cell := config.NewCell("/tmp/cognitio.yaml", cfg)
	b := NewBuilder(failingLister{fail: filepath.Join(root, "locked")}, cell, discard)

	forest := b.Current()
	locked, ok := FindDirectory(forest, filepath.Join(root, "locked"))
	if !ok {
		t.Fatal("locked directory should still be listed by its parent")
	}
	if len(locked.Files) != 0 {
		t.Errorf("unreadable directory should have no files, got %v", locked.Files)
	}
	if _, ok := FindFile(forest, filepath.Join(root, "open", "ok.md")); !ok {
		t.Error("readable sibling must be unaffected")
	}
}

func TestBuild_NilConfiguration(t *testing.T) {
	b := builderFor(nil)
	if got := b.Build(nil); got == nil || len(got) != 0 {
		t.Errorf("Build(nil) = %#v", got)
	}
}

func TestExpand(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Go/intro.md", "Go/Concurrency/chan.md", "Go/Concurrency/Sync/mutex.md", "Go/.hidden/")
	cfg := &config.Configuration{Cheatsheets: config.RootList{config.BareRoot{Path: root}}}

	node := builderFor(cfg).Expand(filepath.Join(root, "Go") + "/")
	if node.Name != "Go" || len(node.Files) != 1 || node.Files[0].Name != "intro.md" {
		t.Errorf("expanded node = %+v", node)
	}
	if len(node.Children) != 1 || node.Children[0].Name != "Concurrency" {
		t.Fatalf("children = %+v", node.Children)
	}
	conc := node.Children[0]
	if len(conc.Files) != 1 || conc.Files[0].ShorthandID != "gococh" {
		t.Errorf("nested files = %+v", conc.Files)
	}
	if len(conc.Children) != 0 {
		t.Errorf("expansion must stop one level down")
	}
}
