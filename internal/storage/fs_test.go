package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/starford/cognitio/internal/apperr"
)

func tempRoot(t *testing.T) (string, *FS) {
	t.Helper()
	dir := t.TempDir()
	return dir, NewFS(func() []string { return []string{dir} })
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadInsideRoot(t *testing.T) {
	root, s := tempRoot(t)
	p := filepath.Join(root, "git", "rebase.md")
	write(t, p, "# Rebase\n")

	got, err := s.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "# Rebase\n" {
		t.Errorf("content = %q", got)
	}
}

func TestReadOutsideRootsBlocked(t *testing.T) {
	root, s := tempRoot(t)
	outside := filepath.Join(t.TempDir(), "secret.md")
	write(t, outside, "x")

	cases := []string{
		outside,
		filepath.Join(root, "..", "escape.md"),
		"relative.md",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for %q", p)
		}
	}
	if _, err := s.Read(outside); !errors.Is(err, apperr.ErrOutsideRoots) {
		t.Errorf("want ErrOutsideRoots, got %v", err)
	}
}

func TestReadDirClassifiesEntries(t *testing.T) {
	root, s := tempRoot(t)
	write(t, filepath.Join(root, "a.md"), "a")
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "sub"), filepath.Join(root, "link")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling")); err != nil {
		t.Fatal(err)
	}

	entries, err := s.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	got := map[string]Entry{}
	for _, e := range entries {
		got[e.Name] = e
	}
	if !got["a.md"].Regular || got["a.md"].IsDir {
		t.Errorf("a.md = %+v", got["a.md"])
	}
	if !got["sub"].IsDir {
		t.Errorf("sub = %+v", got["sub"])
	}
	if !got["link"].IsDir {
		t.Errorf("symlink to dir should be a dir: %+v", got["link"])
	}
	if _, ok := got["dangling"]; ok {
		t.Error("dangling symlink should be left out")
	}
}

func TestReadDirMissing(t *testing.T) {
	_, s := tempRoot(t)
	if _, err := s.ReadDir("/nonexistent/cognitio-test"); err == nil {
		t.Error("expected error for missing dir")
	}
}

func TestExists(t *testing.T) {
	root, s := tempRoot(t)
	p := filepath.Join(root, "x.md")
	if s.Exists(p) {
		t.Error("file should not exist yet")
	}
	write(t, p, "x")
	if !s.Exists(p) {
		t.Error("file should exist")
	}
}

func TestListSkipsHiddenAndNonMarkdown(t *testing.T) {
	root, s := tempRoot(t)
	write(t, filepath.Join(root, "top.md"), "top")
	write(t, filepath.Join(root, "go", "chan.md"), "chan")
	write(t, filepath.Join(root, "go", "deep", "ctx.md"), "ctx")
	write(t, filepath.Join(root, "go", "notes.txt"), "not md")
	write(t, filepath.Join(root, ".git", "HEAD.md"), "hidden")

	items, err := s.List(root)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var paths []string
	for _, it := range items {
		if it.Root != root || it.Checksum == "" {
			t.Errorf("bad metadata: %+v", it)
		}
		rel, _ := filepath.Rel(root, it.Path)
		paths = append(paths, rel)
	}
	sort.Strings(paths)
	want := []string{filepath.Join("go", "chan.md"), filepath.Join("go", "deep", "ctx.md"), "top.md"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestListOutsideRoots(t *testing.T) {
	_, s := tempRoot(t)
	if _, err := s.List(t.TempDir()); !errors.Is(err, apperr.ErrOutsideRoots) {
		t.Errorf("want ErrOutsideRoots, got %v", err)
	}
}

func TestRoot(t *testing.T) {
	root, s := tempRoot(t)
	if got, ok := s.Root(filepath.Join(root, "a", "b.md")); !ok || got != root {
		t.Errorf("Root = %q %v", got, ok)
	}
	if _, ok := s.Root(root + "-sibling"); ok {
		t.Error("sibling with shared prefix must not match")
	}
}
