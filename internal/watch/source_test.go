package watch

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"
)

func TestAddDirsRecursive_FollowsSymlinkedDirs(t *testing.T) {
	target := t.TempDir()
	for _, dir := range []string{"Bash", ".git", "Go/Concurrency"} {
		if err := os.MkdirAll(filepath.Join(target, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	shared := t.TempDir()
	if err := os.MkdirAll(filepath.Join(shared, "Docker"), 0o755); err != nil {
		t.Fatal(err)
	}

	links := t.TempDir()
	root := filepath.Join(links, "notes")
	for old, link := range map[string]string{
		target:                            root,
		shared:                            filepath.Join(target, "Shared"),
		filepath.Join(target, "Go"):       filepath.Join(target, "Go", "Concurrency", "loop"),
		filepath.Join(target, "missing"):  filepath.Join(target, "dangling"),
		filepath.Join(target, "Bash.txt"): filepath.Join(target, "file-link"),
	} {
		if err := os.Symlink(old, link); err != nil {
			t.Skipf("symlinks unsupported: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(target, "Bash.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := newFakeSource()
	if err := addDirsRecursive(src, root); err != nil {
		t.Fatalf("addDirsRecursive: %v", err)
	}

	got := slices.Clone(src.added)
	slices.Sort(got)
	want := []string{
		root,
		filepath.Join(root, "Bash"),
		filepath.Join(root, "Go"),
		filepath.Join(root, "Go", "Concurrency"),
		filepath.Join(root, "Shared"),
		filepath.Join(root, "Shared", "Docker"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("added = %v, want %v", got, want)
	}
}

func TestAddDirsRecursive_RootErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.md")
	if err := os.WriteFile(file, []byte("# A"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := addDirsRecursive(newFakeSource(), file); err == nil {
		t.Error("expected error for a file root")
	}
	if err := addDirsRecursive(newFakeSource(), filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for a missing root")
	}
}
