package tree

import (
	"reflect"
	"testing"

	"github.com/starford/cognitio/internal/shorthand"
)

func sampleForest() []Directory {
	forest := []Directory{
		{
			Name: "Sheets", Path: "/s",
			Children: []Directory{
				{Name: "empty", Path: "/s/empty"},
				{
					Name: "Bash", Path: "/s/Bash",
					Files: []File{
						{Name: "Basics.md", Path: "/s/Bash/Basics.md"},
						{Name: "backup.md", Path: "/s/Bash/backup.md"},
					},
				},
				{Name: "bats", Path: "/s/bats"},
			},
		},
	}
	annotate(forest)
	return forest
}

func TestFindDirectoryAndFile(t *testing.T) {
	forest := sampleForest()
	if d, ok := FindDirectory(forest, "/s/Bash"); !ok || d.Name != "Bash" {
		t.Errorf("FindDirectory = %+v %v", d, ok)
	}
	if _, ok := FindDirectory(forest, "/nope"); ok {
		t.Error("unexpected directory match")
	}
	if f, ok := FindFile(forest, "/s/Bash/backup.md"); !ok || f.Name != "backup.md" {
		t.Errorf("FindFile = %+v %v", f, ok)
	}
}

func TestFirstWithCheatsheets(t *testing.T) {
	d, ok := FirstWithCheatsheets(sampleForest())
	if !ok || d.Path != "/s/Bash" {
		t.Errorf("FirstWithCheatsheets = %+v %v", d, ok)
	}
	if _, ok := FirstWithCheatsheets(nil); ok {
		t.Error("empty forest has no cheatsheets")
	}
}

func TestIndex_LookupAndCollisions(t *testing.T) {
	forest := sampleForest()
	idx := NewIndex(forest)

	id := shorthand.Directory("/s/Bash")
	if id != "sba" {
		t.Fatalf("id = %q", id)
	}

	want := []Target{
		{Path: "/s/Bash", Name: "Bash", IsDir: true},
		{Path: "/s/bats", Name: "bats", IsDir: true},
	}
	if got := idx.Lookup("SBA"); !reflect.DeepEqual(got, want) {
		t.Errorf("Lookup(SBA) = %+v, want %+v", got, want)
	}

	if files := idx.Lookup("sbaba"); len(files) != 2 {
		t.Errorf("Basics.md and backup.md should collide, got %+v", files)
	}
	if got := idx.Lookup("sem"); len(got) != 1 || got[0].Path != "/s/empty" {
		t.Errorf("Lookup(sem) = %+v", got)
	}
	if got := idx.Lookup("zz"); len(got) != 0 {
		t.Errorf("unknown id matched %+v", got)
	}

	if got := idx.Collisions(); !reflect.DeepEqual(got, []string{"sba", "sbaba"}) {
		t.Errorf("collisions = %v", got)
	}
}
