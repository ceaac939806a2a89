package shorthand

import "testing"

func TestID(t *testing.T) {
	cases := []struct {
		path  string
		depth int
		want  string
	}{
		{"/a/bb/ccc", 2, "bbcc"},
		{"/Users/Docs/Bash/Variables.md", 3, "dobava"},
		{"/Users/Docs/Bash", 2, "doba"},
		{"/a/bb/ccc", 0, ""},
		{"/a/bb/ccc", -1, ""},
		{"/a", 3, "a"},
		{"/", 2, ""},
		{"", 2, ""},
		{"/x/Y/z/", 2, "yz"},
		{"relative/Path/Here.md", 3, "repahe"},
		{"/srv/./sheets/../Kube/Pods.md", 2, "kupo"},
		{"/srv/Ärger/Übersicht.md", 2, "ärüb"},
	}
	for _, tc := range cases {
		if got := ID(tc.path, tc.depth); got != tc.want {
			t.Errorf("ID(%q, %d) = %q, want %q", tc.path, tc.depth, got, tc.want)
		}
	}
}

func TestID_SkipsInvalidUTF8(t *testing.T) {
	path := "/docs/bad\xff/name.md"
	if got := ID(path, 2); got != "dona" {
		t.Errorf("ID = %q, want %q", got, "dona")
	}
}

func TestID_Deterministic(t *testing.T) {
	const path = "/home/me/cheats/Git/Rebase.md"
	first := ID(path, FileDepth)
	for i := 0; i < 10; i++ {
		if got := ID(path, FileDepth); got != first {
			t.Fatalf("ID not deterministic: %q vs %q", got, first)
		}
	}
}

func TestID_BoundedByDepth(t *testing.T) {
	const path = "/aa/bb/cc/dd/ee"
	for depth := 0; depth <= 6; depth++ {
		got := ID(path, depth)
		max := depth
		if max > 5 {
			max = 5
		}
		if len(got) != 2*max {
			t.Errorf("depth %d: len(%q) = %d, want %d", depth, got, len(got), 2*max)
		}
	}
}

func TestDirectoryAndFile(t *testing.T) {
	if got := Directory("/cheats/Go/Channels"); got != "goch" {
		t.Errorf("Directory = %q", got)
	}
	if got := File("/cheats/Go/Channels/select.md"); got != "gochse" {
		t.Errorf("File = %q", got)
	}
}
