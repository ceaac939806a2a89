package watch

import (
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestClassify(t *testing.T) {
	present := func(string) bool { return true }
	gone := func(string) bool { return false }

	tests := []struct {
		name   string
		op     fsnotify.Op
		exists ExistsFunc
		want   Kind
		ok     bool
	}{
		{"create", fsnotify.Create, gone, Created, true},
		{"remove", fsnotify.Remove, present, Removed, true},
		{"write", fsnotify.Write, present, Modified, true},
		{"write on deleted path", fsnotify.Write, gone, Removed, true},
		{"chmod", fsnotify.Chmod, present, Modified, true},
		{"chmod on deleted path", fsnotify.Chmod, gone, Removed, true},
		{"rename away", fsnotify.Rename, gone, Removed, true},
		{"create wins over write", fsnotify.Create | fsnotify.Write, gone, Created, true},
		{"remove wins over write", fsnotify.Remove | fsnotify.Write, present, Removed, true},
		{"no op", 0, present, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(fsnotify.Event{Name: "/r/a.md", Op: tt.op}, tt.exists)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if got.Kind != tt.want || got.Path != "/r/a.md" {
				t.Errorf("got %+v, want kind %q", got, tt.want)
			}
		})
	}
}

func TestClassify_ExistenceCheckedOnlyForModifications(t *testing.T) {
	calls := 0
	probe := func(string) bool { calls++; return true }

	Classify(fsnotify.Event{Name: "x", Op: fsnotify.Create}, probe)
	Classify(fsnotify.Event{Name: "x", Op: fsnotify.Remove}, probe)
	if calls != 0 {
		t.Errorf("existence probed %d times for create/remove", calls)
	}
	Classify(fsnotify.Event{Name: "x", Op: fsnotify.Write}, probe)
	if calls != 1 {
		t.Errorf("existence probed %d times for write", calls)
	}
}
