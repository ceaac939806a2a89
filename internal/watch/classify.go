package watch

import (
	"os"

	"github.com/fsnotify/fsnotify"
)

// ExistsFunc reports whether a path exists at the time of the call.
type ExistsFunc func(path string) bool

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Classify maps a raw notification to a ChangeEvent. The second result is
// false when the notification carries no logical change.
//
// Write, Chmod and Rename are modifications. Some platforms report a deletion
// as one of those, so a modified path that no longer exists is classified as
// Removed. The existence check races with the filesystem and is best effort.
func Classify(ev fsnotify.Event, exists ExistsFunc) (ChangeEvent, bool) {
	switch {
	case ev.Has(fsnotify.Create):
		return ChangeEvent{Path: ev.Name, Kind: Created}, true
	case ev.Has(fsnotify.Remove):
		return ChangeEvent{Path: ev.Name, Kind: Removed}, true
	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Chmod), ev.Has(fsnotify.Rename):
		if !exists(ev.Name) {
			return ChangeEvent{Path: ev.Name, Kind: Removed}, true
		}
		return ChangeEvent{Path: ev.Name, Kind: Modified}, true
	}
	return ChangeEvent{}, false
}
