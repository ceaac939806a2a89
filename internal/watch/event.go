// Package watch multiplexes filesystem watches over every configured
// cheatsheet root and the configuration home into one ordered event stream.
package watch

import "github.com/starford/cognitio/internal/config"

// Kind is the logical change applied to a path.
type Kind string

const (
	Created  Kind = "created"
	Modified Kind = "modified"
	Removed  Kind = "removed"
)

// Event is a value delivered to the consumer: either a ChangeEvent or a
// ConfigReloaded.
type Event interface {
	isEvent()
}

// ChangeEvent reports a change to a single path inside a watched root.
type ChangeEvent struct {
	Path string `json:"path"`
	Kind Kind   `json:"event"`
}

func (ChangeEvent) isEvent() {}

// ConfigReloaded reports that the configuration file changed and was parsed
// successfully. Config is the new configuration, already stored in the cell.
type ConfigReloaded struct {
	Config *config.Configuration `json:"config"`
}

func (ConfigReloaded) isEvent() {}

// Handler receives events one at a time, in arrival order.
type Handler func(Event)
