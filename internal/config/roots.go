package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// RootSpec is one entry of the cheatsheets list. It is either a BareRoot or a
// TitledRoot; no other implementations exist.
type RootSpec interface {
	// Title is the display label of the root.
	Title() string
	// Dir is the absolute directory the root points at.
	Dir() string
	Validate() error
	isRootSpec()
}

// BareRoot is a root given as a plain path. Its title is the final path component.
type BareRoot struct {
	Path string `yaml:"path" json:"path"`
}

func (BareRoot) isRootSpec() {}

// Title returns the base name of the configured path.
func (r BareRoot) Title() string {
	return filepath.Base(filepath.Clean(r.Path))
}

// Dir returns the resolved absolute path.
func (r BareRoot) Dir() string {
	return ExpandPath(r.Path)
}

// Validate validates the bare root.
func (r BareRoot) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
	)
}

// MarshalJSON encodes a bare root as the plain path string, matching the file shape.
func (r BareRoot) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Path)
}

// TitledRoot is a root with an explicit display title.
type TitledRoot struct {
	Name string `yaml:"title" json:"title"`
	Path string `yaml:"path" json:"path"`
}

func (TitledRoot) isRootSpec() {}

// Title returns the configured title.
func (r TitledRoot) Title() string {
	return r.Name
}

// Dir returns the resolved absolute path.
func (r TitledRoot) Dir() string {
	return ExpandPath(r.Path)
}

// Validate validates the titled root.
func (r TitledRoot) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Path, validation.Required),
	)
}

// RootList is the ordered cheatsheets list. Order is display order.
type RootList []RootSpec

// UnmarshalYAML decodes every list item trying the titled mapping shape first
// and falling back to a bare path string.
func (l *RootList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: cheatsheets must be a list", value.Line)
	}
	roots := make(RootList, 0, len(value.Content))
	for i, item := range value.Content {
		root, err := decodeRoot(item)
		if err != nil {
			return fmt.Errorf("cheatsheets[%d]: %w", i, err)
		}
		roots = append(roots, root)
	}
	*l = roots
	return nil
}

func decodeRoot(node *yaml.Node) (RootSpec, error) {
	var titled TitledRoot
	if err := node.Decode(&titled); err == nil && node.Kind == yaml.MappingNode {
		return titled, nil
	}
	if node.Kind == yaml.ScalarNode {
		var path string
		if err := node.Decode(&path); err == nil {
			return BareRoot{Path: path}, nil
		}
	}
	return nil, fmt.Errorf("line %d: expected a path or a {title, path} mapping", node.Line)
}

// Validate validates every root, keyed by list index.
func (l RootList) Validate() error {
	errs := validation.Errors{}
	for i, root := range l {
		if root == nil {
			errs[strconv.Itoa(i)] = fmt.Errorf("empty entry")
			continue
		}
		if err := root.Validate(); err != nil {
			errs[strconv.Itoa(i)] = err
		}
	}
	return errs.Filter()
}

// Dirs returns the resolved directory of every root, in list order.
func (l RootList) Dirs() []string {
	dirs := make([]string, 0, len(l))
	for _, root := range l {
		dirs = append(dirs, root.Dir())
	}
	return dirs
}
