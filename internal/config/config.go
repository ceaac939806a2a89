// Package config holds the cheatsheet configuration model: the ordered list of
// roots, the optional editor and styling hints, and the server settings.
package config

import (
	"fmt"
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	pkgconfig "github.com/starford/cognitio/pkg/config"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Configuration is the parsed cognitio.yaml. A loaded value is never mutated;
// reloads produce a new value.
type Configuration struct {
	Editor      string       `yaml:"editor" json:"editor,omitempty"`
	Cheatsheets RootList     `yaml:"cheatsheets" json:"cheatsheets"`
	Styling     *Styling     `yaml:"styling" json:"styling,omitempty"`
	Server      ServerConfig `yaml:"server" json:"-"`
}

// Validate validates the configuration.
func (c *Configuration) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Cheatsheets, validation.NotNil),
	); err != nil {
		return err
	}
	return c.Server.Validate()
}

// Styling holds presentation hints. The core never interprets them.
type Styling struct {
	Menu *MenuStyle `yaml:"menu" json:"menu,omitempty"`
}

// MenuStyle holds menu presentation hints.
type MenuStyle struct {
	Width string `yaml:"width" json:"width,omitempty"`
}

// ServerConfig holds settings for the long-running modes (serve, mcp, search).
// They are read once at startup.
type ServerConfig struct {
	LogLevel slog.Level  `yaml:"log_level"`
	LogFile  string      `yaml:"log_file"`
	HTTP     HTTPConfig  `yaml:"http"`
	Auth     AuthConfig  `yaml:"auth"`
	Index    IndexConfig `yaml:"index"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// IndexConfig holds the SQLite search index location.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration for the HTTP surface.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefault returns a Configuration with server defaults relative to home.
// Cheatsheets stays nil so that a file without the key fails validation.
func NewDefault(home string) *Configuration {
	return &Configuration{
		Server: ServerConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 7777,
			},
			Auth: AuthConfig{
				Mode: AuthModeDisabled,
			},
			Index: IndexConfig{
				Path: filepath.Join(home, DatabaseName),
			},
		},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Configuration, error) {
	cfg := NewDefault(filepath.Dir(path))
	if err := pkgconfig.Load(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes raw configuration text. home anchors default file locations.
func Parse(data []byte, home string) (*Configuration, error) {
	cfg := NewDefault(home)
	if err := pkgconfig.Decode(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
