package internal

import (
	"io"

	"github.com/starford/cognitio/internal/config"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	cell   *config.Cell
	stdout io.Writer
}

// WithCell sets the configuration cell the application serves.
func WithCell(cell *config.Cell) Option {
	return func(a *application) {
		a.cell = cell
	}
}

// WithStdout replaces the default log destination.
func WithStdout(w io.Writer) Option {
	return func(a *application) {
		a.stdout = w
	}
}
