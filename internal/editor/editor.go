// Package editor opens cheatsheets and the configuration file in the user's
// editor.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/starford/cognitio/internal/apperr"
	"github.com/starford/cognitio/internal/config"
)

// Launcher resolves the editor from the configuration, then $VISUAL, then
// $EDITOR.
type Launcher struct {
	cell   *config.Cell
	logger *slog.Logger
	getenv func(string) string
}

// New creates a Launcher reading the editor setting from cell.
func New(cell *config.Cell, logger *slog.Logger) *Launcher {
	return &Launcher{cell: cell, logger: logger, getenv: os.Getenv}
}

// Resolve returns the editor command line, split into program and arguments.
func (l *Launcher) Resolve() ([]string, error) {
	candidates := []string{l.getenv("VISUAL"), l.getenv("EDITOR")}
	if cfg := l.cell.Load(); cfg != nil {
		candidates = append([]string{cfg.Editor}, candidates...)
	}
	for _, c := range candidates {
		if fields := strings.Fields(c); len(fields) > 0 {
			return fields, nil
		}
	}
	return nil, apperr.ErrNoEditor
}

// Target returns path, or the configuration file when path is empty.
func (l *Launcher) Target(path string) string {
	if path == "" {
		return l.cell.Path()
	}
	return path
}

func (l *Launcher) command(ctx context.Context, path string) (*exec.Cmd, error) {
	argv, err := l.Resolve()
	if err != nil {
		return nil, err
	}
	return exec.CommandContext(ctx, argv[0], append(argv[1:], l.Target(path))...), nil
}

// Run opens path in the editor attached to the terminal and waits for it
// to exit.
func (l *Launcher) Run(ctx context.Context, path string) error {
	cmd, err := l.command(ctx, path)
	if err != nil {
		return err
	}
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor: run %s: %w", cmd.Path, err)
	}
	return nil
}

// Start opens path in the editor without waiting. The process is reaped in
// the background and its exit status logged.
func (l *Launcher) Start(path string) error {
	cmd, err := l.command(context.Background(), path)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("editor: start %s: %w", cmd.Path, err)
	}
	l.logger.Info("editor: started", slog.String("path", l.Target(path)), slog.Int("pid", cmd.Process.Pid))
	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger.Warn("editor: exited", slog.String("path", l.Target(path)), slog.String("error", err.Error()))
		}
	}()
	return nil
}
