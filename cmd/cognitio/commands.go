package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/starford/cognitio/internal"
	"github.com/starford/cognitio/internal/cheatsheet"
	"github.com/starford/cognitio/internal/clipboard"
	"github.com/starford/cognitio/internal/config"
	"github.com/starford/cognitio/internal/editor"
	"github.com/starford/cognitio/internal/index"
	"github.com/starford/cognitio/internal/mcpserver"
	"github.com/starford/cognitio/internal/render"
	"github.com/starford/cognitio/internal/storage"
	"github.com/starford/cognitio/internal/tree"
	"github.com/starford/cognitio/internal/watch"
)

// session holds what every command needs: the loaded configuration, a
// storage provider over its roots and a logger on stderr.
type session struct {
	cell   *config.Cell
	store  *storage.FS
	logger *slog.Logger
	out    io.Writer
}

func open(cmd *cli.Command) (*session, error) {
	level := slog.LevelInfo
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	path := cmd.String("config")
	if path == "" {
		path = config.DefaultPath()
	}
	cell, err := config.OpenCell(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	logger.Debug("config: loaded", slog.String("path", cell.Path()), slog.Int("roots", len(cell.Load().Cheatsheets)))

	return &session{
		cell:   cell,
		store:  storage.NewFS(cell.Roots),
		logger: logger,
		out:    os.Stdout,
	}, nil
}

// service returns a cheatsheet service without a search index.
func (s *session) service() *cheatsheet.Service {
	return cheatsheet.NewService(s.cell, s.store, nil, s.logger)
}

// indexedService opens the search index, brings it up to date and returns a
// service backed by it. The returned func closes the index.
func (s *session) indexedService() (*cheatsheet.Service, func() error, error) {
	path := s.cell.Load().Server.Index.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create index dir: %w", err)
	}
	db, err := index.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}
	svc := cheatsheet.NewService(s.cell, s.store, db, s.logger)
	if err := svc.Resync(); err != nil {
		s.logger.Warn("index sync failed", slog.String("error", err.Error()))
	}
	return svc, db.Close, nil
}

// resolveOne resolves ref and fails when it names more than one target.
func resolveOne(svc *cheatsheet.Service, ref string) (tree.Target, error) {
	targets, err := svc.Resolve(ref)
	if err != nil {
		return tree.Target{}, err
	}
	if len(targets) > 1 {
		paths := make([]string, len(targets))
		for i, t := range targets {
			paths[i] = "  " + t.Path
		}
		return tree.Target{}, fmt.Errorf("%q matches %d entries:\n%s", ref, len(targets), strings.Join(paths, "\n"))
	}
	return targets[0], nil
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	arg := strings.TrimSpace(cmd.Args().First())
	if arg == "" {
		return "", fmt.Errorf("%s: missing %s", cmd.Name, name)
	}
	return arg, nil
}

func listCheatsheets(_ context.Context, cmd *cli.Command) error {
	s, err := open(cmd)
	if err != nil {
		return err
	}
	forest := s.service().Tree()
	if len(forest) == 0 {
		fmt.Fprintf(s.out, "no cheatsheet roots configured in %s\n", s.cell.Path())
		return nil
	}
	fmt.Fprint(s.out, render.Forest(forest))

	idx := tree.NewIndex(forest)
	for _, id := range idx.Collisions() {
		var paths []string
		for _, t := range idx.Lookup(id) {
			paths = append(paths, t.Path)
		}
		s.logger.Warn("shorthand collision", slog.String("id", id), slog.String("paths", strings.Join(paths, ", ")))
	}
	return nil
}

func showCheatsheet(_ context.Context, cmd *cli.Command) error {
	ref, err := requireArg(cmd, "path or shorthand id")
	if err != nil {
		return err
	}
	s, err := open(cmd)
	if err != nil {
		return err
	}
	svc := s.service()
	target, err := resolveOne(svc, ref)
	if err != nil {
		return err
	}
	if target.IsDir {
		node, err := svc.Expand(target.Path)
		if err != nil {
			return err
		}
		fmt.Fprint(s.out, render.Directory(node))
		return nil
	}
	cs, err := svc.Read(target.Path)
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, cs.Content)
	if !strings.HasSuffix(cs.Content, "\n") {
		fmt.Fprintln(s.out)
	}
	return nil
}

func copyCheatsheet(_ context.Context, cmd *cli.Command) error {
	ref, err := requireArg(cmd, "path or shorthand id")
	if err != nil {
		return err
	}
	s, err := open(cmd)
	if err != nil {
		return err
	}
	cb := clipboard.NewService()
	if !cb.Available() {
		return errors.New("copy: no clipboard utility found")
	}
	svc := s.service()
	target, err := resolveOne(svc, ref)
	if err != nil {
		return err
	}
	if target.IsDir {
		return fmt.Errorf("copy: %s is a directory", target.Path)
	}
	cs, err := svc.Read(target.Path)
	if err != nil {
		return err
	}
	if err := cb.Copy(cs.Content); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	fmt.Fprintf(s.out, "copied %s (%s)\n", cs.Title, cs.Path)
	return nil
}

func editCheatsheet(ctx context.Context, cmd *cli.Command) error {
	s, err := open(cmd)
	if err != nil {
		return err
	}
	path := ""
	if ref := strings.TrimSpace(cmd.Args().First()); ref != "" {
		target, err := resolveOne(s.service(), ref)
		if err != nil {
			return err
		}
		path = target.Path
	}
	return editor.New(s.cell, s.logger).Run(ctx, path)
}

func searchCheatsheets(_ context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return errors.New("search: missing query")
	}
	s, err := open(cmd)
	if err != nil {
		return err
	}
	svc, closeIndex, err := s.indexedService()
	if err != nil {
		return err
	}
	defer closeIndex()

	results, err := svc.Search(query, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(s.out, "no matches")
		return nil
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Shorthand, r.Title, r.Path)
	}
	return tw.Flush()
}

// watchLine is one line of `cognitio watch` output.
type watchLine struct {
	Path  string   `json:"path,omitempty"`
	Event string   `json:"event"`
	Roots []string `json:"roots,omitempty"`
}

func watchForest(ctx context.Context, cmd *cli.Command) error {
	s, err := open(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(s.out)
	return watch.New(s.cell, s.logger).Run(ctx, func(ev watch.Event) {
		var line watchLine
		switch e := ev.(type) {
		case watch.ChangeEvent:
			line = watchLine{Path: e.Path, Event: string(e.Kind)}
		case watch.ConfigReloaded:
			line = watchLine{Path: s.cell.Path(), Event: "config_reloaded", Roots: e.Config.Cheatsheets.Dirs()}
		}
		if err := enc.Encode(line); err != nil {
			s.logger.Error("watch: write failed", slog.String("error", err.Error()))
		}
	})
}

func serve(ctx context.Context, cmd *cli.Command) error {
	s, err := open(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithCell(s.cell)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

// serveMCP keeps the index current from the forest watch while the MCP
// server runs. Logs stay on stderr; stdout carries the protocol.
func serveMCP(ctx context.Context, cmd *cli.Command) error {
	s, err := open(cmd)
	if err != nil {
		return err
	}
	svc, closeIndex, err := s.indexedService()
	if err != nil {
		return err
	}
	defer closeIndex()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = watch.New(s.cell, s.logger).Run(ctx, func(ev watch.Event) {
			if err := svc.Apply(ev); err != nil {
				s.logger.Warn("index update failed", slog.String("error", err.Error()))
			}
		})
	}()
	defer func() {
		cancel()
		<-done
	}()

	return mcpserver.New(svc, version).ServeStdio()
}
