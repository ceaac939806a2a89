package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/starford/cognitio/internal/config"
	"github.com/starford/cognitio/internal/models"
)

// DefaultBuffer is the capacity of the fan-in queue. Producers block when it
// is full.
const DefaultBuffer = 256

// Aggregator owns one watch per configured root plus a watch on the
// configuration home and merges them into a single stream.
type Aggregator struct {
	cell      *config.Cell
	logger    *slog.Logger
	newSource SourceFactory
	exists    ExistsFunc
	buffer    int

	group         errgroup.Group
	configWatched atomic.Bool

	mu    sync.Mutex
	roots map[string]context.CancelFunc
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithSourceFactory replaces the fsnotify-backed source.
func WithSourceFactory(f SourceFactory) Option {
	return func(a *Aggregator) { a.newSource = f }
}

// WithExists replaces the existence probe used by Classify.
func WithExists(f ExistsFunc) Option {
	return func(a *Aggregator) { a.exists = f }
}

// WithBuffer sets the fan-in queue capacity.
func WithBuffer(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.buffer = n
		}
	}
}

// New creates an Aggregator over the roots and configuration file of cell.
func New(cell *config.Cell, logger *slog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		cell:      cell,
		logger:    logger,
		newSource: NewFSNotifySource,
		exists:    pathExists,
		buffer:    DefaultBuffer,
		roots:     make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts all watches and delivers events to handle until ctx is
// cancelled. handle is called from the calling goroutine, one event at a
// time. Events queued before cancellation are still delivered. Run must be
// called at most once.
func (a *Aggregator) Run(ctx context.Context, handle Handler) error {
	out := make(chan Event, a.buffer)

	// Keeps the group open until shutdown so that watches started by a
	// reload are always counted before the queue is closed.
	a.group.Go(func() error {
		<-ctx.Done()
		return nil
	})

	a.reconcile(ctx, a.cell.Load(), out)
	a.watchConfig(ctx, out)

	go func() {
		_ = a.group.Wait()
		close(out)
	}()

	for ev := range out {
		handle(ev)
	}
	a.logger.Info("watch: stopped")
	return nil
}

// Roots returns the directories currently being watched.
func (a *Aggregator) Roots() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	dirs := make([]string, 0, len(a.roots))
	for dir := range a.roots {
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)
	return dirs
}

// reconcile stops watches for roots no longer configured and starts watches
// for new ones. Roots that failed to start earlier are retried.
func (a *Aggregator) reconcile(ctx context.Context, cfg *config.Configuration, out chan<- Event) {
	var dirs []string
	if cfg != nil {
		dirs = cfg.Cheatsheets.Dirs()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for dir, stop := range a.roots {
		if !slices.Contains(dirs, dir) {
			stop()
			delete(a.roots, dir)
			a.logger.Info("watch: root removed", slog.String("root", dir))
		}
	}
	for _, dir := range dirs {
		if _, ok := a.roots[dir]; ok {
			continue
		}
		a.startRoot(ctx, dir, out)
	}
}

// startRoot must be called with a.mu held.
func (a *Aggregator) startRoot(ctx context.Context, dir string, out chan<- Event) {
	if ctx.Err() != nil {
		return
	}
	src, err := a.newSource()
	if err != nil {
		a.logger.Warn("watch: start failed", slog.String("root", dir), slog.String("error", err.Error()))
		return
	}
	if err := addDirsRecursive(src, dir); err != nil {
		_ = src.Close()
		a.logger.Warn("watch: start failed", slog.String("root", dir), slog.String("error", err.Error()))
		return
	}

	rootCtx, cancel := context.WithCancel(ctx)
	a.roots[dir] = cancel
	a.logger.Info("watch: started", slog.String("root", dir))

	a.group.Go(func() error {
		a.pump(rootCtx, src, dir, func(change ChangeEvent) {
			a.onRootChange(ctx, src, change, out)
		})
		return nil
	})
}

// watchConfig watches the directory holding the configuration file,
// without descending into it.
func (a *Aggregator) watchConfig(ctx context.Context, out chan<- Event) {
	path := a.cell.Path()
	home := filepath.Dir(path)

	// Root watches stop reloading as soon as this watch may exist.
	a.configWatched.Store(true)
	src, err := a.newSource()
	if err == nil {
		err = src.Add(home)
		if err != nil {
			_ = src.Close()
		}
	}
	if err != nil {
		a.configWatched.Store(false)
		a.logger.Warn("watch: config watch failed", slog.String("home", home), slog.String("error", err.Error()))
		return
	}
	a.logger.Info("watch: started", slog.String("config", path))

	a.group.Go(func() error {
		a.pump(ctx, src, home, func(change ChangeEvent) {
			if change.Path == path {
				a.reload(ctx, out)
			}
		})
		return nil
	})
}

// pump reads src until ctx is done or the source closes, passing every
// classified change to fn. Source errors are logged and do not stop the loop.
func (a *Aggregator) pump(ctx context.Context, src Source, dir string, fn func(ChangeEvent)) {
	defer src.Close()
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-src.Events():
			if !ok {
				return
			}
			change, ok := Classify(ev, a.exists)
			if !ok {
				continue
			}
			fn(change)

		case err, ok := <-src.Errors():
			if !ok {
				return
			}
			a.logger.Error("watch: error", slog.String("root", dir), slog.String("error", err.Error()))
		}
	}
}

func (a *Aggregator) onRootChange(ctx context.Context, src Source, change ChangeEvent, out chan<- Event) {
	if change.Path == a.cell.Path() {
		// The config watch owns reloads when it is running.
		if !a.configWatched.Load() {
			a.reload(ctx, out)
		}
		return
	}

	if change.Kind == Created && !models.IsHidden(filepath.Base(change.Path)) {
		if info, err := os.Stat(change.Path); err == nil && info.IsDir() {
			if err := addDirsRecursive(src, change.Path); err != nil {
				a.logger.Warn("watch: add new dir failed", slog.String("path", change.Path), slog.String("error", err.Error()))
			} else {
				a.logger.Debug("watch: watching new dir", slog.String("path", change.Path))
			}
		}
	}

	a.logger.Debug("watch: change", slog.String("path", change.Path), slog.String("kind", string(change.Kind)))
	a.emit(ctx, out, change)
}

func (a *Aggregator) reload(ctx context.Context, out chan<- Event) {
	cfg, err := a.cell.Reload()
	if err != nil {
		a.logger.Warn("watch: config reload failed", slog.String("path", a.cell.Path()), slog.String("error", err.Error()))
		return
	}
	a.logger.Info("watch: config reloaded", slog.Int("roots", len(cfg.Cheatsheets)))
	a.reconcile(ctx, cfg, out)
	a.emit(ctx, out, ConfigReloaded{Config: cfg})
}

func (a *Aggregator) emit(ctx context.Context, out chan<- Event, ev Event) {
	select {
	case out <- ev:
	case <-ctx.Done():
	}
}
