// Package watch turns edits of the settings file into snapshot invalidations.
//
// Editors usually replace a file by writing a temporary file and renaming it,
// so the Bridge watches the settings file's directory and filters events by
// file name. Bursts of events are coalesced: a 1-slot signal channel absorbs
// duplicates and a rate limiter spaces reconcile passes.
//
// Each pass compares the digests of the stored projects and favicon values
// with the digests the store last wrote or loaded, and invalidates only the
// cache whose value differs. Equal digests (this process's own write, or an
// edit to an unrelated key) are ignored. The Bridge never mutates the deck.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/projectdeck/internal/cache"
	"github.com/fyrsmithlabs/projectdeck/internal/logging"
	"github.com/fyrsmithlabs/projectdeck/internal/registry"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// Store is the part of registry.Store the bridge needs.
type Store interface {
	ReadDigests(ctx context.Context) (registry.Digests, error)
	Digests() registry.Digests
	Invalidate(reason cache.Reason)
	InvalidatePreferences(reason cache.Reason)
}

// Redrawer is asked to re-render after an external change.
type Redrawer interface {
	RequestRedraw()
}

// Options configures a Bridge.
type Options struct {
	// MinInterval is the minimum spacing between reconcile passes.
	MinInterval time.Duration

	// Burst is the number of passes allowed back to back.
	Burst int

	Logger *logging.Logger
}

// Bridge watches one settings file.
type Bridge struct {
	dir      string
	base     string
	store    Store
	redrawer Redrawer
	limiter  *rate.Limiter
	logger   *logging.Logger

	watcher *fsnotify.Watcher
	signal  chan struct{}
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewBridge creates a bridge for the settings file at path.
func NewBridge(path string, store Store, redrawer Redrawer, opts Options) (*Bridge, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve settings path: %w", err)
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = 100 * time.Millisecond
	}
	if opts.Burst < 1 {
		opts.Burst = 1
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	return &Bridge{
		dir:      filepath.Dir(abs),
		base:     filepath.Base(abs),
		store:    store,
		redrawer: redrawer,
		limiter:  rate.NewLimiter(rate.Every(opts.MinInterval), opts.Burst),
		logger:   opts.Logger.Named("watch"),
		watcher:  watcher,
		signal:   make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}, nil
}

// Start begins watching. The settings directory is created if missing.
// Call Stop to release the watcher.
func (b *Bridge) Start(ctx context.Context) error {
	if err := os.MkdirAll(b.dir, 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := b.watcher.Add(b.dir); err != nil {
		return fmt.Errorf("watching %s: %w", b.dir, err)
	}

	b.wg.Add(2)
	go b.processEvents(ctx)
	go b.reconcileLoop(ctx)

	b.logger.Debug(ctx, "watching settings", zap.String("dir", b.dir), zap.String("file", b.base))
	return nil
}

// Stop stops both goroutines and closes the watcher. It is safe to call
// more than once.
func (b *Bridge) Stop() {
	b.once.Do(func() {
		close(b.stop)
		_ = b.watcher.Close() // Best-effort cleanup, ignore error
	})
	b.wg.Wait()
}

// processEvents forwards events for the settings file to the signal slot.
func (b *Bridge) processEvents(ctx context.Context) {
	defer b.wg.Done()
	for {
		select {
		case <-b.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != b.base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			b.logger.Trace(ctx, "settings event", zap.String("op", event.Op.String()))
			b.Notify()
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			// Log error but continue watching
			b.logger.Warn(ctx, "watcher error", zap.Error(err))
		}
	}
}

// Notify schedules a reconcile pass. Signals arriving while one is pending
// collapse into it.
func (b *Bridge) Notify() {
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

func (b *Bridge) reconcileLoop(ctx context.Context) {
	defer b.wg.Done()

	// Stop cancels a pending limiter wait.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-b.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.signal:
			if err := b.limiter.Wait(ctx); err != nil {
				return
			}
			if _, err := b.Reconcile(ctx); err != nil && ctx.Err() == nil {
				b.logger.Warn(ctx, "reconcile failed", zap.Error(err))
			}
		}
	}
}

// Reconcile compares the stored values with what the caches reflect and
// invalidates each one that differs. It reports whether anything changed.
func (b *Bridge) Reconcile(ctx context.Context) (bool, error) {
	stored, err := b.store.ReadDigests(ctx)
	if err != nil {
		// A half-written file fails to parse; the write that completes it
		// raises another event.
		return false, err
	}
	known := b.store.Digests()

	changed := false
	if stored.Projects != known.Projects {
		b.store.Invalidate(cache.ReasonExternalChange)
		b.logger.Info(ctx, "projects changed outside the deck")
		changed = true
	}
	if stored.Favicons != known.Favicons {
		b.store.InvalidatePreferences(cache.ReasonExternalChange)
		b.logger.Info(ctx, "favicon preference changed outside the deck")
		changed = true
	}
	if !changed {
		b.logger.Trace(ctx, "settings unchanged")
		return false, nil
	}

	b.redrawer.RequestRedraw()
	return true, nil
}
