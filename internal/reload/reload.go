// Package reload re-reads the daemon configuration when the settings file
// changes or when asked to, and hands valid results to the scheduler.
package reload

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/raoulx24/flameup/internal/config"
	"github.com/raoulx24/flameup/internal/errors"
	"github.com/raoulx24/flameup/internal/fsprobe"
	"github.com/raoulx24/flameup/internal/mailbox"
)

// LoadFunc produces a fresh configuration, typically config.Load over the
// original command line.
type LoadFunc func() (config.Config, error)

// Watcher delivers reloaded configurations into a mailbox. It never mutates
// a configuration in use.
type Watcher struct {
	// PollInterval is how often the settings file is checked in poll mode.
	PollInterval time.Duration
	// Debounce collapses bursts of fsnotify events into one reload.
	Debounce time.Duration

	path    string
	mode    config.ReloadMode
	load    LoadFunc
	updates *mailbox.Mailbox[config.Config]
	log     *slog.Logger

	mu          sync.Mutex
	lastModTime time.Time
}

// New creates a watcher for the settings file at path. An empty path
// disables file watching; Trigger still works.
func New(path string, mode config.ReloadMode, load LoadFunc, updates *mailbox.Mailbox[config.Config], log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	w := &Watcher{
		PollInterval: 5 * time.Second,
		Debounce:     500 * time.Millisecond,
		path:         path,
		mode:         mode,
		load:         load,
		updates:      updates,
		log:          log,
	}
	if path != "" {
		if st, err := os.Stat(path); err == nil {
			w.lastModTime = st.ModTime()
		}
	}
	return w
}

// Start watches the settings file until ctx is done, choosing the strategy
// from the configured mode.
func (w *Watcher) Start(ctx context.Context) error {
	if w.path == "" || w.mode == config.ReloadOff {
		return nil
	}

	switch w.mode {
	case config.ReloadFsnotify:
		return w.StartFsNotify(ctx)

	case config.ReloadPoll:
		w.StartPolling(ctx)
		return nil

	case config.ReloadAuto:
		res := fsprobe.Probe(filepath.Dir(w.path), fsprobe.DefaultTimeout)
		if res.Supported {
			return w.StartFsNotify(ctx)
		}
		w.log.Warn("fsnotify disabled, polling settings file", "reason", res.Reason, "interval", w.PollInterval)
		w.StartPolling(ctx)
		return nil

	default:
		return errors.Mark(errors.Newf("unknown reload mode %q", w.mode), errors.ErrConfig)
	}
}

// Trigger reloads immediately, as on SIGHUP.
func (w *Watcher) Trigger() {
	w.reload("signal")
}

// reload loads and validates a configuration and, if valid, replaces any
// pending one in the mailbox.
func (w *Watcher) reload(reason string) {
	cfg, err := w.load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		w.log.Error("config reload failed, keeping current configuration", "reason", reason, "error", err)
		return
	}

	w.updates.Put(cfg)
	w.log.Info("config reload scheduled for next cycle", "reason", reason)
}

// changed reports whether the settings file has a newer mtime than the last
// one seen, and records it.
func (w *Watcher) changed() bool {
	st, err := os.Stat(w.path)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !st.ModTime().After(w.lastModTime) {
		return false
	}
	w.lastModTime = st.ModTime()
	return true
}
