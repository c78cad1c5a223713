// Package fsprobe checks whether fsnotify delivers events for a directory.
// Network shares and some container mounts accept a watch but never report
// anything, so the probe makes a real change and waits for it to show up.
package fsprobe

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/raoulx24/flameup/internal/errors"
)

// DefaultTimeout bounds how long Probe waits for the test event.
const DefaultTimeout = 200 * time.Millisecond

const (
	probeTmp   = ".flameup-probe.tmp"
	probeFinal = ".flameup-probe"
)

// Result reports whether fsnotify is usable and, if not, why.
type Result struct {
	Supported bool
	Reason    error
}

// Probe creates and renames a scratch file in dir and reports whether
// fsnotify saw it within timeout.
func Probe(dir string, timeout time.Duration) Result {
	st, err := os.Stat(dir)
	if err != nil {
		return unsupported(errors.Wrap(err, "stat failed"))
	}
	if !st.IsDir() {
		return unsupported(errors.Newf("%s is not a directory", dir))
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return unsupported(errors.Wrap(err, "fsnotify unavailable"))
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return unsupported(errors.Wrap(err, "cannot watch directory"))
	}

	tmp := filepath.Join(dir, probeTmp)
	final := filepath.Join(dir, probeFinal)

	f, err := os.Create(tmp)
	if err != nil {
		return unsupported(errors.Wrap(err, "cannot create probe file"))
	}
	_ = f.Close()

	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return unsupported(errors.Wrap(err, "rename failed"))
	}
	defer os.Remove(final)

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return unsupported(errors.New("event channel closed"))
			}
			if ev.Op&(fsnotify.Rename|fsnotify.Create|fsnotify.Write) != 0 {
				return Result{Supported: true}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return unsupported(errors.New("error channel closed"))
			}
			return unsupported(errors.Wrap(err, "fsnotify error"))
		case <-deadline.C:
			return unsupported(errors.New("no events received"))
		}
	}
}

func unsupported(reason error) Result {
	return Result{Reason: reason}
}
