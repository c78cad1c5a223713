// Package retention keeps the number of snapshots under a backup root
// bounded by evicting the oldest ones before a new snapshot is created.
package retention

import (
	"context"
	"log/slog"

	"github.com/raoulx24/flameup/internal/catalog"
	"github.com/raoulx24/flameup/internal/errors"
	"github.com/raoulx24/flameup/internal/fs"
)

// Engine evicts the oldest snapshots under a backup root.
type Engine struct {
	fs  fs.FS
	log *slog.Logger
}

// New creates an engine. A nil filesystem selects the OS one and a nil
// logger selects slog.Default().
func New(fsys fs.FS, log *slog.Logger) *Engine {
	if fsys == nil {
		fsys = fs.New()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{fs: fsys, log: log}
}

// Enforce makes room for one more snapshot under root: it evicts the oldest
// snapshots until fewer than maxCount remain, so that after the next create
// the catalog holds at most maxCount entries.
//
// Evicted names are returned oldest first. The first delete failure aborts
// the pass; the names evicted up to that point are still returned.
func (e *Engine) Enforce(ctx context.Context, root string, maxCount int) ([]string, error) {
	if maxCount < 1 {
		return nil, errors.Mark(errors.Newf("retention count must be at least 1, got %d", maxCount), errors.ErrConfig)
	}

	cat, err := catalog.Scan(e.fs, root)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", root)
	}

	working := cat.OldestFirst()
	var evicted []string
	for len(working) >= maxCount {
		if err := ctx.Err(); err != nil {
			return evicted, err
		}

		oldest := working[0]
		e.log.Debug("evicting snapshot", "name", oldest.Name, "kept", len(working)-1, "max", maxCount)
		if err := e.fs.RemoveAll(oldest.Path); err != nil {
			return evicted, errors.Mark(errors.Wrapf(err, "evicting %s", oldest.Name), errors.ErrDelete)
		}

		working = working[1:]
		evicted = append(evicted, oldest.Name)
	}

	return evicted, nil
}
