// Package worker implements the snapshot operations: creating a snapshot
// from a source directory, restoring one to a target path, deleting one, and
// the full backup sequence that enforces retention before creating.
package worker

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"k8s.io/utils/clock"

	"github.com/raoulx24/flameup/internal/catalog"
	"github.com/raoulx24/flameup/internal/config"
	"github.com/raoulx24/flameup/internal/errors"
	"github.com/raoulx24/flameup/internal/fs"
	"github.com/raoulx24/flameup/internal/retention"
	"github.com/raoulx24/flameup/internal/snapshot"
)

// stagingPrefix marks a snapshot that is still being written. It never
// matches the catalog predicate.
const stagingPrefix = ".tmp-"

// Worker writes, restores and deletes snapshot directories.
type Worker struct {
	fs        fs.FS
	log       *slog.Logger
	clock     clock.PassiveClock
	retention *retention.Engine
}

// New creates a worker. A nil filesystem or clock selects the real one.
func New(log *slog.Logger, filesystem fs.FS, clk clock.PassiveClock) *Worker {
	if log == nil {
		log = slog.Default()
	}
	if filesystem == nil {
		filesystem = fs.New()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Worker{
		fs:        filesystem,
		log:       log,
		clock:     clk,
		retention: retention.New(filesystem, log),
	}
}

// Backup performs one backup cycle for cfg: it resolves and checks the
// source directory, makes sure the backup root exists, evicts old snapshots
// and creates a new one. It returns the new snapshot's name.
func (w *Worker) Backup(ctx context.Context, cfg config.Config) (string, error) {
	source := cfg.SourcePath
	if source == "" {
		var err error
		source, err = config.ReadSourcePath(cfg.ConfigFile)
		if err != nil {
			return "", err
		}
	}
	if err := w.checkSource(source); err != nil {
		return "", err
	}

	root := cfg.BackupRoot
	if err := w.EnsureRoot(root); err != nil {
		return "", err
	}

	if _, err := w.retention.Enforce(ctx, root, cfg.MaxCount); err != nil {
		return "", err
	}

	name, err := snapshot.MakeName(w.clock.Now())
	if err != nil {
		return "", err
	}
	dest := filepath.Join(root, name)

	w.log.Debug("backing up", "source", source, "destination", dest)
	if err := w.Create(ctx, source, dest); err != nil {
		return "", err
	}
	return name, nil
}

// EnsureRoot creates the backup root if it is missing.
func (w *Worker) EnsureRoot(root string) error {
	if _, err := w.fs.Stat(root); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "checking backup directory %s", root)
	}

	if err := w.fs.MkdirAll(root); err != nil {
		return errors.Wrapf(err, "creating backup directory %s", root)
	}
	w.log.Debug("created backup directory", "root", root)
	return nil
}

// Create copies the tree at source into the new snapshot directory dest.
// The copy is staged next to dest and renamed into place, so dest either
// does not exist or holds a complete copy. When the backup directory lies
// inside source it is left out of the copy.
func (w *Worker) Create(ctx context.Context, source, dest string) error {
	if err := w.checkSource(source); err != nil {
		return err
	}

	if _, err := w.fs.Stat(dest); err == nil {
		return errors.Mark(
			errors.Mark(errors.Newf("snapshot %s already exists", filepath.Base(dest)), errors.ErrSnapshotExists),
			errors.ErrCopy)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return errors.Mark(errors.Wrapf(err, "checking %s", dest), errors.ErrCopy)
	}

	staging := filepath.Join(filepath.Dir(dest), stagingPrefix+filepath.Base(dest))
	if err := w.fs.RemoveAll(staging); err != nil {
		return errors.Mark(errors.Wrapf(err, "clearing stale staging directory %s", staging), errors.ErrCopy)
	}

	w.log.Debug("copying", "source", source, "staging", staging)
	if err := w.fs.CopyTree(ctx, source, staging, filepath.Dir(dest)); err != nil {
		_ = w.fs.RemoveAll(staging)
		return errors.Mark(errors.Wrapf(err, "copying %s", source), errors.ErrCopy)
	}

	if err := w.fs.Rename(ctx, staging, dest); err != nil {
		_ = w.fs.RemoveAll(staging)
		return errors.Mark(errors.Wrapf(err, "finalizing snapshot %s", filepath.Base(dest)), errors.ErrCopy)
	}
	return nil
}

// Restore replaces target with a copy of the snapshot called name. When the
// snapshot does not exist target is left untouched.
func (w *Worker) Restore(ctx context.Context, name, root, target string) error {
	snap, err := w.lookup(name, root)
	if err != nil {
		return err
	}
	if within(target, snap.Path) {
		return errors.Mark(errors.Newf("cannot restore %s into itself", name), errors.ErrCopy)
	}
	if within(root, target) {
		return errors.Mark(errors.Newf("cannot restore %s over the backup directory %s", name, root), errors.ErrCopy)
	}

	if err := w.fs.MkdirAll(filepath.Dir(target)); err != nil {
		return errors.Mark(errors.Wrapf(err, "creating parent of %s", target), errors.ErrCopy)
	}

	if _, err := w.fs.Stat(target); err == nil {
		w.log.Debug("removing existing restore target", "target", target)
		if err := w.fs.RemoveAll(target); err != nil {
			return errors.Mark(errors.Wrapf(err, "removing %s", target), errors.ErrCopy)
		}
	}

	w.log.Debug("restoring", "snapshot", snap.Path, "target", target)
	if err := w.fs.CopyTree(ctx, snap.Path, target); err != nil {
		return errors.Mark(errors.Wrapf(err, "restoring %s", name), errors.ErrCopy)
	}
	return nil
}

// Delete removes the snapshot called name.
func (w *Worker) Delete(_ context.Context, name, root string) error {
	snap, err := w.lookup(name, root)
	if err != nil {
		return err
	}

	w.log.Debug("deleting", "snapshot", snap.Path)
	if err := w.fs.RemoveAll(snap.Path); err != nil {
		return errors.Mark(errors.Wrapf(err, "deleting %s", name), errors.ErrDelete)
	}
	return nil
}

// Size returns the total size in bytes of the regular files below path.
func (w *Worker) Size(ctx context.Context, path string) (int64, error) {
	return w.fs.TreeSize(ctx, path)
}

func (w *Worker) checkSource(source string) error {
	st, err := w.fs.Stat(source)
	if err != nil || !st.IsDir() {
		return errors.Mark(errors.Newf("source directory does not exist: %s", source), errors.ErrSourceMissing)
	}
	return nil
}

// lookup resolves name to an existing snapshot directly under root. Names
// that are not a single catalog entry are treated as not found.
func (w *Worker) lookup(name, root string) (snapshot.Snapshot, error) {
	notFound := errors.Mark(errors.Newf("backup not found: %s", name), errors.ErrSnapshotNotFound)

	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || !snapshot.IsName(name) {
		return snapshot.Snapshot{}, notFound
	}

	cat, err := catalog.Scan(w.fs, root)
	if err != nil {
		return snapshot.Snapshot{}, errors.Wrapf(err, "listing %s", root)
	}
	if !cat.Contains(name) {
		return snapshot.Snapshot{}, notFound
	}
	return snapshot.New(root, name), nil
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	p, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	d, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(d, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
