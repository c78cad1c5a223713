package commands

import (
	"context"
	"io"

	"github.com/raoulx24/flameup/internal/worker"
)

func (a *app) restore(ctx context.Context) error {
	lk, err := acquire(ctx, a.cfg.BackupRoot)
	if err != nil {
		return err
	}
	defer lk.Release()

	return runRestoreWithWriter(ctx, a.out, a.worker, a.cfg.RestoreName, a.cfg.BackupRoot, a.cfg.RestoreTarget)
}

func runRestoreWithWriter(ctx context.Context, w io.Writer, wk *worker.Worker, name, root, target string) error {
	if err := wk.Restore(ctx, name, root, target); err != nil {
		return failure(err)
	}
	success(w, "Restored backup '%s' to: %s", name, target)
	return nil
}
