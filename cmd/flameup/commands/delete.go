package commands

import (
	"context"
	"io"

	"github.com/raoulx24/flameup/internal/worker"
)

func (a *app) delete(ctx context.Context) error {
	lk, err := acquire(ctx, a.cfg.BackupRoot)
	if err != nil {
		return err
	}
	defer lk.Release()

	return runDeleteWithWriter(ctx, a.out, a.worker, a.cfg.DeleteName, a.cfg.BackupRoot)
}

func runDeleteWithWriter(ctx context.Context, w io.Writer, wk *worker.Worker, name, root string) error {
	if err := wk.Delete(ctx, name, root); err != nil {
		return failure(err)
	}
	success(w, "Deleted backup: %s", name)
	return nil
}
