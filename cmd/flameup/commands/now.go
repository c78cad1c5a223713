package commands

import (
	"context"
	"io"

	"github.com/raoulx24/flameup/internal/config"
	"github.com/raoulx24/flameup/internal/logging"
	"github.com/raoulx24/flameup/internal/worker"
)

func (a *app) now(ctx context.Context) error {
	lk, err := acquire(ctx, a.cfg.BackupRoot)
	if err != nil {
		return err
	}
	defer lk.Release()

	logging.FromContext(ctx).Debug("performing instant backup")
	return runNowWithWriter(ctx, a.out, a.worker, a.cfg)
}

func runNowWithWriter(ctx context.Context, w io.Writer, wk *worker.Worker, cfg config.Config) error {
	name, err := wk.Backup(ctx, cfg)
	if err != nil {
		return failure(err)
	}
	success(w, "Created backup: %s", name)
	return nil
}
