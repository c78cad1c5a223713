package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/raoulx24/flameup/internal/catalog"
	"github.com/raoulx24/flameup/internal/errors"
	"github.com/raoulx24/flameup/internal/fs"
	"github.com/raoulx24/flameup/internal/worker"
)

func (a *app) list(ctx context.Context) error {
	return runListWithWriter(ctx, a.out, a.worker, a.cfg.BackupRoot)
}

// runListWithWriter prints the catalog under root, newest first. It does not
// take the lock and never creates root.
func runListWithWriter(ctx context.Context, w io.Writer, wk *worker.Worker, root string) error {
	cat, err := catalog.Scan(fs.New(), root)
	if err != nil {
		return failure(errors.Wrapf(err, "listing %s", root))
	}

	if cat.Len() == 0 {
		fmt.Fprintf(w, "No backups found in: %s\n", root)
		return nil
	}

	fmt.Fprintf(w, "Available backups in %s:\n", root)
	for _, s := range cat.NewestFirst() {
		size, err := wk.Size(ctx, s.Path)
		if err != nil {
			return failure(errors.Wrapf(err, "measuring %s", s.Name))
		}
		fmt.Fprintf(w, "  %s (Size: %s)\n", s.Name, humanize.IBytes(uint64(size)))
	}
	return nil
}
