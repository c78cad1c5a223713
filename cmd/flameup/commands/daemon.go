package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"k8s.io/utils/clock"

	"github.com/raoulx24/flameup/internal/config"
	"github.com/raoulx24/flameup/internal/logging"
	"github.com/raoulx24/flameup/internal/mailbox"
	"github.com/raoulx24/flameup/internal/reload"
	"github.com/raoulx24/flameup/internal/scheduler"
)

func (a *app) daemon(ctx context.Context) error {
	lk, err := acquire(ctx, a.cfg.BackupRoot)
	if err != nil {
		return err
	}
	defer lk.Release()

	if err := a.worker.EnsureRoot(a.cfg.BackupRoot); err != nil {
		return failure(err)
	}

	printBanner(a.out, a.cfg)

	log := logging.FromContext(ctx)
	updates := mailbox.New[config.Config]()
	watcher := reload.New(a.cfg.SettingsFile, a.cfg.Reload, a.reloadConfig(log), updates, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := watcher.Start(ctx); err != nil {
			log.Warn("settings watcher stopped", "error", err)
		}
	}()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				log.Info("received SIGHUP, reloading configuration")
				watcher.Trigger()
			}
		}
	}()

	s, err := scheduler.New(a.cfg, a.backupAndReport, updates, clock.RealClock{}, log)
	if err != nil {
		return failure(err)
	}
	err = s.Run(ctx)
	log.Info("daemon stopped")
	return err
}

// reloadConfig returns a loader that re-resolves the configuration from the
// original flags. The backup root is pinned: the lock was taken on it at
// startup.
func (a *app) reloadConfig(log *slog.Logger) func() (config.Config, error) {
	return func() (config.Config, error) {
		cfg, err := config.Load(a.flags)
		if err != nil {
			return config.Config{}, err
		}
		if cfg.BackupRoot != a.cfg.BackupRoot {
			log.Warn("backup directory cannot change while the daemon runs; keeping the current one",
				"current", a.cfg.BackupRoot, "requested", cfg.BackupRoot)
			cfg.BackupRoot = a.cfg.BackupRoot
		}
		return cfg, nil
	}
}

func (a *app) backupAndReport(ctx context.Context, cfg config.Config) (string, error) {
	name, err := a.worker.Backup(ctx, cfg)
	if err != nil {
		return "", err
	}
	success(a.out, "Created backup: %s", name)
	return name, nil
}

func printBanner(w io.Writer, cfg config.Config) {
	fmt.Fprintln(w, "Starting backup daemon...")
	if cfg.Schedule != "" {
		fmt.Fprintf(w, "Backup schedule: %s\n", cfg.Schedule)
	} else {
		fmt.Fprintf(w, "Backup interval: %d minutes\n", int(cfg.Interval/time.Minute))
	}
	fmt.Fprintf(w, "Max backups: %d\n", cfg.MaxCount)
	fmt.Fprintf(w, "Backup directory: %s\n", cfg.BackupRoot)
	fmt.Fprintln(w, "Press Ctrl+C to stop...")
	fmt.Fprintln(w)
}
