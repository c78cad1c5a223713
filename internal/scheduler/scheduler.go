// Package scheduler runs the daemon loop: one backup per cycle, cycles
// anchored to their start time, failures logged and retried on the next
// cycle. The loop only stops when its context is cancelled.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"k8s.io/utils/clock"

	"github.com/raoulx24/flameup/internal/config"
	"github.com/raoulx24/flameup/internal/mailbox"
)

// BackupFunc performs one backup with cfg and returns the created name.
type BackupFunc func(ctx context.Context, cfg config.Config) (string, error)

// Scheduler drives backup cycles on a Schedule.
type Scheduler struct {
	clock    clock.Clock
	log      *slog.Logger
	backup   BackupFunc
	updates  *mailbox.Mailbox[config.Config]
	cfg      config.Config
	schedule Schedule
}

// New creates a scheduler for cfg. Reloaded configurations put into updates
// are picked up at the start of the following cycle; updates may be nil.
func New(cfg config.Config, backup BackupFunc, updates *mailbox.Mailbox[config.Config], clk clock.Clock, log *slog.Logger) (*Scheduler, error) {
	sched, err := scheduleFor(cfg)
	if err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		clock:    clk,
		log:      log,
		backup:   backup,
		updates:  updates,
		cfg:      cfg,
		schedule: sched,
	}, nil
}

// Run executes cycles until ctx is cancelled. Backup errors never stop the
// loop. It returns nil on cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		start := s.clock.Now()
		s.applyUpdate()

		s.log.Debug("starting backup cycle", "start", start)
		name, err := s.backup(ctx, s.cfg)
		if ctx.Err() != nil {
			return nil
		}

		next, wait := NextDeadline(s.schedule, start, s.clock.Now())
		if err != nil {
			s.log.Error("backup failed, will retry", "error", err, "next", next)
		} else {
			s.log.Debug("backup completed", "name", name)
		}

		if wait == 0 {
			s.log.Debug("cycle overran its deadline, starting next cycle now", "deadline", next)
			continue
		}

		s.log.Debug("waiting for next backup", "in", wait.Round(time.Second), "at", next)
		if !s.sleep(ctx, wait) {
			return nil
		}
	}
}

// sleep waits for d and reports false if ctx was cancelled first.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	t := s.clock.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C():
		return true
	}
}

func (s *Scheduler) applyUpdate() {
	if s.updates == nil {
		return
	}
	cfg, ok := s.updates.TryTake()
	if !ok {
		return
	}

	sched, err := scheduleFor(cfg)
	if err != nil {
		s.log.Warn("ignoring reloaded configuration", "error", err)
		return
	}
	s.cfg = cfg
	s.schedule = sched
	s.log.Info("configuration reloaded",
		"output", cfg.BackupRoot, "max", cfg.MaxCount, "interval", cfg.Interval, "schedule", cfg.Schedule)
}
