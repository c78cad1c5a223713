package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/flameup/internal/config"
	"github.com/raoulx24/flameup/internal/errors"
)

// Schedule yields the deadline of the cycle after one that started at t.
type Schedule interface {
	Next(t time.Time) time.Time
}

type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

// Every runs a cycle interval after the start of the previous one.
func Every(interval time.Duration) Schedule {
	return every(interval)
}

// ParseCron parses a standard five-field cron expression.
func ParseCron(expr string) (Schedule, error) {
	s, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parsing schedule %q", expr), errors.ErrConfig)
	}
	return s, nil
}

// NextDeadline returns when the cycle after one started at start is due under
// sched, and how long to wait for it at now. The wait is zero when the
// deadline has already passed; missed cycles are never caught up.
func NextDeadline(sched Schedule, start, now time.Time) (time.Time, time.Duration) {
	next := sched.Next(start)
	if d := next.Sub(now); d > 0 {
		return next, d
	}
	return next, 0
}

func scheduleFor(cfg config.Config) (Schedule, error) {
	if cfg.Schedule != "" {
		return ParseCron(cfg.Schedule)
	}
	if cfg.Interval <= 0 {
		return nil, errors.Mark(errors.Newf("interval must be positive, got %s", cfg.Interval), errors.ErrConfig)
	}
	return Every(cfg.Interval), nil
}
