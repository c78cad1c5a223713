// Package logging provides structured logging for flameup using slog.
//
// Text output goes through a TTY-aware handler that colorizes levels when
// the writer is a terminal. JSON output uses the standard slog JSON handler.
// A rotating JSON log file can be attached alongside either format, which is
// how long-running daemons keep a persistent record.
//
//	logger, closer := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//		File:   "/var/log/flameup.log",
//	})
//	defer closer.Close()
//	logger.Info("backup created", "name", name)
//
// Tests use [ForTest] so log output is attached to the test.
package logging
