package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
)

// Format specifies the output format for log messages.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f == FormatText || f == FormatJSON
}

// Config holds the configuration for creating a new logger.
type Config struct {
	// Level sets the minimum log level.
	Level slog.Level
	// Format specifies the output format (text or JSON).
	Format Format
	// Output is where log messages are written. Defaults to os.Stderr if nil.
	Output io.Writer
	// File, when set, additionally receives JSON records through a rotating writer.
	File string
}

// New creates a logger with the given configuration.
// If cfg.Output is nil, it defaults to os.Stderr.
// If cfg.Format is not recognized, it defaults to FormatText.
// The returned closer releases the log file, if any; it is a no-op otherwise.
func New(cfg Config) (*slog.Logger, io.Closer) {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}

	var primary slog.Handler
	switch cfg.Format {
	case FormatJSON:
		primary = slog.NewJSONHandler(output, opts)
	default:
		primary = NewHandler(output, opts)
	}

	if cfg.File == "" {
		return slog.New(primary), nopCloser{}
	}

	rotating := NewRotatingFile(cfg.File)
	file := slog.NewJSONHandler(rotating, opts)
	return slog.New(NewMultiHandler(primary, file)), rotating
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// LevelFromVerbose maps the -v/--verbose flag to a log level.
func LevelFromVerbose(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// NewDiscard creates a logger that discards all output.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}

// testWriter adapts testing.T to io.Writer.
type testWriter struct {
	t testing.TB
}

func (w *testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	msg := string(p)
	if len(msg) > 0 && msg[len(msg)-1] == '\n' {
		msg = msg[:len(msg)-1]
	}
	w.t.Log(msg)
	return len(p), nil
}

// ForTest creates a Debug-level logger that writes to the test's log output.
func ForTest(t testing.TB) *slog.Logger {
	t.Helper()
	logger, _ := New(Config{
		Level:  slog.LevelDebug,
		Format: FormatText,
		Output: &testWriter{t: t},
	})
	return logger
}
