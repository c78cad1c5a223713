package logging

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for --log-file.
const (
	maxLogSizeMB  = 10
	maxLogBackups = 5
	maxLogAgeDays = 30
)

// NewRotatingFile returns a writer that appends to path and rotates it once
// it grows past maxLogSizeMB.
func NewRotatingFile(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		LocalTime:  true,
	}
}
