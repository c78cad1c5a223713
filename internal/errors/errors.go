package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitFailure indicates an operation failure or a missing required argument.
	ExitFailure = 1

	// ExitUsage indicates an unknown flag or a malformed flag value.
	ExitUsage = 2
)

// Error kinds. Every failure surfaced by the core is marked with exactly one
// of these.
var (
	// ErrConfig indicates a bad or missing argument or configuration file.
	ErrConfig = crdb.New("configuration error")

	// ErrClock indicates the wall-clock time could not be turned into a snapshot name.
	ErrClock = crdb.New("clock error")

	// ErrSourceMissing indicates the source directory does not exist or is not a directory.
	ErrSourceMissing = crdb.New("source directory missing")

	// ErrSnapshotNotFound indicates the named snapshot does not exist under the backup root.
	ErrSnapshotNotFound = crdb.New("snapshot not found")

	// ErrSnapshotExists indicates a snapshot with the same name already exists.
	ErrSnapshotExists = crdb.New("snapshot already exists")

	// ErrCopy indicates a recursive copy failed.
	ErrCopy = crdb.New("copy failed")

	// ErrDelete indicates a recursive removal failed.
	ErrDelete = crdb.New("delete failed")

	// ErrLocked indicates another flameup process holds the backup root.
	ErrLocked = crdb.New("backup root is locked by another process")
)

// Re-exports from github.com/cockroachdb/errors.
var (
	New   = crdb.New
	Newf  = crdb.Newf
	Wrap  = crdb.Wrap
	Wrapf = crdb.Wrapf
	Mark  = crdb.Mark
	Is    = crdb.Is
	IsAny = crdb.IsAny
	As    = crdb.As
)

// Kind returns the first error kind err is marked with, or nil.
func Kind(err error) error {
	for _, k := range []error{
		ErrConfig, ErrClock, ErrSourceMissing, ErrSnapshotNotFound,
		ErrSnapshotExists, ErrCopy, ErrDelete, ErrLocked,
	} {
		if crdb.Is(err, k) {
			return k
		}
	}
	return nil
}

// ExitError wraps an error with an exit code and an optional suggestion.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code returned to the operating system.
	Code int

	// Suggestion is an optional actionable hint for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// NewFailure creates an ExitError with ExitFailure code and a suggestion.
func NewFailure(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitFailure, Suggestion: suggestion}
}

// NewUsageError creates an ExitError with ExitUsage code.
func NewUsageError(err error) *ExitError {
	return &ExitError{Err: err, Code: ExitUsage, Suggestion: "Run: flameup --help"}
}

// Error returns the message of the underlying error.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps err to a process exit code. A nil error is ExitSuccess, an
// ExitError carries its own code, anything else is ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if crdb.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
