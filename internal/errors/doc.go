// Package errors provides error handling conventions for flameup.
//
// It defines the sentinel errors that classify every failure the backup
// lifecycle can produce, an ExitError type that carries a CLI exit code, and
// thin re-exports of github.com/cockroachdb/errors so callers only need a
// single errors import.
//
// # Error Kinds
//
// Operations attach a kind to the underlying cause with [Mark], so callers
// branch with [errors.Is] instead of inspecting messages:
//
//	if errors.Is(err, flerrors.ErrSnapshotNotFound) {
//	    // report and exit 1
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): command completed successfully
//   - ExitFailure (1): operation failed or a required argument is missing
//   - ExitUsage (2): unknown flag or malformed flag value
package errors
