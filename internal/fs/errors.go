package fs

import (
	"syscall"

	"github.com/raoulx24/flameup/internal/errors"
)

// isTransient reports whether err is worth retrying (busy or temporarily
// unavailable files, typical on network shares and while antivirus scans run).
func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.ETIMEDOUT)
}
