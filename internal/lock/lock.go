// Package lock keeps two flameup processes from mutating the same backup
// root at once.
package lock

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/raoulx24/flameup/internal/errors"
)

// FileName is the lock file created under the backup root. It does not look
// like a snapshot, so the catalog never lists it.
const FileName = ".flameup.lock"

// Lock is an exclusive advisory lock on a backup root.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock on root without blocking, creating root if needed.
// It fails with errors.ErrLocked when another process holds it.
func Acquire(root string) (*Lock, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating backup directory %s", root)
	}

	path := filepath.Join(root, FileName)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "locking %s", path)
	}
	if !ok {
		return nil, errors.Mark(errors.Newf("another flameup instance is using %s", root), errors.ErrLocked)
	}
	return &Lock{fl: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.fl.Path()
}

// Release drops the lock. The lock file itself is left in place.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}
