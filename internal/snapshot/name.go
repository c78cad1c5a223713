package snapshot

import (
	"strings"
	"time"

	"github.com/raoulx24/flameup/internal/errors"
)

const (
	// Prefix marks a directory under the backup root as a snapshot.
	Prefix = "Backup_"

	// Layout is the time layout following Prefix.
	Layout = "2006-01-02_15-04-05"
)

// MakeName derives the snapshot name for a snapshot taken at now. The name is
// computed in now's location; callers pass time.Now() for local time.
func MakeName(now time.Time) (string, error) {
	if now.IsZero() {
		return "", errors.Mark(errors.New("clock returned the zero time"), errors.ErrClock)
	}
	if y := now.Year(); y < 1 || y > 9999 {
		return "", errors.Mark(errors.Newf("year %d does not fit a four-digit name", y), errors.ErrClock)
	}
	return Prefix + now.Format(Layout), nil
}

// ParseName returns the local time encoded in name.
func ParseName(name string) (time.Time, error) {
	if !IsName(name) {
		return time.Time{}, errors.Newf("%q is not a snapshot name", name)
	}
	ts, err := time.ParseInLocation(Layout, strings.TrimPrefix(name, Prefix), time.Local)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parsing snapshot name %q", name)
	}
	return ts, nil
}

// IsName reports whether name belongs to the snapshot catalog.
func IsName(name string) bool {
	return strings.HasPrefix(name, Prefix)
}
