// Package snapshot defines how snapshots are named and the value type that
// identifies one on disk.
//
// A snapshot name is "Backup_" followed by the local creation time at second
// resolution, zero-padded and fixed width, so plain string comparison of two
// names orders them chronologically. Two snapshots created within the same
// second get the same name; creating the second one fails instead of
// merging into the first.
package snapshot

import (
	"path/filepath"
	"time"
)

// Snapshot is one timestamped, immutable copy of the source directory.
type Snapshot struct {
	Name string
	Path string
	Time time.Time
}

// New returns the snapshot called name under root. Time is the instant
// encoded in the name, or zero when the name cannot be parsed.
func New(root, name string) Snapshot {
	ts, _ := ParseName(name)
	return Snapshot{
		Name: name,
		Path: filepath.Join(root, name),
		Time: ts,
	}
}
