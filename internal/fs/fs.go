// Package fs defines the filesystem abstraction used by flameup.
// It provides the FS interface, the FileInfo type shared across the system,
// and an OS-backed implementation whose copy and rename operations retry
// transient errors.
package fs

import (
	"context"
	iofs "io/fs"
	"time"
)

// FileInfo is the subset of file metadata flameup relies on.
type FileInfo struct {
	Path  string
	Size  int64
	MTime time.Time
	Mode  iofs.FileMode
	Inode uint64
}

// IsDir reports whether the entry is a directory.
func (fi FileInfo) IsDir() bool {
	return fi.Mode.IsDir()
}

// FS is the set of filesystem operations the backup lifecycle needs.
// Missing paths are reported with errors that satisfy errors.Is(err, fs.ErrNotExist).
type FS interface {
	Stat(path string) (FileInfo, error)
	ReadDir(path string) ([]iofs.DirEntry, error)
	CopyFile(ctx context.Context, src, dst string) error
	CopyTree(ctx context.Context, src, dst string, skip ...string) error
	TreeSize(ctx context.Context, path string) (int64, error)
	Rename(ctx context.Context, oldPath, newPath string) error
	MkdirAll(path string) error
	RemoveAll(path string) error
}

// ErrNotExist is re-exported so callers need not import io/fs next to this package.
var ErrNotExist = iofs.ErrNotExist
