//go:build windows

package fs

import "os"

// inodeOf returns zero: Windows has no POSIX inode in os.FileInfo, so change
// detection falls back to size and mtime.
func inodeOf(os.FileInfo) uint64 {
	return 0
}
