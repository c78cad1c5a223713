//go:build unix

package fs

import (
	"os"
	"syscall"
)

// inodeOf returns the inode number behind info, used to notice a source file
// being replaced while it is copied.
func inodeOf(info os.FileInfo) uint64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return uint64(st.Ino)
}
