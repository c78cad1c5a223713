package fs

import (
	"context"
	iofs "io/fs"
	"os"
	"path/filepath"
)

// OSFS is the implementation of FS backed by the local OS filesystem.
// Platform-specific details (such as inode extraction) live in build-tagged files.
type OSFS struct{}

func New() *OSFS {
	return &OSFS{}
}

func (o *OSFS) Stat(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return fromOS(path, st), nil
}

func (o *OSFS) ReadDir(path string) ([]iofs.DirEntry, error) {
	return os.ReadDir(path)
}

func (o *OSFS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (o *OSFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func (o *OSFS) CopyFile(ctx context.Context, src, dst string) error {
	return copyWithRetry(ctx, o, src, dst)
}

func (o *OSFS) CopyTree(ctx context.Context, src, dst string, skip ...string) error {
	return copyTree(ctx, o, src, dst, skip...)
}

func (o *OSFS) Rename(ctx context.Context, oldPath, newPath string) error {
	return renameWithRetry(ctx, oldPath, newPath)
}

// TreeSize sums the sizes of all regular files below path.
func (o *OSFS) TreeSize(ctx context.Context, path string) (int64, error) {
	var total int64
	err := filepath.WalkDir(path, func(_ string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}

func fromOS(path string, st os.FileInfo) FileInfo {
	return FileInfo{
		Path:  path,
		Size:  st.Size(),
		MTime: st.ModTime(),
		Mode:  st.Mode(),
		Inode: inodeOf(st),
	}
}
