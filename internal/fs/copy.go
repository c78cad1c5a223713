package fs

import (
	"context"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/raoulx24/flameup/internal/errors"
)

// copyTree recreates the tree rooted at src below dst. Directories keep their
// permission bits, regular files are copied with retry and source-change
// detection, and symlinks are recreated as links. Other file types are skipped.
// dst and the directories in skip are never descended into, so a destination
// inside src does not copy itself.
func copyTree(ctx context.Context, f FS, src, dst string, skip ...string) error {
	excluded := make(map[string]struct{}, len(skip)+1)
	for _, p := range append([]string{dst}, skip...) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		excluded[abs] = struct{}{}
	}

	return filepath.WalkDir(src, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() && path != src {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			if _, ok := excluded[abs]; ok {
				return filepath.SkipDir
			}
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm()|0o700)

		case d.Type()&iofs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			_ = os.Remove(target)
			return os.Symlink(link, target)

		case d.Type().IsRegular():
			return f.CopyFile(ctx, path, target)

		default:
			return nil
		}
	})
}

// copyWithRetry copies one file, retrying transient errors. It aborts if the
// source file changes while being copied.
func copyWithRetry(ctx context.Context, f FS, src, dst string) error {
	orig, err := f.Stat(src)
	if err != nil {
		return err
	}

	return retry(ctx, "copy "+src, func() error {
		now, err := f.Stat(src)
		if err != nil {
			return err
		}

		if sourceChanged(orig, now) {
			return errors.Newf("source %s changed during copy", src)
		}

		return copyOnce(src, dst, orig.Mode.Perm())
	})
}

func sourceChanged(orig, now FileInfo) bool {
	if now.Inode != 0 && orig.Inode != 0 && now.Inode != orig.Inode {
		return true
	}
	if now.MTime.After(orig.MTime) {
		return true
	}
	if now.Size != orig.Size {
		return true
	}
	return false
}

func copyOnce(src, dst string, perm iofs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm|0o200)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chmod(dst, perm)
}
