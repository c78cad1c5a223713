package fs

import (
	"context"
	"os"
)

// renameWithRetry wraps os.Rename with retry logic. It is how a staged
// snapshot directory is moved into its final name.
func renameWithRetry(ctx context.Context, oldPath, newPath string) error {
	return retry(ctx, "rename "+oldPath, func() error {
		return os.Rename(oldPath, newPath)
	})
}
