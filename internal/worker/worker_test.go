package worker

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/raoulx24/flameup/internal/catalog"
	"github.com/raoulx24/flameup/internal/config"
	"github.com/raoulx24/flameup/internal/errors"
	"github.com/raoulx24/flameup/internal/fs"
	"github.com/raoulx24/flameup/internal/logging"
)

var t0 = time.Date(2024, 3, 15, 14, 30, 5, 0, time.Local)

func newWorker(t *testing.T, now time.Time) (*Worker, *clocktesting.FakePassiveClock) {
	t.Helper()
	clk := clocktesting.NewFakePassiveClock(now)
	return New(logging.ForTest(t), fs.New(), clk), clk
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// tree returns every path below root with file contents, relative to root.
func tree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			out[rel+"/"] = ""
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[rel] = string(b)
		return nil
	})
	require.NoError(t, err)
	return out
}

func sourceTree(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "src")
	writeFile(t, filepath.Join(src, "a.txt"), "alpha")
	writeFile(t, filepath.Join(src, "docs", "b.md"), "# beta")
	writeFile(t, filepath.Join(src, "docs", "deep", "c.bin"), "\x00\x01\x02")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0o755))
	return src
}

func TestCreateRestore_RoundTrip(t *testing.T) {
	w, _ := newWorker(t, t0)
	src := sourceTree(t)
	root := filepath.Join(t.TempDir(), "CopiedFiles")
	require.NoError(t, os.MkdirAll(root, 0o755))

	dest := filepath.Join(root, "Backup_2024-03-15_14-30-05")
	require.NoError(t, w.Create(t.Context(), src, dest))
	assert.Equal(t, tree(t, src), tree(t, dest))

	target := filepath.Join(t.TempDir(), "restored", "here")
	require.NoError(t, w.Restore(t.Context(), "Backup_2024-03-15_14-30-05", root, target))
	assert.Equal(t, tree(t, src), tree(t, target))
}

func TestCreate_LeavesNoStagingDirectory(t *testing.T) {
	w, _ := newWorker(t, t0)
	root := t.TempDir()

	require.NoError(t, w.Create(t.Context(), sourceTree(t), filepath.Join(root, "Backup_2024-03-15_14-30-05")))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Backup_2024-03-15_14-30-05", entries[0].Name())
}

func TestCreate_SourceMissing(t *testing.T) {
	w, _ := newWorker(t, t0)
	root := t.TempDir()

	err := w.Create(t.Context(), filepath.Join(root, "nope"), filepath.Join(root, "Backup_x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSourceMissing))
	assert.NoDirExists(t, filepath.Join(root, "Backup_x"))
}

func TestCreate_SourceIsFile(t *testing.T) {
	w, _ := newWorker(t, t0)
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	writeFile(t, file, "x")

	err := w.Create(t.Context(), file, filepath.Join(root, "Backup_x"))
	assert.True(t, errors.Is(err, errors.ErrSourceMissing))
}

func TestCreate_RefusesExistingSnapshot(t *testing.T) {
	w, _ := newWorker(t, t0)
	root := t.TempDir()
	dest := filepath.Join(root, "Backup_2024-03-15_14-30-05")
	writeFile(t, filepath.Join(dest, "original.txt"), "keep")

	err := w.Create(t.Context(), sourceTree(t), dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSnapshotExists))
	assert.True(t, errors.Is(err, errors.ErrCopy))
	assert.Equal(t, map[string]string{"./": "", "original.txt": "keep"}, tree(t, dest))
}

func TestCreate_CancelledCleansStaging(t *testing.T) {
	w, _ := newWorker(t, t0)
	root := t.TempDir()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := w.Create(ctx, sourceTree(t), filepath.Join(root, "Backup_2024-03-15_14-30-05"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCopy))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRestore_MissingNameLeavesTargetUntouched(t *testing.T) {
	w, _ := newWorker(t, t0)
	root := t.TempDir()
	target := filepath.Join(t.TempDir(), "target")
	writeFile(t, filepath.Join(target, "mine.txt"), "precious")

	err := w.Restore(t.Context(), "Backup_2099-01-01_00-00-00", root, target)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSnapshotNotFound))
	assert.Equal(t, map[string]string{"./": "", "mine.txt": "precious"}, tree(t, target))
}

func TestRestore_ReplacesExistingTarget(t *testing.T) {
	w, _ := newWorker(t, t0)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Backup_2024-01-01_00-00-00", "new.txt"), "new")

	target := filepath.Join(t.TempDir(), "target")
	writeFile(t, filepath.Join(target, "stale.txt"), "stale")

	require.NoError(t, w.Restore(t.Context(), "Backup_2024-01-01_00-00-00", root, target))
	assert.Equal(t, map[string]string{"./": "", "new.txt": "new"}, tree(t, target))
}

func TestRestore_IntoItselfRefused(t *testing.T) {
	w, _ := newWorker(t, t0)
	root := t.TempDir()
	snap := filepath.Join(root, "Backup_2024-01-01_00-00-00")
	writeFile(t, filepath.Join(snap, "f.txt"), "f")

	err := w.Restore(t.Context(), "Backup_2024-01-01_00-00-00", root, filepath.Join(snap, "sub"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCopy))
	assert.FileExists(t, filepath.Join(snap, "f.txt"))
}

func TestRestore_OverBackupDirectoryRefused(t *testing.T) {
	w, _ := newWorker(t, t0)
	parent := t.TempDir()
	root := filepath.Join(parent, "CopiedFiles")
	writeFile(t, filepath.Join(root, "Backup_2024-01-01_00-00-00", "f.txt"), "f")
	writeFile(t, filepath.Join(root, "Backup_2024-01-02_00-00-00", "f.txt"), "f")

	for _, target := range []string{root, parent} {
		err := w.Restore(t.Context(), "Backup_2024-01-01_00-00-00", root, target)
		require.Error(t, err, target)
		assert.True(t, errors.Is(err, errors.ErrCopy), target)
	}

	snaps, err := catalog.Scan(fs.New(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, snaps.Len())
}

func TestDelete(t *testing.T) {
	w, _ := newWorker(t, t0)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Backup_2024-01-01_00-00-00", "f.txt"), "f")
	writeFile(t, filepath.Join(root, "Backup_2024-01-02_00-00-00", "f.txt"), "f")

	require.NoError(t, w.Delete(t.Context(), "Backup_2024-01-01_00-00-00", root))
	assert.NoDirExists(t, filepath.Join(root, "Backup_2024-01-01_00-00-00"))
	assert.DirExists(t, filepath.Join(root, "Backup_2024-01-02_00-00-00"))

	err := w.Delete(t.Context(), "Backup_2024-01-01_00-00-00", root)
	assert.True(t, errors.Is(err, errors.ErrSnapshotNotFound))
}

func TestLookup_RejectsNonCatalogNames(t *testing.T) {
	w, _ := newWorker(t, t0)
	parent := t.TempDir()
	root := filepath.Join(parent, "CopiedFiles")
	writeFile(t, filepath.Join(root, "Backup_2024-01-01_00-00-00", "f.txt"), "f")
	writeFile(t, filepath.Join(parent, "Backup_outside", "f.txt"), "f")
	writeFile(t, filepath.Join(root, "notes", "f.txt"), "f")

	for _, name := range []string{
		"",
		".",
		"..",
		"../Backup_outside",
		"Backup_2024-01-01_00-00-00/../../Backup_outside",
		`Backup_x\..\..`,
		"notes",
	} {
		t.Run(name, func(t *testing.T) {
			err := w.Delete(t.Context(), name, root)
			assert.True(t, errors.Is(err, errors.ErrSnapshotNotFound), "name %q", name)
		})
	}

	assert.DirExists(t, filepath.Join(parent, "Backup_outside"))
	assert.DirExists(t, filepath.Join(root, "notes"))
}

func TestLookup_IgnoresFilesNamedLikeSnapshots(t *testing.T) {
	w, _ := newWorker(t, t0)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Backup_2024-01-01_00-00-00"), "not a directory")

	err := w.Delete(t.Context(), "Backup_2024-01-01_00-00-00", root)
	assert.True(t, errors.Is(err, errors.ErrSnapshotNotFound))
	assert.FileExists(t, filepath.Join(root, "Backup_2024-01-01_00-00-00"))

	err = w.Restore(t.Context(), "Backup_2024-01-01_00-00-00", filepath.Join(root, "missing"), t.TempDir())
	assert.True(t, errors.Is(err, errors.ErrSnapshotNotFound))
}

func TestBackup_CreatesNamedSnapshot(t *testing.T) {
	w, _ := newWorker(t, t0)
	src := sourceTree(t)

	cfg := config.Defaults()
	cfg.SourcePath = src
	cfg.BackupRoot = filepath.Join(t.TempDir(), "missing", "CopiedFiles")

	name, err := w.Backup(t.Context(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "Backup_2024-03-15_14-30-05", name)
	assert.Equal(t, tree(t, src), tree(t, filepath.Join(cfg.BackupRoot, name)))
}

func TestBackup_BackupDirectoryInsideSource(t *testing.T) {
	w, clk := newWorker(t, t0)
	src := sourceTree(t)

	cfg := config.Defaults()
	cfg.SourcePath = src
	cfg.BackupRoot = filepath.Join(src, "CopiedFiles")

	first, err := w.Backup(t.Context(), cfg)
	require.NoError(t, err)
	clk.SetTime(t0.Add(time.Minute))
	second, err := w.Backup(t.Context(), cfg)
	require.NoError(t, err)

	want := tree(t, sourceTree(t))
	assert.Equal(t, want, tree(t, filepath.Join(cfg.BackupRoot, first)))
	assert.Equal(t, want, tree(t, filepath.Join(cfg.BackupRoot, second)))
}

func TestBackup_ReadsSourceFromConfigFile(t *testing.T) {
	w, _ := newWorker(t, t0)
	src := sourceTree(t)
	paths := filepath.Join(t.TempDir(), "paths.txt")
	writeFile(t, paths, "# source directory\n"+src+"\n")

	cfg := config.Defaults()
	cfg.ConfigFile = paths
	cfg.BackupRoot = t.TempDir()

	name, err := w.Backup(t.Context(), cfg)
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(cfg.BackupRoot, name))
}

func TestBackup_RetentionBound(t *testing.T) {
	w, clk := newWorker(t, t0)
	src := sourceTree(t)

	cfg := config.Defaults()
	cfg.SourcePath = src
	cfg.BackupRoot = t.TempDir()
	cfg.MaxCount = 3

	var created []string
	for i := range 6 {
		clk.SetTime(t0.Add(time.Duration(i) * time.Minute))
		name, err := w.Backup(t.Context(), cfg)
		require.NoError(t, err)
		created = append(created, name)

		cat, err := catalog.Scan(fs.New(), cfg.BackupRoot)
		require.NoError(t, err)
		assert.LessOrEqual(t, cat.Len(), cfg.MaxCount)
	}

	cat, err := catalog.Scan(fs.New(), cfg.BackupRoot)
	require.NoError(t, err)
	var kept []string
	for _, s := range cat.OldestFirst() {
		kept = append(kept, s.Name)
	}
	sort.Strings(created)
	assert.Equal(t, created[3:], kept)
}

func TestBackup_SameSecondCollision(t *testing.T) {
	w, _ := newWorker(t, t0)

	cfg := config.Defaults()
	cfg.SourcePath = sourceTree(t)
	cfg.BackupRoot = t.TempDir()

	_, err := w.Backup(t.Context(), cfg)
	require.NoError(t, err)

	_, err = w.Backup(t.Context(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSnapshotExists))
}

func TestBackup_SourceMissingSkipsRetention(t *testing.T) {
	w, _ := newWorker(t, t0)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Backup_2024-01-01_00-00-00", "f.txt"), "f")

	cfg := config.Defaults()
	cfg.SourcePath = filepath.Join(t.TempDir(), "gone")
	cfg.BackupRoot = root
	cfg.MaxCount = 1

	_, err := w.Backup(t.Context(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSourceMissing))
	assert.DirExists(t, filepath.Join(root, "Backup_2024-01-01_00-00-00"))
}

func TestBackup_ClockError(t *testing.T) {
	w, _ := newWorker(t, time.Time{})

	cfg := config.Defaults()
	cfg.SourcePath = sourceTree(t)
	cfg.BackupRoot = t.TempDir()

	_, err := w.Backup(t.Context(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrClock))
}

func TestSize(t *testing.T) {
	w, _ := newWorker(t, t0)
	src := sourceTree(t)

	size, err := w.Size(t.Context(), src)
	require.NoError(t, err)
	assert.Equal(t, int64(len("alpha")+len("# beta")+3), size)
}

func TestWithin(t *testing.T) {
	base := t.TempDir()
	assert.True(t, within(base, base))
	assert.True(t, within(filepath.Join(base, "a", "b"), base))
	assert.False(t, within(filepath.Join(base, "..", "other"), base))
	assert.False(t, within(base+"-sibling", base))
	if runtime.GOOS != "windows" {
		assert.False(t, within("/", base))
	}
}
