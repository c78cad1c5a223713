package lock

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/flameup/internal/errors"
	"github.com/raoulx24/flameup/internal/snapshot"
)

func TestAcquire_Exclusive(t *testing.T) {
	root := filepath.Join(t.TempDir(), "CopiedFiles")

	first, err := Acquire(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), first.Path())
	assert.FileExists(t, first.Path())

	_, err = Acquire(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrLocked))

	require.NoError(t, first.Release())

	again, err := Acquire(root)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestFileName_NotASnapshot(t *testing.T) {
	assert.False(t, snapshot.IsName(FileName))
}
