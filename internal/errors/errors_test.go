package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewExitError(ErrSnapshotNotFound, ExitFailure),
			want: "snapshot not found",
		},
		{
			name: "with wrapped error",
			err:  NewExitError(fmt.Errorf("restoring: %w", ErrCopy), ExitFailure),
			want: "restoring: copy failed",
		},
		{
			name: "nil underlying error",
			err:  NewExitError(nil, ExitUsage),
			want: "exit code 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", stderrors.New("boom"), ExitFailure},
		{"failure", NewFailure(ErrConfig, "check flags"), ExitFailure},
		{"usage", NewUsageError(stderrors.New("unknown flag: --bogus")), ExitUsage},
		{"wrapped usage", Wrap(NewUsageError(ErrConfig), "parsing"), ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestMark_PreservesCauseAndKind(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := Mark(Wrap(cause, "removing Backup_2024-01-01_00-00-00"), ErrDelete)

	require.Error(t, err)
	assert.True(t, Is(err, ErrDelete))
	assert.False(t, Is(err, ErrCopy))
	assert.Contains(t, err.Error(), "permission denied")
	assert.Equal(t, ErrDelete, Kind(err))
}

func TestKind_Unmarked(t *testing.T) {
	assert.Nil(t, Kind(stderrors.New("plain")))
	assert.Nil(t, Kind(nil))
}

func TestExitError_UnwrapFindsKind(t *testing.T) {
	err := NewFailure(Mark(New("no such dir"), ErrSourceMissing), "")

	assert.True(t, Is(err, ErrSourceMissing))

	var exitErr *ExitError
	require.True(t, As(fmt.Errorf("outer: %w", err), &exitErr))
	assert.Equal(t, ExitFailure, exitErr.Code)
}
