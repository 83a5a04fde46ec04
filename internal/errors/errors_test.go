package errors

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapNilReturnsNil(t *testing.T) {
	require.NoError(t, Wrap(IOFailure, "copy", "/a", nil))
}

func TestKindOfFindsWrappedAppError(t *testing.T) {
	err := Wrap(DestinationExists, "copy", "/t/a.jpg", fs.ErrExist)
	outer := fmt.Errorf("worker: %w", err)

	assert.Equal(t, DestinationExists, KindOf(outer))
	assert.True(t, Is(outer, DestinationExists))
	assert.ErrorIs(t, outer, fs.ErrExist)
	assert.Equal(t, Internal, KindOf(fs.ErrNotExist))
}

func TestIsConfiguration(t *testing.T) {
	assert.True(t, IsConfiguration(New(InvalidConfig, "validate", "", "no extensions")))
	assert.True(t, IsConfiguration(New(NotADirectory, "scan", "/x", "not a directory")))
	assert.True(t, IsConfiguration(New(TargetBusy, "lock", "/t", "locked")))
	assert.False(t, IsConfiguration(New(IOFailure, "copy", "/x", "disk full")))
	assert.False(t, IsConfiguration(fs.ErrPermission))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Path not found: /src", UserMessage(New(NotFound, "stat", "/src", "missing")))
	assert.Equal(t, "Invalid configuration: bad granularity", UserMessage(New(InvalidConfig, "validate", "", "bad granularity")))
	assert.Equal(t, "plain", UserMessage(fmt.Errorf("plain")))
}

func TestReason(t *testing.T) {
	err := New(DestinationExists, "copy", "/t/a.jpg", "destination already exists")
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "destination already exists", appErr.Reason())
}
