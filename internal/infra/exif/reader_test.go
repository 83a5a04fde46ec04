package exif

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateTimeOriginalRejectsNonExif(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/a.jpg", []byte("not really a jpeg"), 0o644))

	_, err := Reader{Fs: mem}.DateTimeOriginal(context.Background(), "/a.jpg")
	assert.Error(t, err)
}

func TestDateTimeOriginalMissingFile(t *testing.T) {
	_, err := Reader{Fs: afero.NewMemMapFs()}.DateTimeOriginal(context.Background(), "/nope.jpg")
	assert.Error(t, err)
}

func TestDateTimeOriginalHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Reader{Fs: afero.NewMemMapFs()}.DateTimeOriginal(ctx, "/a.jpg")
	assert.ErrorIs(t, err, context.Canceled)
}
