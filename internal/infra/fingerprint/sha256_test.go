package fingerprint

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloDigest = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func TestReader(t *testing.T) {
	sum, err := SHA256{}.Reader(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, helloDigest, sum)
}

func TestFileMatchesStreamingDigest(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/a.jpg", []byte("hello"), 0o644))

	fp := SHA256{Fs: mem}
	sum, err := fp.File("/a.jpg")
	require.NoError(t, err)

	h := fp.New()
	_, _ = h.Write([]byte("hel"))
	_, _ = h.Write([]byte("lo"))
	assert.Equal(t, sum, fp.Encode(h))
	assert.Equal(t, helloDigest, sum)
}

func TestFileMissing(t *testing.T) {
	_, err := SHA256{Fs: afero.NewMemMapFs()}.File("/missing")
	assert.Error(t, err)
}
