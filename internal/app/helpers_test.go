package app

import (
	"context"
	"io"
	"io/fs"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"photocopier/internal/domain"
	"photocopier/internal/infra/fingerprint"
	fsimpl "photocopier/internal/infra/fs"
)

func writeFile(t *testing.T, mem afero.Fs, path, content string, modTime time.Time) {
	t.Helper()
	require.NoError(t, mem.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(mem, path, []byte(content), 0o640))
	if !modTime.IsZero() {
		require.NoError(t, mem.Chtimes(path, modTime, modTime))
	}
}

func newMemService(mem afero.Fs) *Service {
	return &Service{
		FS:            fsimpl.OSFS{Fs: mem},
		Fingerprinter: fingerprint.SHA256{Fs: mem},
		Now: func() time.Time {
			return time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
		},
	}
}

func taskFor(t *testing.T, mem afero.Fs, source, path string) domain.FileTask {
	t.Helper()
	info, err := mem.Stat(path)
	require.NoError(t, err)
	rel, err := filepath.Rel(source, path)
	require.NoError(t, err)
	return domain.NewFileTask(path, rel, info)
}

// flakyFS fails ReadDir for selected directories.
type flakyFS struct {
	fsimpl.OSFS
	readDirErr map[string]error
}

func (f flakyFS) ReadDir(path string) ([]fs.FileInfo, error) {
	if err, ok := f.readDirErr[path]; ok {
		return nil, err
	}
	return f.OSFS.ReadDir(path)
}

// hookFS runs onCopy before each copy; used to cancel or block mid-run.
type hookFS struct {
	fsimpl.OSFS
	onCopy func(src string)
}

func (h hookFS) CopyFile(src, dst string, tee io.Writer) (int64, error) {
	if h.onCopy != nil {
		h.onCopy(src)
	}
	return h.OSFS.CopyFile(src, dst, tee)
}

type fakeExif struct {
	mu    sync.Mutex
	dates map[string]time.Time
	calls []string
}

func (f *fakeExif) DateTimeOriginal(ctx context.Context, path string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	if ts, ok := f.dates[path]; ok {
		return ts, nil
	}
	return time.Time{}, fs.ErrNotExist
}

type fakeSelector struct {
	dir string
	err error
}

func (f fakeSelector) SelectDirectory(context.Context) (string, error) {
	return f.dir, f.err
}

type fakeLocker struct {
	err      error
	locked   []string
	released int
}

func (f *fakeLocker) TryLock(target string) (func() error, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.locked = append(f.locked, target)
	return func() error {
		f.released++
		return nil
	}, nil
}
