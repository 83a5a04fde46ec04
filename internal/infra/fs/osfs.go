package fs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// OSFS adapts an afero filesystem to the app.FileSystem port. The zero value uses the OS filesystem.
type OSFS struct {
	Fs afero.Fs
}

// NewMem returns an OSFS backed by an in-memory filesystem.
func NewMem() OSFS {
	return OSFS{Fs: afero.NewMemMapFs()}
}

func (o OSFS) fs() afero.Fs {
	if o.Fs == nil {
		return afero.NewOsFs()
	}
	return o.Fs
}

func (o OSFS) ReadDir(path string) ([]fs.FileInfo, error) {
	return afero.ReadDir(o.fs(), path)
}

func (o OSFS) Stat(path string) (fs.FileInfo, error) {
	return o.fs().Stat(path)
}

func (o OSFS) Exists(path string) (bool, error) {
	_, err := o.fs().Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (o OSFS) MkdirAll(path string, perm fs.FileMode) error {
	return o.fs().MkdirAll(path, perm)
}

func (o OSFS) Chtimes(path string, atime, mtime time.Time) error {
	return o.fs().Chtimes(path, atime, mtime)
}

func (o OSFS) Chmod(path string, mode fs.FileMode) error {
	return o.fs().Chmod(path, mode)
}

func (o OSFS) Remove(path string) error {
	return o.fs().Remove(path)
}

func (o OSFS) CopyFile(src, dst string, tee io.Writer) (int64, error) {
	afs := o.fs()

	srcFile, err := afs.Open(src)
	if err != nil {
		return 0, err
	}
	defer srcFile.Close()

	tmp, err := afero.TempFile(afs, filepath.Dir(dst), "."+filepath.Base(dst)+".partial-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	discard := func() {
		_ = tmp.Close()
		_ = afs.Remove(tmpName)
	}

	var w io.Writer = tmp
	if tee != nil {
		w = io.MultiWriter(tmp, tee)
	}

	written, err := io.Copy(w, srcFile)
	if err != nil {
		discard()
		return written, err
	}
	if err := tmp.Sync(); err != nil {
		discard()
		return written, err
	}
	if err := tmp.Close(); err != nil {
		_ = afs.Remove(tmpName)
		return written, err
	}
	if err := afs.Chmod(tmpName, 0o644); err != nil {
		_ = afs.Remove(tmpName)
		return written, err
	}
	if err := afs.Rename(tmpName, dst); err != nil {
		_ = afs.Remove(tmpName)
		return written, err
	}
	return written, nil
}
