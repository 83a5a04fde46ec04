package app

import (
	"context"
	"hash"
	"io"
	"io/fs"
	"time"
)

type FileSystem interface {
	// ReadDir lists a directory sorted by name. Entries are not symlink-resolved.
	ReadDir(path string) ([]fs.FileInfo, error)
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, perm fs.FileMode) error
	// CopyFile writes src to dst through a temporary sibling that is renamed into
	// place, so dst is never left half-written. Copied bytes are also written to tee when set.
	CopyFile(src, dst string, tee io.Writer) (int64, error)
	Chtimes(path string, atime, mtime time.Time) error
	Chmod(path string, mode fs.FileMode) error
	Remove(path string) error
}

type ExifReader interface {
	DateTimeOriginal(ctx context.Context, path string) (time.Time, error)
}

type Fingerprinter interface {
	New() hash.Hash
	Encode(h hash.Hash) string
	File(path string) (string, error)
}

// DirectorySelector asks the user for a directory; it stands in for a native picker dialog.
type DirectorySelector interface {
	SelectDirectory(ctx context.Context) (string, error)
}

// Locker guards a target directory against concurrent runs.
type Locker interface {
	TryLock(target string) (unlock func() error, err error)
}
