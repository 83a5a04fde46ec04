// Package lock serializes copy runs that write into the same target directory.
package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gitlab.com/tozd/go/errors"
)

// ErrLocked is returned when another process or run holds the target lock.
var ErrLocked = errors.Base("target directory is locked by another run")

// TargetLocker keeps its lock files outside the target so dry runs and
// idempotent re-runs never see them. Dir defaults to os.TempDir().
type TargetLocker struct {
	Dir string
}

// Path is the lock file used for target.
func (l TargetLocker) Path(target string) string {
	dir := l.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	sum := sha256.Sum256([]byte(filepath.Clean(target)))
	return filepath.Join(dir, "photocopier-"+hex.EncodeToString(sum[:8])+".lock")
}

func (l TargetLocker) TryLock(target string) (func() error, error) {
	fl := flock.New(l.Path(target))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.Errorf("acquire target lock: %w", err)
	}
	if !ok {
		return nil, errors.WithStack(ErrLocked)
	}
	return func() error {
		if err := fl.Unlock(); err != nil {
			return errors.Errorf("release target lock: %w", err)
		}
		return nil
	}, nil
}
