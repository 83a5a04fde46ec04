// Package fingerprint computes content digests of copied files.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"

	"github.com/spf13/afero"
)

// Algorithm names the digest so results stay comparable across runs.
const Algorithm = "sha256"

// SHA256 fingerprints files as lower-case hex SHA-256. The zero value reads from the OS filesystem.
type SHA256 struct {
	Fs afero.Fs
}

func (SHA256) New() hash.Hash {
	return sha256.New()
}

func (SHA256) Encode(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

func (s SHA256) File(path string) (string, error) {
	afs := s.Fs
	if afs == nil {
		afs = afero.NewOsFs()
	}
	f, err := afs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return s.Reader(f)
}

func (s SHA256) Reader(r io.Reader) (string, error) {
	h := s.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return s.Encode(h), nil
}
