package exif

import (
	"context"
	"errors"
	"time"

	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"
)

// Reader extracts capture dates with goexif. The zero value reads from the OS filesystem.
type Reader struct {
	Fs afero.Fs
}

var errNoDateTime = errors.New("exif datetime not found")

func (r Reader) DateTimeOriginal(ctx context.Context, path string) (time.Time, error) {
	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	default:
	}

	afs := r.Fs
	if afs == nil {
		afs = afero.NewOsFs()
	}
	file, err := afs.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer file.Close()

	x, err := goexif.Decode(file)
	if err != nil {
		return time.Time{}, err
	}

	if tag, err := x.Get(goexif.DateTimeOriginal); err == nil {
		if str, err := tag.StringVal(); err == nil {
			parsed, err := time.ParseInLocation("2006:01:02 15:04:05", str, time.Local)
			if err == nil {
				return parsed, nil
			}
		}
	}

	if parsed, err := x.DateTime(); err == nil {
		return parsed, nil
	}

	return time.Time{}, errNoDateTime
}
