package domain

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// FileTask is one scanned source file. It is created by the scanner and
// consumed exactly once by a copy worker.
type FileTask struct {
	SourcePath   string
	RelativePath string
	Name         string
	Ext          string
	Size         int64
	ModTime      time.Time
	Mode         fs.FileMode
	// TakenAt is the EXIF capture time; zero when it was not read or not present.
	TakenAt time.Time
}

func NewFileTask(sourcePath, relativePath string, info fs.FileInfo) FileTask {
	name := filepath.Base(sourcePath)
	return FileTask{
		SourcePath:   sourcePath,
		RelativePath: relativePath,
		Name:         name,
		Ext:          strings.ToLower(filepath.Ext(name)),
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		Mode:         info.Mode(),
	}
}

// RelativeDir is the directory part of RelativePath, "" for files at the source root.
func (t FileTask) RelativeDir() string {
	dir := filepath.Dir(t.RelativePath)
	if dir == "." {
		return ""
	}
	return dir
}

// FileDate is the date used for date-based directories when the file date is requested.
func (t FileTask) FileDate() time.Time {
	if !t.TakenAt.IsZero() {
		return t.TakenAt
	}
	return t.ModTime
}
