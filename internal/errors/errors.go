package errors

import (
	"fmt"

	tozd "gitlab.com/tozd/go/errors"
)

type Kind string

const (
	InvalidConfig     Kind = "invalid_config"
	NotFound          Kind = "not_found"
	NotADirectory     Kind = "not_a_directory"
	TargetBusy        Kind = "target_busy"
	ScanSkip          Kind = "scan_skip"
	DestinationExists Kind = "destination_exists"
	ExifFailure       Kind = "exif_failure"
	IOFailure         Kind = "io_failure"
	Aborted           Kind = "aborted"
	Internal          Kind = "internal"
)

type AppError struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *AppError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Reason is the error text without the op and path prefix.
func (e *AppError) Reason() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// New builds an AppError from a plain message.
func New(kind Kind, op, path, msg string) error {
	return Wrap(kind, op, path, tozd.Base(msg))
}

// KindOf returns the kind of the first AppError in err's chain, or Internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if tozd.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err carries an AppError of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *AppError
	if !tozd.As(err, &appErr) {
		return false
	}
	return appErr.Kind == kind
}

// ReasonOf is Reason for AppErrors and Error for anything else.
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if tozd.As(err, &appErr) {
		return appErr.Reason()
	}
	return err.Error()
}

// IsConfiguration reports whether err must abort a run before any file is touched.
func IsConfiguration(err error) bool {
	switch KindOf(err) {
	case InvalidConfig, NotFound, NotADirectory, TargetBusy:
		return true
	default:
		return false
	}
}

func UserMessage(err error) string {
	var appErr *AppError
	if !tozd.As(err, &appErr) {
		return err.Error()
	}
	switch appErr.Kind {
	case InvalidConfig:
		return fmt.Sprintf("Invalid configuration: %v", appErr.Err)
	case NotFound:
		return fmt.Sprintf("Path not found: %s", appErr.Path)
	case NotADirectory:
		return fmt.Sprintf("Not a directory: %s", appErr.Path)
	case TargetBusy:
		return fmt.Sprintf("Another copy into %s is already running", appErr.Path)
	case DestinationExists:
		return fmt.Sprintf("Destination exists: %s", appErr.Path)
	case ExifFailure:
		return fmt.Sprintf("EXIF read failed: %s", appErr.Path)
	case IOFailure:
		return fmt.Sprintf("I/O error: %s: %v", appErr.Path, appErr.Err)
	case Aborted:
		return "Copy aborted"
	default:
		return fmt.Sprintf("Unexpected error: %v", appErr.Err)
	}
}
