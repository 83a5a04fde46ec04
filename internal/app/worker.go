package app

import (
	"fmt"
	"hash"
	"io"
	"path/filepath"

	"photocopier/internal/domain"
	appErrors "photocopier/internal/errors"
	"photocopier/internal/logging"
)

// CopyWorker copies a single file under the run's overwrite, metadata and hashing policy.
type CopyWorker struct {
	FS            FileSystem
	Fingerprinter Fingerprinter
	Logger        logging.Logger
}

func (w *CopyWorker) Execute(task domain.FileTask, destination string, opts domain.CopyOptions) (outcome domain.CopyOutcome) {
	outcome = domain.CopyOutcome{Task: task, Destination: destination}
	defer func() {
		if r := recover(); r != nil {
			outcome.Success = false
			outcome.Bytes = 0
			outcome.Err = appErrors.Wrap(appErrors.Internal, "copy", task.SourcePath, fmt.Errorf("panic: %v", r))
		}
	}()

	fail := func(kind appErrors.Kind, op string, err error) domain.CopyOutcome {
		outcome.Err = appErrors.Wrap(kind, op, destination, err)
		return outcome
	}

	if opts.DryRun {
		w.Logger.Verbosef("Dry run: %s -> %s", task.SourcePath, destination)
		outcome.Success = true
		outcome.Bytes = task.Size
		return outcome
	}

	if err := w.FS.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fail(appErrors.IOFailure, "mkdir", err)
	}

	if !opts.Overwrite {
		exists, err := w.FS.Exists(destination)
		if err != nil {
			return fail(appErrors.IOFailure, "stat", err)
		}
		if exists {
			outcome.Err = appErrors.New(appErrors.DestinationExists, "copy", destination, "destination already exists")
			return outcome
		}
	}

	var digest hash.Hash
	var tee io.Writer
	if opts.GenerateHash && w.Fingerprinter != nil {
		digest = w.Fingerprinter.New()
		tee = digest
	}

	written, err := w.FS.CopyFile(task.SourcePath, destination, tee)
	if err != nil {
		return fail(appErrors.IOFailure, "copy", err)
	}

	if opts.CopyMetadata {
		w.propagateMetadata(task, destination)
	}

	if digest != nil {
		outcome.Hash = w.Fingerprinter.Encode(digest)
		if opts.VerifyCopy {
			got, err := w.Fingerprinter.File(destination)
			if err != nil {
				return fail(appErrors.IOFailure, "verify", err)
			}
			if want := outcome.Hash; got != want {
				if rmErr := w.FS.Remove(destination); rmErr != nil {
					w.Logger.Warnf("Could not remove corrupt copy %s: %v", destination, rmErr)
				}
				outcome.Hash = ""
				return fail(appErrors.IOFailure, "verify", fmt.Errorf("checksum mismatch: source %s, destination %s", want, got))
			}
		}
	}

	outcome.Success = true
	outcome.Bytes = written
	return outcome
}

// propagateMetadata is best effort: content is authoritative, so failures are only logged.
func (w *CopyWorker) propagateMetadata(task domain.FileTask, destination string) {
	if err := w.FS.Chtimes(destination, task.ModTime, task.ModTime); err != nil {
		w.Logger.Warnf("Could not preserve modification time on %s: %v", destination, err)
	}
	if perm := task.Mode.Perm(); perm != 0 {
		if err := w.FS.Chmod(destination, perm); err != nil {
			w.Logger.Warnf("Could not preserve permissions on %s: %v", destination, err)
		}
	}
}
