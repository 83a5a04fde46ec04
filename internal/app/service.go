package app

import (
	"context"
	"os"
	"time"

	"gitlab.com/tozd/go/errors"

	"photocopier/internal/domain"
	appErrors "photocopier/internal/errors"
	"photocopier/internal/logging"
)

// SelectionErrorPrefix marks a failed or cancelled SelectDirectory result.
const SelectionErrorPrefix = "Error:"

// Service is the engine surface consumed by UI collaborators.
type Service struct {
	FS            FileSystem
	Exif          ExifReader
	Fingerprinter Fingerprinter
	Selector      DirectorySelector
	Locker        Locker
	Logger        logging.Logger
	ExifWorkers   int
	// Now defaults to time.Now; it stamps the run date.
	Now func() time.Time
}

func (s *Service) ListSupportedExtensions() []string {
	return domain.SupportedExtensions()
}

// SelectDirectory returns an absolute path, or a string starting with
// SelectionErrorPrefix when the selection failed or was cancelled.
func (s *Service) SelectDirectory(ctx context.Context) string {
	if s.Selector == nil {
		return SelectionErrorPrefix + " no directory selector available"
	}
	dir, err := s.Selector.SelectDirectory(ctx)
	if err != nil {
		return SelectionErrorPrefix + " " + err.Error()
	}
	return dir
}

func (s *Service) scanner(logger logging.Logger, onProgress ProgressFunc) *Scanner {
	return &Scanner{
		FS:          s.FS,
		Exif:        s.Exif,
		ExifWorkers: s.ExifWorkers,
		Logger:      logger,
		OnProgress:  onProgress,
	}
}

func (s *Service) ScanImageFiles(ctx context.Context, opts domain.ScanOptions) ([]string, error) {
	report, err := s.scanner(s.Logger, nil).Scan(ctx, opts)
	if err != nil {
		return nil, err
	}
	return report.Paths(), nil
}

// CopyPhotos validates opts, scans, and copies. Configuration errors are
// returned before any file is touched; per-file failures are in the result.
func (s *Service) CopyPhotos(ctx context.Context, opts domain.CopyOptions, progress *Progress) (domain.CopyResult, error) {
	return s.copyPhotos(ctx, opts, progress, s.Logger)
}

func (s *Service) copyPhotos(ctx context.Context, opts domain.CopyOptions, progress *Progress, logger logging.Logger) (domain.CopyResult, error) {
	if progress == nil {
		progress = NewProgress()
	}
	if s.FS == nil {
		progress.Finish(domain.StateFailed)
		return domain.CopyResult{}, errors.New("service requires FS")
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	validated, err := opts.Validate(now())
	if err != nil {
		progress.Finish(domain.StateFailed)
		return domain.CopyResult{}, err
	}

	progress.SetStatus(domain.StateScanning)
	report, err := s.scanner(logger, nil).Scan(ctx, validated.ScanOptions)
	if err != nil {
		if ctx.Err() != nil {
			progress.Finish(domain.StateAborted)
			return domain.CopyResult{State: domain.StateAborted, DryRun: validated.DryRun}, appErrors.Wrap(appErrors.Aborted, "scan", validated.SourceDir, err)
		}
		progress.Finish(domain.StateFailed)
		return domain.CopyResult{}, err
	}

	if err := s.prepareTarget(validated); err != nil {
		progress.Finish(domain.StateFailed)
		return domain.CopyResult{}, err
	}

	if !validated.DryRun && s.Locker != nil {
		unlock, err := s.Locker.TryLock(validated.TargetDir)
		if err != nil {
			progress.Finish(domain.StateFailed)
			return domain.CopyResult{}, appErrors.Wrap(appErrors.TargetBusy, "lock", validated.TargetDir, err)
		}
		defer func() {
			if err := unlock(); err != nil {
				logger.Warnf("%v", err)
			}
		}()
	}

	orchestrator := &Orchestrator{
		Worker: &CopyWorker{
			FS:            s.FS,
			Fingerprinter: s.Fingerprinter,
			Logger:        logger,
		},
		Logger: logger,
	}
	result, err := orchestrator.Run(ctx, report.Tasks, validated, progress)
	result.Skipped = report.Skipped
	return result, err
}

// prepareTarget makes sure the target is a directory, creating it unless this is a dry run.
func (s *Service) prepareTarget(opts domain.CopyOptions) error {
	info, err := s.FS.Stat(opts.TargetDir)
	if err == nil {
		if !info.IsDir() {
			return appErrors.New(appErrors.NotADirectory, "target", opts.TargetDir, "not a directory")
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return appErrors.Wrap(appErrors.InvalidConfig, "target", opts.TargetDir, err)
	}
	if opts.DryRun {
		return nil
	}
	if err := s.FS.MkdirAll(opts.TargetDir, 0o755); err != nil {
		return appErrors.Wrap(appErrors.InvalidConfig, "target", opts.TargetDir, err)
	}
	return nil
}
