package app

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gitlab.com/tozd/go/errors"

	"photocopier/internal/domain"
	appErrors "photocopier/internal/errors"
	"photocopier/internal/logging"
)

// ProgressFunc is called during scanning to report progress. total is 0 while
// the directory walk is still discovering files.
type ProgressFunc func(current, total int)

type Scanner struct {
	FS          FileSystem
	Exif        ExifReader
	ExifWorkers int
	Logger      logging.Logger
	OnProgress  ProgressFunc
}

// ScanReport is the ordered scan output plus the entries that could not be read.
type ScanReport struct {
	Tasks   []domain.FileTask
	Skipped []domain.ScanSkip
}

// Paths returns the source paths of the scanned tasks in scan order.
func (r ScanReport) Paths() []string {
	paths := make([]string, 0, len(r.Tasks))
	for _, task := range r.Tasks {
		paths = append(paths, task.SourcePath)
	}
	return paths
}

// Scan walks opts.SourceDir depth-first with children in name order.
func (s *Scanner) Scan(ctx context.Context, opts domain.ScanOptions) (ScanReport, error) {
	if s.FS == nil {
		return ScanReport{}, errors.New("scanner requires FS")
	}
	opts, err := opts.Validate()
	if err != nil {
		return ScanReport{}, err
	}

	stop := s.Logger.Measure("Scanning source directory")
	defer stop()

	info, err := s.FS.Stat(opts.SourceDir)
	if err != nil {
		if os.IsNotExist(err) {
			return ScanReport{}, appErrors.Wrap(appErrors.NotFound, "scan", opts.SourceDir, err)
		}
		return ScanReport{}, appErrors.Wrap(appErrors.InvalidConfig, "scan", opts.SourceDir, err)
	}
	if !info.IsDir() {
		return ScanReport{}, appErrors.New(appErrors.NotADirectory, "scan", opts.SourceDir, "not a directory")
	}

	w := &walker{
		scanner: s,
		opts:    opts,
		exts:    domain.NewExtensionSet(opts.Extensions),
	}
	if err := w.walk(ctx, opts.SourceDir, 0); err != nil {
		return ScanReport{}, err
	}
	s.Logger.Verbosef("Found %d candidate files in %s (%d entries skipped)", len(w.report.Tasks), opts.SourceDir, len(w.report.Skipped))

	if opts.UseEXIFDate && s.Exif != nil && len(w.report.Tasks) > 0 {
		if err := s.readCaptureDates(ctx, w.report.Tasks); err != nil {
			return ScanReport{}, err
		}
	}

	return w.report, nil
}

type walker struct {
	scanner *Scanner
	opts    domain.ScanOptions
	exts    domain.ExtensionSet
	report  ScanReport
}

func (w *walker) skip(path string, err error) {
	kind := appErrors.ScanSkip
	if errors.Is(err, fs.ErrNotExist) {
		kind = appErrors.NotFound
	}
	w.report.Skipped = append(w.report.Skipped, domain.ScanSkip{Path: path, Kind: kind, Reason: err.Error()})
	w.scanner.Logger.Warnf("Skipping %s: %v", path, err)
}

func (w *walker) walk(ctx context.Context, dir string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := w.scanner.FS.ReadDir(dir)
	if err != nil {
		if depth == 0 {
			return appErrors.Wrap(appErrors.InvalidConfig, "scan", dir, err)
		}
		w.skip(dir, err)
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		if w.opts.IgnoreHidden && domain.IsHiddenName(name) {
			continue
		}
		path := filepath.Join(dir, name)
		rel, err := filepath.Rel(w.opts.SourceDir, path)
		if err != nil {
			rel = name
		}

		info := entry
		if entry.Mode()&fs.ModeSymlink != 0 {
			resolved, statErr := w.scanner.FS.Stat(path)
			if statErr != nil {
				w.skip(path, statErr)
				continue
			}
			info = resolved
		}

		if info.IsDir() {
			if !w.opts.Recursive || depth >= w.opts.MaxDepth || w.opts.Excludes(rel) {
				continue
			}
			if err := w.walk(ctx, path, depth+1); err != nil {
				return err
			}
			continue
		}

		if !info.Mode().IsRegular() || !w.exts.Allows(name) || w.opts.Excludes(rel) {
			continue
		}
		w.report.Tasks = append(w.report.Tasks, domain.NewFileTask(path, rel, info))
		if w.scanner.OnProgress != nil {
			w.scanner.OnProgress(len(w.report.Tasks), 0)
		}
	}
	return nil
}

// readCaptureDates fills TakenAt from EXIF using a pool of workers. Files
// without a readable capture date keep their modification time.
func (s *Scanner) readCaptureDates(ctx context.Context, tasks []domain.FileTask) error {
	stop := s.Logger.Measure("Reading EXIF capture dates")
	defer stop()

	workerCount := s.ExifWorkers
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if workerCount < 1 {
		workerCount = 1
	}
	s.Logger.Verbosef("Using %d EXIF workers", workerCount)

	type result struct {
		index int
		err   error
	}

	jobs := make(chan int)
	results := make(chan result, len(tasks))

	for i := 0; i < workerCount; i++ {
		go func() {
			for index := range jobs {
				task := &tasks[index]
				if !domain.HasEXIF(task.Ext) {
					results <- result{index: index}
					continue
				}
				takenAt, err := s.Exif.DateTimeOriginal(ctx, task.SourcePath)
				if err != nil {
					results <- result{index: index, err: err}
					continue
				}
				// Each index is owned by exactly one worker.
				task.TakenAt = takenAt
				results <- result{index: index}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range tasks {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	total := len(tasks)
	for i := 0; i < total; i++ {
		var res result
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res = <-results:
		}
		if res.err != nil {
			if errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded) {
				return res.err
			}
			s.Logger.Verbosef("EXIF not found for %s, using filesystem time: %v", tasks[res.index].Name, res.err)
		}
		if s.OnProgress != nil {
			s.OnProgress(i+1, total)
		}
	}
	return nil
}
