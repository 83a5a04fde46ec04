package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	appErrors "photocopier/internal/errors"
)

// Granularity selects how date-based directories are nested.
type Granularity string

const (
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

func ParseGranularity(value string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(value))) {
	case "", GranularityMonth:
		return GranularityMonth, nil
	case GranularityYear:
		return GranularityYear, nil
	default:
		return "", appErrors.New(appErrors.InvalidConfig, "granularity", "", "date granularity must be month or year, got "+value)
	}
}

type ScanOptions struct {
	SourceDir       string
	Extensions      []string
	IgnoreHidden    bool
	Recursive       bool
	MaxDepth        int
	ExcludePatterns []string
	UseEXIFDate     bool
}

// Validate returns a normalized copy: absolute source path, normalized and
// de-duplicated extensions. An empty extension list falls back to SupportedExtensions.
func (o ScanOptions) Validate() (ScanOptions, error) {
	return o.validate(false)
}

func (o ScanOptions) validate(requireExtensions bool) (ScanOptions, error) {
	if strings.TrimSpace(o.SourceDir) == "" {
		return ScanOptions{}, appErrors.New(appErrors.InvalidConfig, "validate", "", "source directory is required")
	}
	abs, err := filepath.Abs(o.SourceDir)
	if err != nil {
		return ScanOptions{}, appErrors.Wrap(appErrors.InvalidConfig, "validate", o.SourceDir, err)
	}
	o.SourceDir = abs

	if o.MaxDepth < 0 {
		return ScanOptions{}, appErrors.New(appErrors.InvalidConfig, "validate", "", "max depth must not be negative")
	}

	exts := normalizeExtensions(o.Extensions)
	if len(exts) == 0 {
		if requireExtensions {
			return ScanOptions{}, appErrors.New(appErrors.InvalidConfig, "validate", "", "at least one file extension is required")
		}
		exts = SupportedExtensions()
	}
	o.Extensions = exts

	patterns := make([]string, 0, len(o.ExcludePatterns))
	for _, pattern := range o.ExcludePatterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return ScanOptions{}, appErrors.New(appErrors.InvalidConfig, "validate", "", "invalid exclude pattern "+pattern)
		}
		patterns = append(patterns, pattern)
	}
	o.ExcludePatterns = patterns

	return o, nil
}

// Excludes reports whether the slash-separated relative path matches an exclude pattern.
func (o ScanOptions) Excludes(relative string) bool {
	relative = filepath.ToSlash(relative)
	for _, pattern := range o.ExcludePatterns {
		if ok, _ := doublestar.Match(pattern, relative); ok {
			return true
		}
	}
	return false
}

func normalizeExtensions(exts []string) []string {
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		norm := NormalizeExtension(ext)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out
}

// CopyOptions is the immutable configuration of one copy run.
type CopyOptions struct {
	ScanOptions

	TargetDir          string
	CreateDateBasedDir bool
	UseFileDate        bool
	DateGranularity    Granularity
	GroupByFormat      bool
	Overwrite          bool
	DryRun             bool
	CopyMetadata       bool
	GenerateHash       bool
	VerifyCopy         bool
	Flatten            bool
	Workers            int

	// RunDate is the wall-clock date used for date directories when UseFileDate is off.
	RunDate time.Time
}

// Validate returns a normalized copy of the options. now stamps RunDate when it is unset.
func (o CopyOptions) Validate(now time.Time) (CopyOptions, error) {
	scan, err := o.ScanOptions.validate(true)
	if err != nil {
		return CopyOptions{}, err
	}
	o.ScanOptions = scan

	if strings.TrimSpace(o.TargetDir) == "" {
		return CopyOptions{}, appErrors.New(appErrors.InvalidConfig, "validate", "", "target directory is required")
	}
	target, err := filepath.Abs(o.TargetDir)
	if err != nil {
		return CopyOptions{}, appErrors.Wrap(appErrors.InvalidConfig, "validate", o.TargetDir, err)
	}
	o.TargetDir = target
	if o.TargetDir == o.SourceDir {
		return CopyOptions{}, appErrors.New(appErrors.InvalidConfig, "validate", o.TargetDir, "source and target must differ")
	}
	if o.Recursive && isWithin(o.SourceDir, o.TargetDir) {
		return CopyOptions{}, appErrors.New(appErrors.InvalidConfig, "validate", o.TargetDir, "target must not be inside the source")
	}

	granularity, err := ParseGranularity(string(o.DateGranularity))
	if err != nil {
		return CopyOptions{}, err
	}
	o.DateGranularity = granularity

	if o.Workers < 0 {
		return CopyOptions{}, appErrors.New(appErrors.InvalidConfig, "validate", "", "workers must not be negative")
	}
	if o.VerifyCopy {
		o.GenerateHash = true
	}
	if o.RunDate.IsZero() {
		o.RunDate = now
	}
	return o, nil
}

// isWithin reports whether path lies below dir. Both must be absolute and clean.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
