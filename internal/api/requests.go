package api

import (
	"time"

	"photocopier/internal/config"
	"photocopier/internal/domain"
)

// ScanRequest uses the option names of the desktop UI.
type ScanRequest struct {
	SourceDir       string   `json:"sourceDir" binding:"required"`
	FileExtensions  []string `json:"fileExtensions"`
	IgnoreHidden    bool     `json:"ignoreHidden"`
	Recursive       bool     `json:"recursive"`
	MaxDepth        int      `json:"maxDepth" binding:"gte=0"`
	ExcludePatterns []string `json:"excludePatterns"`
	UseEXIFDate     bool     `json:"useExifDate"`
}

type CopyRequest struct {
	ScanRequest

	TargetDir          string `json:"targetDir" binding:"required"`
	CreateDateBasedDir bool   `json:"createDateBasedDir"`
	UseFileDate        bool   `json:"useFileDate"`
	DateGranularity    string `json:"dateGranularity"`
	GroupByFormat      bool   `json:"groupByFormat"`
	Overwrite          bool   `json:"overwrite"`
	DryRun             bool   `json:"dryRun"`
	CopyMetadata       bool   `json:"copyMetadata"`
	GenerateHash       bool   `json:"generateHash"`
	VerifyCopy         bool   `json:"verifyCopy"`
	Flatten            bool   `json:"flatten"`
	Workers            int    `json:"workers" binding:"gte=0"`
}

// newScanRequest is prefilled from defaults so omitted JSON fields keep them.
func newScanRequest(defaults config.Config) ScanRequest {
	return ScanRequest{
		FileExtensions:  append([]string(nil), defaults.Extensions...),
		IgnoreHidden:    defaults.IgnoreHidden,
		Recursive:       defaults.Recursive,
		MaxDepth:        defaults.MaxDepth,
		ExcludePatterns: append([]string(nil), defaults.ExcludePatterns...),
		UseEXIFDate:     defaults.UseEXIFDate,
	}
}

func newCopyRequest(defaults config.Config) CopyRequest {
	return CopyRequest{
		ScanRequest:        newScanRequest(defaults),
		CreateDateBasedDir: defaults.CreateDateBasedDir,
		UseFileDate:        defaults.UseFileDate,
		DateGranularity:    defaults.DateGranularity,
		GroupByFormat:      defaults.GroupByFormat,
		Overwrite:          defaults.Overwrite,
		DryRun:             defaults.DryRun,
		CopyMetadata:       defaults.CopyMetadata,
		GenerateHash:       defaults.GenerateHash,
		VerifyCopy:         defaults.VerifyCopy,
		Flatten:            defaults.Flatten,
		Workers:            defaults.Workers,
	}
}

func (r ScanRequest) Options() domain.ScanOptions {
	return domain.ScanOptions{
		SourceDir:       r.SourceDir,
		Extensions:      r.FileExtensions,
		IgnoreHidden:    r.IgnoreHidden,
		Recursive:       r.Recursive,
		MaxDepth:        r.MaxDepth,
		ExcludePatterns: r.ExcludePatterns,
		UseEXIFDate:     r.UseEXIFDate,
	}
}

func (r CopyRequest) Options() domain.CopyOptions {
	return domain.CopyOptions{
		ScanOptions:        r.ScanRequest.Options(),
		TargetDir:          r.TargetDir,
		CreateDateBasedDir: r.CreateDateBasedDir,
		UseFileDate:        r.UseFileDate,
		DateGranularity:    domain.Granularity(r.DateGranularity),
		GroupByFormat:      r.GroupByFormat,
		Overwrite:          r.Overwrite,
		DryRun:             r.DryRun,
		CopyMetadata:       r.CopyMetadata,
		GenerateHash:       r.GenerateHash,
		VerifyCopy:         r.VerifyCopy,
		Flatten:            r.Flatten,
		Workers:            r.Workers,
	}
}

// RunStatus is the body of GET /api/copy/:id.
type RunStatus struct {
	ID         string                  `json:"id"`
	StartedAt  time.Time               `json:"startedAt"`
	FinishedAt *time.Time              `json:"finishedAt,omitempty"`
	Progress   domain.ProgressSnapshot `json:"progress"`
	Done       bool                    `json:"done"`
	Result     *domain.CopyResult      `json:"result,omitempty"`
	Error      string                  `json:"error,omitempty"`
	ErrorKind  string                  `json:"errorKind,omitempty"`
}
