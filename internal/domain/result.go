package domain

import (
	"fmt"
	"time"

	appErrors "photocopier/internal/errors"
)

// RunState is the lifecycle state of a copy run.
type RunState string

const (
	StateIdle      RunState = "idle"
	StateScanning  RunState = "scanning"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateAborted   RunState = "aborted"
	StateFailed    RunState = "failed"
)

// Terminal reports whether no further progress can happen in this state.
func (s RunState) Terminal() bool {
	return s == StateCompleted || s == StateAborted || s == StateFailed
}

// ScanSkip records a directory entry the scanner could not read.
type ScanSkip struct {
	Path   string         `json:"path"`
	Kind   appErrors.Kind `json:"kind"`
	Reason string         `json:"reason"`
}

// CopyOutcome is the terminal result of copying one FileTask.
type CopyOutcome struct {
	Task        FileTask
	Destination string
	Success     bool
	Bytes       int64
	Hash        string
	Err         error
}

// Message is the user-facing failure line: source path and reason.
func (o CopyOutcome) Message() string {
	if o.Err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", o.Task.SourcePath, appErrors.ReasonOf(o.Err))
}

// FileFailure is the structured form of one CopyResult error entry.
type FileFailure struct {
	Path   string         `json:"path"`
	Kind   appErrors.Kind `json:"kind"`
	Reason string         `json:"reason"`
}

type CopyResult struct {
	SuccessCount int               `json:"successCount"`
	ErrorCount   int               `json:"errorCount"`
	Errors       []string          `json:"errors"`
	Failures     []FileFailure     `json:"failures"`
	TotalSize    int64             `json:"totalSize"`
	TotalCount   int               `json:"totalCount"`
	State        RunState          `json:"state"`
	DryRun       bool              `json:"dryRun"`
	Hashes       map[string]string `json:"hashes,omitempty"`
	Skipped      []ScanSkip        `json:"skipped,omitempty"`
	Duration     time.Duration     `json:"duration"`
}

// Add folds one outcome into the result.
func (r *CopyResult) Add(outcome CopyOutcome) {
	if outcome.Success {
		r.SuccessCount++
		r.TotalSize += outcome.Bytes
		if outcome.Hash != "" {
			if r.Hashes == nil {
				r.Hashes = make(map[string]string)
			}
			r.Hashes[outcome.Task.SourcePath] = outcome.Hash
		}
		return
	}
	r.ErrorCount++
	r.Errors = append(r.Errors, outcome.Message())
	r.Failures = append(r.Failures, FileFailure{
		Path:   outcome.Task.SourcePath,
		Kind:   appErrors.KindOf(outcome.Err),
		Reason: appErrors.ReasonOf(outcome.Err),
	})
}

// Processed is the number of outcomes folded in so far.
func (r CopyResult) Processed() int {
	return r.SuccessCount + r.ErrorCount
}

type ProgressSnapshot struct {
	ProcessedCount int      `json:"processedCount"`
	TotalCount     int      `json:"totalCount"`
	SuccessCount   int      `json:"successCount"`
	ErrorCount     int      `json:"errorCount"`
	CurrentFile    string   `json:"currentFile"`
	Percentage     float64  `json:"percentage"`
	Status         RunState `json:"status"`
}

// Percent computes processed/total*100, 0 when total is 0.
func Percent(processed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(processed) / float64(total) * 100
}
