package app

import (
	"path/filepath"

	"photocopier/internal/domain"
)

// LayoutPlanner derives destination paths. It performs no I/O: the same task
// and options always produce the same path.
type LayoutPlanner struct{}

// Plan returns target/[date]/[format]/[relative dir]/name. Collisions are not
// resolved here.
func (LayoutPlanner) Plan(task domain.FileTask, opts domain.CopyOptions) string {
	parts := []string{opts.TargetDir}

	if opts.CreateDateBasedDir {
		date := opts.RunDate
		if opts.UseFileDate {
			date = task.FileDate()
		}
		parts = append(parts, date.Format("2006"))
		if opts.DateGranularity != domain.GranularityYear {
			parts = append(parts, date.Format("01"))
		}
	}

	if opts.GroupByFormat {
		if label := domain.FormatLabel(task.Ext); label != "" {
			parts = append(parts, label)
		}
	}

	if !opts.Flatten {
		if dir := task.RelativeDir(); dir != "" {
			parts = append(parts, dir)
		}
	}

	parts = append(parts, task.Name)
	return filepath.Join(parts...)
}
