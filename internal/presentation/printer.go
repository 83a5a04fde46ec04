package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"photocopier/internal/domain"
)

// maxFailureRows bounds the failure table unless the printer is verbose.
const maxFailureRows = 20

type Printer struct {
	Writer  io.Writer
	Verbose bool
}

func (p Printer) PrintExtensions(exts []string) {
	for _, ext := range exts {
		fmt.Fprintf(p.Writer, "%-6s %-5s %s\n", ext, domain.FormatLabel(ext), domain.FamilyOf(ext))
	}
}

func (p Printer) PrintScan(source string, paths []string) {
	fmt.Fprintln(p.Writer, "Found:")
	fmt.Fprintln(p.Writer)

	lines := make([]string, 0, len(paths))
	for _, path := range paths {
		if rel, err := filepath.Rel(source, path); err == nil {
			path = rel
		}
		lines = append(lines, path)
	}
	if !p.Verbose {
		lines = truncateLines(lines)
	}
	for _, line := range lines {
		fmt.Fprintln(p.Writer, line)
	}

	fmt.Fprintln(p.Writer)
	fmt.Fprintf(p.Writer, "Found %d image files in %s.\n", len(paths), source)
}

// PrintResult writes the end-of-run summary.
func (p Printer) PrintResult(result domain.CopyResult) {
	verb := "Copied"
	if result.DryRun {
		verb = "Would copy"
	}
	fmt.Fprintf(p.Writer, "%s %s %d of %d files (%s) in %s.\n",
		statusMark(result), verb, result.SuccessCount, result.TotalCount,
		humanize.Bytes(uint64(max(result.TotalSize, 0))), formatDuration(result.Duration))

	switch result.State {
	case domain.StateAborted:
		fmt.Fprintln(p.Writer, color.YellowString("Aborted after %d of %d files.", result.Processed(), result.TotalCount))
	case domain.StateFailed:
		fmt.Fprintln(p.Writer, color.RedString("Run failed before copying."))
	}

	if result.ErrorCount > 0 {
		fmt.Fprintln(p.Writer, color.RedString("%d files failed:", result.ErrorCount))
		fmt.Fprintln(p.Writer, p.failureTable(result.Failures))
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintln(p.Writer, color.YellowString("Skipped %d unreadable entries while scanning.", len(result.Skipped)))
		if p.Verbose {
			for _, skip := range result.Skipped {
				fmt.Fprintf(p.Writer, "- %s [%s]: %s\n", skip.Path, skip.Kind, skip.Reason)
			}
		}
	}

	if p.Verbose && len(result.Hashes) > 0 {
		fmt.Fprintln(p.Writer, hashTable(result.Hashes))
	}
}

func (p Printer) PrintSnapshot(snap domain.ProgressSnapshot) {
	fmt.Fprintf(p.Writer, "%s %d/%d (%.0f%%) %s\n", snap.Status, snap.ProcessedCount, snap.TotalCount, snap.Percentage, snap.CurrentFile)
}

// PrintJSON writes v as indented JSON for scripting.
func (p Printer) PrintJSON(v any) error {
	enc := json.NewEncoder(p.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p Printer) failureTable(failures []domain.FileFailure) string {
	rows := make([][]string, 0, len(failures))
	for i, failure := range failures {
		if !p.Verbose && i == maxFailureRows {
			rows = append(rows, []string{fmt.Sprintf("... %d more", len(failures)-maxFailureRows), "", ""})
			break
		}
		rows = append(rows, []string{failure.Path, string(failure.Kind), failure.Reason})
	}
	return renderTable([]string{"File", "Kind", "Reason"}, rows)
}

func hashTable(hashes map[string]string) string {
	paths := make([]string, 0, len(hashes))
	for path := range hashes {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	rows := make([][]string, 0, len(paths))
	for _, path := range paths {
		rows = append(rows, []string{path, hashes[path]})
	}
	return renderTable([]string{"File", "SHA-256"}, rows)
}

func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(headers))
	for i := range headers {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func statusMark(result domain.CopyResult) string {
	switch {
	case result.State == domain.StateAborted:
		return color.YellowString("!")
	case result.ErrorCount > 0 || result.State == domain.StateFailed:
		return color.RedString("✗")
	default:
		return color.GreenString("✓")
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

// truncateLines keeps the first and last two lines of long listings.
func truncateLines(lines []string) []string {
	if len(lines) <= 4 {
		return lines
	}
	out := make([]string, 0, 5)
	out = append(out, lines[:2]...)
	out = append(out, "...")
	return append(out, lines[len(lines)-2:]...)
}

func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
