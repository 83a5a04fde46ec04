package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"photocopier/internal/domain"
	appErrors "photocopier/internal/errors"
)

// Phase represents the current state of the TUI
type Phase int

const (
	PhaseScanning Phase = iota
	PhaseCopying
	PhaseDone
	PhaseError
)

// Messages for the TUI
type (
	SnapshotMsg struct {
		Snapshot domain.ProgressSnapshot
	}
	DoneMsg struct {
		Result domain.CopyResult
		Err    error
	}
	subscriptionClosedMsg struct{}
	tickMsg               time.Time
)

// Config for the TUI
type Config struct {
	SourceDir string
	TargetDir string
	DryRun    bool
	Verbose   bool
	// Snapshots is a progress subscription; it is closed when the run ends.
	Snapshots <-chan domain.ProgressSnapshot
	// Wait returns the run's result once Snapshots is closed.
	Wait func() (domain.CopyResult, error)
	// Cancel asks the run to stop after in-flight files.
	Cancel func()
}

// Model is the main TUI model
type Model struct {
	config     Config
	Phase      Phase
	Snapshot   domain.ProgressSnapshot
	Result     domain.CopyResult
	Err        error
	Cancelling bool
	Quitting   bool
	spinner    spinner.Model
	progress   progress.Model
	width      int
	height     int
}

// NewModel creates a new TUI model
func NewModel(cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	return Model{
		config:   cfg,
		Phase:    PhaseScanning,
		spinner:  s,
		progress: p,
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd(), listen(m.config.Snapshots))
}

// listen delivers the next snapshot, or subscriptionClosedMsg once the run is over.
func listen(ch <-chan domain.ProgressSnapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return subscriptionClosedMsg{}
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

func (m Model) waitResult() tea.Cmd {
	wait := m.config.Wait
	return func() tea.Msg {
		if wait == nil {
			return DoneMsg{}
		}
		result, err := wait()
		return DoneMsg{Result: result, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(msg.Width-20, 60)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.running() && !m.Cancelling && m.config.Cancel != nil {
				m.Cancelling = true
				m.config.Cancel()
				return m, nil
			}
			m.Quitting = true
			return m, tea.Quit
		case "enter":
			if m.Phase == PhaseDone || m.Phase == PhaseError {
				return m, tea.Quit
			}
		}

	case SnapshotMsg:
		m.Snapshot = msg.Snapshot
		if msg.Snapshot.Status == domain.StateRunning {
			m.Phase = PhaseCopying
		}
		return m, listen(m.config.Snapshots)

	case subscriptionClosedMsg:
		return m, m.waitResult()

	case DoneMsg:
		m.Result = msg.Result
		m.Err = msg.Err
		switch {
		case msg.Err == nil, appErrors.Is(msg.Err, appErrors.Aborted):
			m.Phase = PhaseDone
		default:
			m.Phase = PhaseError
		}
		return m, nil

	case spinner.TickMsg:
		if m.running() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case tickMsg:
		if m.Phase == PhaseCopying {
			return m, tea.Batch(m.progress.SetPercent(m.Snapshot.Percentage/100), tickCmd())
		}
		if m.running() {
			return m, tickCmd()
		}
	}

	return m, nil
}

func (m Model) running() bool {
	return m.Phase == PhaseScanning || m.Phase == PhaseCopying
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.Phase {
	case PhaseScanning:
		b.WriteString(m.renderScanning())
	case PhaseCopying:
		b.WriteString(m.renderCopying())
	case PhaseDone:
		b.WriteString(m.renderSummary())
	case PhaseError:
		b.WriteString(m.renderError())
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderHeader() string {
	title := headerStyle.Render(iconCamera + " Photocopier")
	subtitle := taglineStyle.Render("Copy and organize your photos")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		subtitle,
		"",
		faintStyle.Render(fmt.Sprintf("%s Source: %s", iconFolder, shortenPath(m.config.SourceDir))),
		faintStyle.Render(fmt.Sprintf("%s Target: %s", iconFolder, shortenPath(m.config.TargetDir))),
	)
}

func (m Model) renderScanning() string {
	return fmt.Sprintf("%s Scanning photos...", m.spinner.View())
}

func (m Model) renderCopying() string {
	var b strings.Builder

	title := "Copying Files"
	if m.config.DryRun {
		title = "Planning Copy"
	}
	b.WriteString(phaseStyle.Render(title))
	b.WriteString("\n\n")

	snap := m.Snapshot
	status := "Copying..."
	if m.Cancelling {
		status = "Cancelling, waiting for files in progress..."
	}
	b.WriteString(fmt.Sprintf("  %s %s\n\n", m.spinner.View(), status))
	b.WriteString(fmt.Sprintf("  %s\n", m.progress.ViewAs(snap.Percentage/100)))

	b.WriteString(fmt.Sprintf("  %s %s\n",
		counterStyle.Render(fmt.Sprintf("%d/%d files", snap.ProcessedCount, snap.TotalCount)),
		faintStyle.Render(fmt.Sprintf("(%.0f%%)", snap.Percentage)),
	))
	if snap.ErrorCount > 0 {
		b.WriteString(fmt.Sprintf("  %s\n", cautionStyle.Render(fmt.Sprintf("%s %d failed", iconWarning, snap.ErrorCount))))
	}

	if snap.CurrentFile != "" {
		b.WriteString(fmt.Sprintf("\n  %s %s\n",
			iconArrow,
			pathStyle.Render(shortenPath(snap.CurrentFile)),
		))
	}

	return b.String()
}

func (m Model) renderSummary() string {
	var b strings.Builder
	result := m.Result

	heading := "Copy Complete"
	if result.State == domain.StateAborted {
		heading = "Copy Aborted"
	}
	b.WriteString(phaseStyle.Render(heading))
	b.WriteString("\n\n")

	switch {
	case result.State == domain.StateAborted:
		b.WriteString(fmt.Sprintf("  %s %s\n\n", cautionStyle.Render(iconWarning),
			cautionStyle.Render(fmt.Sprintf("Stopped after %d of %d files", result.Processed(), result.TotalCount))))
	case result.ErrorCount > 0:
		b.WriteString(fmt.Sprintf("  %s %s\n\n", cautionStyle.Render(iconWarning),
			cautionStyle.Render("Copy finished with errors")))
	default:
		b.WriteString(fmt.Sprintf("  %s %s\n\n", okStyle.Render(iconOK),
			okStyle.Render("Copy completed successfully!")))
	}

	copiedLabel := "Copied:"
	if result.DryRun {
		copiedLabel = "Would copy:"
	}
	b.WriteString(fmt.Sprintf("  %s  %s\n", labelStyle.Render(copiedLabel), valueStyle.Render(fmt.Sprintf("%d files", result.SuccessCount))))
	b.WriteString(fmt.Sprintf("  %s  %s\n", labelStyle.Render("Size:"), valueStyle.Render(humanize.Bytes(uint64(max(result.TotalSize, 0))))))
	if result.ErrorCount > 0 {
		b.WriteString(fmt.Sprintf("  %s  %s\n", labelStyle.Render("Failed:"), failStyle.Render(fmt.Sprintf("%s %d", iconFail, result.ErrorCount))))
		for _, line := range formatFailures(result.Failures, 4) {
			b.WriteString("    ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	if len(result.Skipped) > 0 {
		b.WriteString(fmt.Sprintf("  %s  %s\n", labelStyle.Render("Unreadable:"), faintStyle.Render(fmt.Sprintf("%s %d skipped while scanning", iconSkipped, len(result.Skipped)))))
	}

	if result.DryRun {
		b.WriteString("\n")
		b.WriteString(noticeBoxStyle.Render("🔍 Dry Run - No files were copied"))
	}

	return b.String()
}

func (m Model) renderError() string {
	icon := failStyle.Render(iconFail)
	msg := "unknown error"
	if m.Err != nil {
		msg = appErrors.UserMessage(m.Err)
	}

	return errorBoxStyle.Render(fmt.Sprintf("%s %s", icon, failStyle.Render("Error: "+msg)))
}

func (m Model) renderHelp() string {
	var help string
	switch m.Phase {
	case PhaseScanning, PhaseCopying:
		if m.Cancelling {
			help = "Press ctrl+c again to quit immediately"
		} else {
			help = "Press ctrl+c or q to cancel"
		}
	case PhaseDone:
		help = "Press Enter to exit"
	case PhaseError:
		help = "Press Enter or q to exit"
	}
	return keysStyle.Render(help)
}

// formatFailures lists the first and last failures when there are more than maxItems.
func formatFailures(failures []domain.FileFailure, maxItems int) []string {
	if len(failures) == 0 {
		return []string{}
	}

	lines := make([]string, 0, min(len(failures), maxItems+1))
	if len(failures) > maxItems {
		half := maxItems / 2
		for i := 0; i < half; i++ {
			lines = append(lines, formatFailure(failures[i]))
		}
		lines = append(lines, faintStyle.Render(fmt.Sprintf("... %d more failures ...", len(failures)-maxItems)))
		for i := len(failures) - half; i < len(failures); i++ {
			lines = append(lines, formatFailure(failures[i]))
		}
		return lines
	}
	for _, failure := range failures {
		lines = append(lines, formatFailure(failure))
	}
	return lines
}

func formatFailure(failure domain.FileFailure) string {
	name := pathStyle.Render(shortenPath(failure.Path))
	reason := faintStyle.Render(failure.Reason)
	return fmt.Sprintf("%s %s  %s", failStyle.Render(iconFail), name, reason)
}

// shortenPath replaces the home directory prefix with ~ for display
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
