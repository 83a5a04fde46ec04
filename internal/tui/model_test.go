package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photocopier/internal/domain"
	appErrors "photocopier/internal/errors"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestModelFollowsSnapshots(t *testing.T) {
	ch := make(chan domain.ProgressSnapshot, 1)
	m := NewModel(Config{SourceDir: "/src", TargetDir: "/target", Snapshots: ch})
	assert.Equal(t, PhaseScanning, m.Phase)

	m, cmd := update(t, m, SnapshotMsg{Snapshot: domain.ProgressSnapshot{Status: domain.StateScanning}})
	assert.Equal(t, PhaseScanning, m.Phase)
	assert.NotNil(t, cmd, "keeps listening")

	m, _ = update(t, m, SnapshotMsg{Snapshot: domain.ProgressSnapshot{
		Status:         domain.StateRunning,
		ProcessedCount: 1,
		TotalCount:     4,
		ErrorCount:     1,
		Percentage:     25,
		CurrentFile:    "/src/a.jpg",
	}})
	assert.Equal(t, PhaseCopying, m.Phase)

	view := m.View()
	assert.Contains(t, view, "1/4 files")
	assert.Contains(t, view, "(25%)")
	assert.Contains(t, view, "1 failed")
	assert.Contains(t, view, "/src/a.jpg")
}

func TestModelListenReadsChannel(t *testing.T) {
	ch := make(chan domain.ProgressSnapshot, 1)
	ch <- domain.ProgressSnapshot{Status: domain.StateRunning, TotalCount: 2}
	msg := listen(ch)()
	snap, ok := msg.(SnapshotMsg)
	require.True(t, ok)
	assert.Equal(t, 2, snap.Snapshot.TotalCount)

	close(ch)
	_, ok = listen(ch)().(subscriptionClosedMsg)
	assert.True(t, ok)
	assert.Nil(t, listen(nil))
}

func TestModelWaitsForResultWhenSubscriptionCloses(t *testing.T) {
	want := domain.CopyResult{SuccessCount: 2, TotalCount: 2, TotalSize: 1024, State: domain.StateCompleted}
	m := NewModel(Config{Wait: func() (domain.CopyResult, error) { return want, nil }})

	m, cmd := update(t, m, subscriptionClosedMsg{})
	require.NotNil(t, cmd)
	done, ok := cmd().(DoneMsg)
	require.True(t, ok)

	m, _ = update(t, m, done)
	assert.Equal(t, PhaseDone, m.Phase)
	view := m.View()
	assert.Contains(t, view, "Copy completed successfully!")
	assert.Contains(t, view, "2 files")
	assert.Contains(t, view, "1.0 kB")
}

func TestModelCtrlCCancelsThenQuits(t *testing.T) {
	cancelled := 0
	m := NewModel(Config{Cancel: func() { cancelled++ }})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd)
	assert.True(t, m.Cancelling)
	assert.False(t, m.Quitting)
	assert.Equal(t, 1, cancelled)
	assert.Contains(t, m.View(), "ctrl+c again")

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, m.Quitting)
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, cancelled)
	assert.Empty(t, m.View())
}

func TestModelAbortedRunShowsSummary(t *testing.T) {
	m := NewModel(Config{})
	m, _ = update(t, m, DoneMsg{
		Result: domain.CopyResult{SuccessCount: 1, TotalCount: 3, State: domain.StateAborted},
		Err:    appErrors.New(appErrors.Aborted, "copy", "/target", "context canceled"),
	})
	assert.Equal(t, PhaseDone, m.Phase)
	view := m.View()
	assert.Contains(t, view, "Copy Aborted")
	assert.Contains(t, view, "Stopped after 1 of 3 files")
}

func TestModelConfigurationErrorShowsMessage(t *testing.T) {
	m := NewModel(Config{})
	m, _ = update(t, m, DoneMsg{Err: appErrors.New(appErrors.NotFound, "scan", "/missing", "no such directory")})
	assert.Equal(t, PhaseError, m.Phase)
	assert.Contains(t, m.View(), "Path not found: /missing")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
}

func TestFormatFailuresTruncates(t *testing.T) {
	failures := make([]domain.FileFailure, 7)
	for i := range failures {
		failures[i] = domain.FileFailure{Path: "/src/x.jpg", Reason: "boom"}
	}
	lines := formatFailures(failures, 4)
	require.Len(t, lines, 5)
	assert.Contains(t, lines[2], "3 more failures")
	assert.Empty(t, formatFailures(nil, 4))
}
