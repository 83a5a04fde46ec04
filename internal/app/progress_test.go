package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photocopier/internal/domain"
)

func drain(ch <-chan domain.ProgressSnapshot) []domain.ProgressSnapshot {
	var out []domain.ProgressSnapshot
	for snap := range ch {
		out = append(out, snap)
	}
	return out
}

func TestProgressLifecycle(t *testing.T) {
	p := NewProgress()
	assert.Equal(t, domain.StateIdle, p.Snapshot().Status)

	p.SetStatus(domain.StateScanning)
	p.Start(4)
	snap := p.Snapshot()
	assert.Equal(t, domain.StateRunning, snap.Status)
	assert.Equal(t, 4, snap.TotalCount)
	assert.Zero(t, snap.ProcessedCount)

	p.Record(domain.CopyOutcome{Task: domain.FileTask{SourcePath: "/src/a.jpg"}, Success: true})
	p.Record(domain.CopyOutcome{Task: domain.FileTask{SourcePath: "/src/b.jpg"}})
	snap = p.Snapshot()
	assert.Equal(t, 2, snap.ProcessedCount)
	assert.Equal(t, 1, snap.SuccessCount)
	assert.Equal(t, 1, snap.ErrorCount)
	assert.Equal(t, "/src/b.jpg", snap.CurrentFile)
	assert.InDelta(t, 50.0, snap.Percentage, 0.001)

	p.Finish(domain.StateCompleted)
	p.Record(domain.CopyOutcome{Success: true})
	p.Finish(domain.StateFailed)
	snap = p.Snapshot()
	assert.Equal(t, domain.StateCompleted, snap.Status)
	assert.Equal(t, 2, snap.ProcessedCount)
	assert.Empty(t, snap.CurrentFile)
}

func TestProgressSubscribeDeliversLatestAndCloses(t *testing.T) {
	p := NewProgress()
	ch, cancel := p.Subscribe()
	defer cancel()

	p.Start(3)
	for i := 0; i < 3; i++ {
		p.Record(domain.CopyOutcome{Success: true})
	}
	p.Finish(domain.StateCompleted)

	snaps := drain(ch)
	require.NotEmpty(t, snaps)
	last := snaps[len(snaps)-1]
	assert.Equal(t, domain.StateCompleted, last.Status)
	assert.Equal(t, 3, last.ProcessedCount)
	assert.InDelta(t, 100.0, last.Percentage, 0.001)
}

func TestProgressProcessedCountIsMonotonic(t *testing.T) {
	p := NewProgress()
	ch, cancel := p.Subscribe()
	defer cancel()

	done := make(chan []domain.ProgressSnapshot)
	go func() { done <- drain(ch) }()

	p.Start(50)
	for i := 0; i < 50; i++ {
		p.Record(domain.CopyOutcome{Success: i%2 == 0})
	}
	p.Finish(domain.StateCompleted)

	snaps := <-done
	prev := 0
	for _, snap := range snaps {
		assert.GreaterOrEqual(t, snap.ProcessedCount, prev)
		assert.LessOrEqual(t, snap.ProcessedCount, 50)
		prev = snap.ProcessedCount
	}
	assert.Equal(t, 50, prev)
}

func TestProgressSubscribeAfterFinish(t *testing.T) {
	p := NewProgress()
	p.Start(0)
	p.Finish(domain.StateAborted)

	ch, cancel := p.Subscribe()
	cancel()
	snaps := drain(ch)
	require.Len(t, snaps, 1)
	assert.Equal(t, domain.StateAborted, snaps[0].Status)
}

func TestProgressCancelSubscription(t *testing.T) {
	p := NewProgress()
	ch, cancel := p.Subscribe()
	cancel()
	cancel()

	p.Start(1)
	snaps := drain(ch)
	require.Len(t, snaps, 1)
	assert.Equal(t, domain.StateIdle, snaps[0].Status)
}

func TestProgressTerminalStatusFinishes(t *testing.T) {
	p := NewProgress()
	ch, _ := p.Subscribe()
	p.SetStatus(domain.StateScanning)
	p.SetStatus(domain.StateFailed)

	snaps := drain(ch)
	require.NotEmpty(t, snaps)
	assert.Equal(t, domain.StateFailed, snaps[len(snaps)-1].Status)
	assert.True(t, p.Snapshot().Status.Terminal())

	p.Start(3)
	assert.Equal(t, domain.StateFailed, p.Snapshot().Status)
}
