package app

import (
	"sync"

	"photocopier/internal/domain"
)

// Progress owns the live ProgressSnapshot of one run. The orchestrator writes
// to it; UI collaborators poll Snapshot or Subscribe.
type Progress struct {
	mu     sync.Mutex
	snap   domain.ProgressSnapshot
	subs   map[int]chan domain.ProgressSnapshot
	nextID int
	closed bool
}

func NewProgress() *Progress {
	return &Progress{
		snap: domain.ProgressSnapshot{Status: domain.StateIdle},
		subs: make(map[int]chan domain.ProgressSnapshot),
	}
}

func (p *Progress) Snapshot() domain.ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Subscribe returns a channel that always holds the latest snapshot; slow
// readers skip intermediate values. The channel is closed after the terminal
// snapshot has been delivered. cancel stops delivery early.
func (p *Progress) Subscribe() (<-chan domain.ProgressSnapshot, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan domain.ProgressSnapshot, 1)
	ch <- p.snap
	if p.closed {
		close(ch)
		return ch, func() {}
	}

	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if sub, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(sub)
		}
	}
}

// SetStatus moves a not yet running run between idle and scanning. A
// terminal status finishes the run.
func (p *Progress) SetStatus(status domain.RunState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if status.Terminal() {
		p.finish(status)
		return
	}
	p.snap.Status = status
	p.publish()
}

// Start enters the running state with the number of files to copy.
func (p *Progress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.snap = domain.ProgressSnapshot{
		TotalCount: total,
		Status:     domain.StateRunning,
	}
	p.publish()
}

// Record applies one outcome. Processed count only ever grows.
func (p *Progress) Record(outcome domain.CopyOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.snap.ProcessedCount++
	if outcome.Success {
		p.snap.SuccessCount++
	} else {
		p.snap.ErrorCount++
	}
	p.snap.CurrentFile = outcome.Task.SourcePath
	p.snap.Percentage = domain.Percent(p.snap.ProcessedCount, p.snap.TotalCount)
	p.publish()
}

// Finish publishes the terminal state and closes all subscriptions. Later calls are ignored.
func (p *Progress) Finish(status domain.RunState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.finish(status)
}

func (p *Progress) finish(status domain.RunState) {
	p.snap.Status = status
	p.snap.CurrentFile = ""
	p.publish()
	p.closed = true
	for id, ch := range p.subs {
		close(ch)
		delete(p.subs, id)
	}
}

// publish must be called with p.mu held; holding it makes this the only sender.
func (p *Progress) publish() {
	for _, ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		ch <- p.snap
	}
}
