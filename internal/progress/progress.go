// Package progress defines the stage-labeled progress callback consumed by
// the caller (UI or terminal printer) during a pipeline run.
package progress

import "sync"

// Func receives progress events. Consumers must tolerate any call
// frequency; calls are fire-and-forget and never block the pipeline.
type Func func(processed, total int, stage string)

// Tracker wraps a Func and enforces the reporting contract: within a stage
// the processed count is monotonically non-decreasing, and finishing a
// stage emits a terminal processed == total event. A nil callback is safe.
// Report may be called from concurrent workers; emission is serialized so
// the callback never observes counts out of order.
type Tracker struct {
	mu    sync.Mutex
	fn    Func
	stage string
	last  int
	total int
}

// NewTracker returns a tracker around fn (which may be nil).
func NewTracker(fn Func) *Tracker {
	return &Tracker{fn: fn}
}

// Begin starts a new stage with the given total and emits a zero event.
func (t *Tracker) Begin(stage string, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stage = stage
	t.total = total
	t.last = 0
	t.emit(0)
}

// Report records absolute progress within the current stage. Counts that
// regress or exceed the total are clamped.
func (t *Tracker) Report(processed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if processed < t.last {
		processed = t.last
	}
	if t.total >= 0 && processed > t.total {
		processed = t.total
	}
	t.last = processed
	t.emit(processed)
}

// Finish emits the terminal event for the current stage.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = t.total
	t.emit(t.total)
}

func (t *Tracker) emit(processed int) {
	if t.fn == nil {
		return
	}
	t.fn(processed, t.total, t.stage)
}
