package session

import (
	"sync"
	"time"
)

// Autosaver is a single-slot pending-write buffer. Each Touch cancels
// and reschedules the one pending save; only the last snapshot within a
// debounce window is written (last-snapshot-wins).
type Autosaver struct {
	mu      sync.Mutex
	delay   time.Duration
	save    func()
	timer   *time.Timer
	pending bool
	stopped bool
}

func NewAutosaver(delay time.Duration, save func()) *Autosaver {
	return &Autosaver{delay: delay, save: save}
}

// Touch records a mutation: the pending save, if any, is rescheduled to
// fire after the full delay again.
func (a *Autosaver) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.pending = true
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *Autosaver) fire() {
	a.mu.Lock()
	if !a.pending || a.stopped {
		a.mu.Unlock()
		return
	}
	a.pending = false
	a.mu.Unlock()
	a.save()
}

// Flush runs the pending save immediately, if there is one.
func (a *Autosaver) Flush() {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	pending := a.pending && !a.stopped
	a.pending = false
	a.mu.Unlock()
	if pending {
		a.save()
	}
}

// Stop discards any pending save and ignores further touches.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	a.pending = false
	if a.timer != nil {
		a.timer.Stop()
	}
}
