package knnlite

import (
	"context"
	"sync"
	"sync/atomic"
)

// autosaver writes the index to a fixed path after adds, off the caller's
// goroutine. At most one save runs at a time and saves are spaced by the
// resource controller's save interval.
type autosaver struct {
	e    *Engine
	path string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	dirty  atomic.Bool
	failed atomic.Bool // last save failed
}

func newAutosaver(e *Engine, path string) *autosaver {
	ctx, cancel := context.WithCancel(context.Background())
	return &autosaver{
		e:      e,
		path:   path,
		ctx:    ctx,
		cancel: cancel,
	}
}

// schedule marks the index dirty and starts a background save unless one
// is already running. The running save picks up the dirty flag.
func (a *autosaver) schedule() {
	if a == nil {
		return
	}

	a.dirty.Store(true)
	if !a.e.rc.TryAcquireBackground() {
		return
	}

	a.wg.Add(1)
	go a.run()
}

func (a *autosaver) run() {
	defer a.wg.Done()

	for {
		for a.dirty.Swap(false) {
			if err := a.e.rc.WaitSave(a.ctx); err != nil {
				// Stopped while throttled; Close flushes.
				a.dirty.Store(true)
				a.e.rc.ReleaseBackground()
				return
			}
			a.save()
		}

		a.e.rc.ReleaseBackground()

		// An add may have marked the index dirty after the loop ended but
		// before the slot was released.
		if !a.dirty.Load() || !a.e.rc.TryAcquireBackground() {
			return
		}
	}
}

func (a *autosaver) save() {
	a.e.mu.Lock()
	defer a.e.mu.Unlock()

	if a.e.closed {
		// Close flushes.
		a.dirty.Store(true)
		return
	}
	if a.e.store == nil {
		return
	}

	// Failures are logged and counted by saveLocked; the next add retries.
	err := a.e.saveLocked(a.ctx, a.path)
	a.failed.Store(err != nil)
}

// pending reports whether changes have not reached the autosave file.
func (a *autosaver) pending() bool {
	return a != nil && (a.dirty.Load() || a.failed.Load())
}

// stop cancels throttled saves and waits for the running one.
func (a *autosaver) stop() {
	if a == nil {
		return
	}
	a.cancel()
	a.wg.Wait()
}
