package knnlite

import "context"

// Close stops background saves, flushes a pending autosave and releases the
// stored records. Every later operation returns ErrClosed. Close is
// idempotent; only the first call can return an error.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.autosave.stop()

	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if e.autosave.pending() && e.store != nil {
		err = e.saveLocked(context.Background(), e.autosave.path)
	}

	if e.store != nil {
		e.store.Reset(e.store.Dim())
		e.store = nil
	}
	return err
}
