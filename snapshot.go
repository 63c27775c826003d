package knnlite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/hupe1980/knnlite/internal/store"
	"github.com/hupe1980/knnlite/persistence"
)

// Save writes every record to path in the configured snapshot format. The
// file is replaced atomically. Saving an engine whose dimension is not
// positive fails with ErrConfiguration.
func (e *Engine) Save(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.store == nil {
		return ErrNotInitialized
	}
	return e.saveLocked(ctx, path)
}

func (e *Engine) saveLocked(ctx context.Context, path string) error {
	start := time.Now()
	v := e.store.View()

	err := persistence.SaveFile(path, persistence.Snapshot{
		Dim:     v.Dim,
		IDs:     v.IDs,
		Vectors: v.Vectors,
	}, e.opts.snapshot)
	err = translateError(err)

	e.metrics.RecordSave(v.Len(), time.Since(start), err)
	e.logger.LogSave(ctx, path, v.Len(), err)
	return err
}

// Load replaces the dimension and every record with the snapshot at path.
// It is allowed in any state of an open engine. On failure the engine is
// left exactly as it was.
func (e *Engine) Load(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	start := time.Now()
	snap, err := e.loadLocked(path)

	count, dim := 0, 0
	if snap != nil {
		count, dim = snap.Len(), snap.Dim
	}
	e.metrics.RecordLoad(count, time.Since(start), err)
	e.logger.LogLoad(ctx, path, dim, count, err)
	return err
}

func (e *Engine) loadLocked(path string) (*persistence.Snapshot, error) {
	snap, err := persistence.LoadFile(path)
	if err != nil {
		return nil, translateError(err)
	}

	target := e.store
	if target == nil {
		target = store.New(snap.Dim, e.rc)
	}
	if err := target.Replace(snap.Dim, snap.IDs, snap.Vectors); err != nil {
		return nil, translateError(err)
	}

	e.store = target
	return snap, nil
}

// LoadIfExists loads the snapshot at path if the file exists. It reports
// whether a snapshot was loaded; a missing file is not an error.
func (e *Engine) LoadIfExists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if e.isClosed() {
				return false, ErrClosed
			}
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrIO, err)
	}

	if err := e.Load(ctx, path); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
