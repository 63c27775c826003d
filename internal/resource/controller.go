package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for vector store memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxBackgroundSaves is the maximum number of concurrent background saves.
	// If 0, defaults to 1.
	MaxBackgroundSaves int64

	// SaveInterval is the minimum time between two background saves.
	// If 0, every request is allowed.
	SaveInterval time.Duration
}

// Controller manages store memory and background save admission.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Background saves
	bgSem       *semaphore.Weighted
	saveLimiter *rate.Limiter // nil if unthrottled
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxBackgroundSaves <= 0 {
		cfg.MaxBackgroundSaves = 1
	}

	c := &Controller{
		cfg:   cfg,
		bgSem: semaphore.NewWeighted(cfg.MaxBackgroundSaves),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.SaveInterval > 0 {
		c.saveLimiter = rate.NewLimiter(rate.Every(cfg.SaveInterval), 1)
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - the caller fails the operation instead of waiting.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return ErrMemoryLimitExceeded
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// ResizeMemory moves a reservation from oldBytes to newBytes.
// On failure the old reservation is kept.
func (c *Controller) ResizeMemory(oldBytes, newBytes int64) error {
	switch {
	case newBytes > oldBytes:
		return c.AcquireMemory(newBytes - oldBytes)
	case newBytes < oldBytes:
		c.ReleaseMemory(oldBytes - newBytes)
	}
	return nil
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// TryAcquireBackground attempts to reserve a background save slot without blocking.
func (c *Controller) TryAcquireBackground() bool {
	if c == nil {
		return true
	}
	return c.bgSem.TryAcquire(1)
}

// ReleaseBackground releases a background save slot.
func (c *Controller) ReleaseBackground() {
	if c == nil {
		return
	}
	c.bgSem.Release(1)
}

// WaitSave blocks until a background save may start or ctx is done.
func (c *Controller) WaitSave(ctx context.Context) error {
	if c == nil || c.saveLimiter == nil {
		return ctx.Err()
	}
	return c.saveLimiter.Wait(ctx)
}
