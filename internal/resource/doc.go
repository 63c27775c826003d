// Package resource governs the memory held by a vector store and the
// admission of background snapshot saves.
//
//   - Memory: track and optionally cap store bytes (non-blocking, fail-fast)
//   - Background saves: bounded concurrency (semaphore) plus a minimum
//     interval between saves (token bucket)
//
// # Memory Management
//
// AcquireMemory returns ErrMemoryLimitExceeded immediately when the cap
// would be crossed, so an append can be rejected without side effects:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 256 << 20,
//	})
//	if err := rc.AcquireMemory(n); err != nil {
//	    return err // nothing was appended
//	}
//
// # Background Saves
//
//	if rc.TryAcquireBackground() {
//	    go func() {
//	        defer rc.ReleaseBackground()
//	        if err := rc.WaitSave(ctx); err != nil {
//	            return // stopped while throttled
//	        }
//	        // write snapshot
//	    }()
//	}
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
