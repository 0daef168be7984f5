// Package resource limits the resources used by catalog snapshots.
//
// The Controller provides centralized management of three resource types:
//
//   - Memory: Bound the snapshot buffers held at once (blocking, context-aware)
//   - Concurrency: Limit the number of fields saved or loaded in parallel
//   - IO: Rate-limit snapshot IO to avoid starving foreground traffic
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(ctx, int64(len(buf))); err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(int64(len(buf)))
//
// # IO Rate Limiting
//
// Token bucket rate limiter for snapshot IO:
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 100 * 1024 * 1024, // 100MB/s
//	})
//
//	if err := rc.AcquireIO(ctx, len(data)); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
package resource
