package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})
	ctx := context.Background()

	require.NoError(t, c.AcquireMemory(ctx, 50))
	require.NoError(t, c.AcquireMemory(ctx, 40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Acquire 20 blocks until the deadline
	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := c.AcquireMemory(tctx, 20)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Release 50
	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	// Now Acquire 20 should succeed
	require.NoError(t, c.AcquireMemory(ctx, 20))
	assert.Equal(t, int64(60), c.MemoryUsage())

	// Larger than the whole limit
	assert.ErrorIs(t, c.AcquireMemory(ctx, 101), ErrMemoryLimitExceeded)
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 0})

	require.NoError(t, c.AcquireMemory(context.Background(), 1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(context.Background(), -1))
	c.ReleaseMemory(-1)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Snapshots(t *testing.T) {
	c := NewController(Config{MaxConcurrentSnapshots: 2})

	require.NoError(t, c.AcquireSnapshot(t.Context()))
	require.NoError(t, c.AcquireSnapshot(t.Context()))

	assert.False(t, c.TryAcquireSnapshot())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireSnapshot(ctx))

	c.ReleaseSnapshot()
	assert.True(t, c.TryAcquireSnapshot())
}

func TestController_IO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1000}) // 1KB/s
	ctx := context.Background()

	// Within the initial burst
	require.NoError(t, c.AcquireIO(ctx, 100))

	// Larger than the burst is split instead of failing
	tctx, cancel := context.WithTimeout(ctx, time.Millisecond)
	defer cancel()
	err := c.AcquireIO(tctx, 5000)
	assert.Error(t, err)

	// Unlimited
	c2 := NewController(Config{})
	require.NoError(t, c2.AcquireIO(ctx, 1000000))
}

func TestController_NilChecks(t *testing.T) {
	var c *Controller
	ctx := context.Background()

	assert.NoError(t, c.AcquireMemory(ctx, 10))
	c.ReleaseMemory(10)
	assert.Equal(t, int64(0), c.MemoryUsage())
	assert.Equal(t, int64(0), c.MemoryLimit())
	assert.NoError(t, c.AcquireSnapshot(ctx))
	assert.True(t, c.TryAcquireSnapshot())
	c.ReleaseSnapshot()
	assert.NoError(t, c.AcquireIO(ctx, 10))
}
