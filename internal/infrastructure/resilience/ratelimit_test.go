package resilience

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowLimiter_ThirdCallWaits(t *testing.T) {
	const window = 300 * time.Millisecond
	l := NewSlidingWindowLimiter("test", 2, window)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		start := time.Now()
		require.NoError(t, l.Wait(ctx))
		assert.Less(t, time.Since(start), 50*time.Millisecond, "call %d should not wait", i+1)
	}

	expected := l.Delay()
	require.Greater(t, expected, time.Duration(0))
	assert.LessOrEqual(t, expected, window)

	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), expected-10*time.Millisecond)

	// calls 4 and 5 keep being admitted, two per window
	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))
}

func TestSlidingWindowLimiter_DelayFollowsOldestStamp(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	l := NewSlidingWindowLimiter("clock", 2, time.Minute)
	l.now = func() time.Time { return now }

	require.NoError(t, l.Wait(context.Background()))
	now = base.Add(10 * time.Second)
	require.NoError(t, l.Wait(context.Background()))

	now = base.Add(20 * time.Second)
	assert.Equal(t, 40*time.Second, l.Delay())

	now = base.Add(time.Minute)
	assert.Equal(t, time.Duration(0), l.Delay(), "oldest stamp left the window")
}

func TestSlidingWindowLimiter_WaitHonoursContext(t *testing.T) {
	l := NewSlidingWindowLimiter("ctx", 1, time.Hour)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSlidingWindowLimiter_ConcurrentCallersNeverExceedLimit(t *testing.T) {
	l := NewSlidingWindowLimiter("concurrent", 3, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Wait(ctx) == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, admitted)
}
