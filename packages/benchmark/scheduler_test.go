package benchmark

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerUnlimited(t *testing.T) {
	s := NewScheduler(&Config{})

	start := time.Now()
	for i := 0; i < 1000; i++ {
		require.NoError(t, s.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestSchedulerUnlimitedCancelled(t *testing.T) {
	s := NewScheduler(&Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Wait(ctx), context.Canceled)
}

func TestSchedulerRateLimit(t *testing.T) {
	s := NewScheduler(&Config{Rate: 20})

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Wait(context.Background()))
	}
	// burst of one, then 50ms apart
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestSchedulerRateLimitCancelled(t *testing.T) {
	s := NewScheduler(&Config{Rate: 0.5})
	require.NoError(t, s.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, s.Wait(ctx))
}

func TestSchedulerGetCurrentRate(t *testing.T) {
	s := NewScheduler(&Config{Rate: 100, RampUp: 10 * time.Second})

	assert.InDelta(t, 0.1, s.GetCurrentRate(0), 1e-9)
	assert.InDelta(t, 50, s.GetCurrentRate(5*time.Second), 1e-9)
	assert.InDelta(t, 100, s.GetCurrentRate(10*time.Second), 1e-9)
	assert.InDelta(t, 100, s.GetCurrentRate(time.Minute), 1e-9)

	flat := NewScheduler(&Config{Rate: 100})
	assert.InDelta(t, 100, flat.GetCurrentRate(0), 1e-9)
}
