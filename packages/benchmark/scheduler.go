package benchmark

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Scheduler paces iteration starts. Without a rate it never blocks.
type Scheduler struct {
	rate    float64
	rampUp  time.Duration
	limiter *rate.Limiter

	mu    sync.Mutex
	start time.Time
}

func NewScheduler(config *Config) *Scheduler {
	s := &Scheduler{
		rate:   config.Rate,
		rampUp: config.RampUp,
		start:  time.Now(),
	}
	if config.Rate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(s.GetCurrentRate(0)), 1)
	}
	return s
}

// Start restarts the ramp-up clock.
func (s *Scheduler) Start() {
	s.mu.Lock()
	s.start = time.Now()
	s.mu.Unlock()
}

// Wait blocks until the next iteration may start.
func (s *Scheduler) Wait(ctx context.Context) error {
	if s.limiter == nil {
		return ctx.Err()
	}
	if s.rampUp > 0 {
		s.mu.Lock()
		elapsed := time.Since(s.start)
		s.mu.Unlock()
		s.UpdateRate(s.GetCurrentRate(elapsed))
	}
	return s.limiter.Wait(ctx)
}

// GetCurrentRate returns the current target rate based on ramp-up
func (s *Scheduler) GetCurrentRate(elapsed time.Duration) float64 {
	if s.rampUp <= 0 || elapsed >= s.rampUp {
		return s.rate
	}

	progress := float64(elapsed) / float64(s.rampUp)
	current := s.rate * progress
	// a zero limit would block forever
	if current < 0.1 {
		current = 0.1
	}
	return current
}

// UpdateRate updates the rate limiter's rate
func (s *Scheduler) UpdateRate(newRate float64) {
	if s.limiter != nil && newRate > 0 {
		s.limiter.SetLimit(rate.Limit(newRate))
	}
}
