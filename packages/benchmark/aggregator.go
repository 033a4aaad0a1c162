package benchmark

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Aggregator collects samples from all workers. The exact duration list
// feeds the final statistics; the HDR histogram only serves live progress.
type Aggregator struct {
	mu          sync.Mutex
	durations   []time.Duration
	statusCodes map[uint16]int
	errors      int
	histogram   *hdrhistogram.Histogram

	completed atomic.Int64
	startTime time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		statusCodes: make(map[uint16]int),
		// 1us to 60s range, 3 significant digits
		histogram: hdrhistogram.New(1, 60_000_000, 3),
		startTime: time.Now(),
	}
}

// Start resets the clock used for live rates.
func (a *Aggregator) Start() {
	a.mu.Lock()
	a.startTime = time.Now()
	a.mu.Unlock()
}

// Record adds a successful call.
func (a *Aggregator) Record(status uint16, d time.Duration) {
	latencyUs := d.Microseconds()
	if latencyUs < 1 {
		latencyUs = 1
	}
	if latencyUs > 60_000_000 {
		latencyUs = 60_000_000
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.durations = append(a.durations, d)
	a.statusCodes[status]++
	_ = a.histogram.RecordValue(latencyUs)
}

// RecordError counts a failed call without recording its latency.
func (a *Aggregator) RecordError() {
	a.mu.Lock()
	a.errors++
	a.mu.Unlock()
}

// IterationDone marks one claimed iteration as finished.
func (a *Aggregator) IterationDone() {
	a.completed.Add(1)
}

// CurrentStats returns current statistics for real-time display
type CurrentStats struct {
	Elapsed   time.Duration
	Completed int64
	Total     int64
	Errors    int64
	RPS       float64
	P50       time.Duration
	P95       time.Duration
	P99       time.Duration
}

func (a *Aggregator) Current() CurrentStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	elapsed := time.Since(a.startTime)
	total := int64(len(a.durations) + a.errors)

	rps := float64(0)
	if elapsed.Seconds() > 0 {
		rps = float64(total) / elapsed.Seconds()
	}

	return CurrentStats{
		Elapsed:   elapsed,
		Completed: a.completed.Load(),
		Total:     total,
		Errors:    int64(a.errors),
		RPS:       rps,
		P50:       time.Duration(a.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:       time.Duration(a.histogram.ValueAtQuantile(95)) * time.Microsecond,
		P99:       time.Duration(a.histogram.ValueAtQuantile(99)) * time.Microsecond,
	}
}

// Stats computes the final summary. total is the wall clock time of the run.
func (a *Aggregator) Stats(total time.Duration, buckets int) *Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ComputeStats(a.durations, buckets)
	s.Errors = a.errors
	s.Iterations = int(a.completed.Load())
	s.TotalDuration = total
	for code, n := range a.statusCodes {
		s.StatusCodes[code] = n
	}
	if total > 0 {
		s.Throughput = float64(s.Count) / total.Seconds()
	}
	return s
}
