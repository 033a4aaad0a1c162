package benchmark

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAggregatorRecord(t *testing.T) {
	a := NewAggregator()
	a.Start()

	a.Record(200, 10*time.Millisecond)
	a.Record(200, 20*time.Millisecond)
	a.Record(404, 30*time.Millisecond)
	a.RecordError()
	a.IterationDone()

	current := a.Current()
	assert.Equal(t, int64(4), current.Total)
	assert.Equal(t, int64(1), current.Errors)
	assert.Equal(t, int64(1), current.Completed)
	assert.InDelta(t, float64(20*time.Millisecond), float64(current.P50), float64(time.Millisecond))

	s := a.Stats(time.Second, 2)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 1, s.Iterations)
	assert.Equal(t, map[uint16]int{200: 2, 404: 1}, s.StatusCodes)
	assert.Equal(t, 20*time.Millisecond, s.Mean)
	assert.InDelta(t, 3.0, s.Throughput, 1e-9)
	assert.Equal(t, time.Second, s.TotalDuration)
}

func TestAggregatorConcurrent(t *testing.T) {
	a := NewAggregator()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				a.Record(200, time.Duration(j+1)*time.Millisecond)
				a.IterationDone()
			}
		}()
	}
	wg.Wait()

	s := a.Stats(time.Second, 10)
	assert.Equal(t, 800, s.Count)
	assert.Equal(t, 800, s.Iterations)
	assert.Equal(t, 800, s.StatusCodes[200])
}

func TestAggregatorClampsExtremes(t *testing.T) {
	a := NewAggregator()

	a.Record(200, 0)
	a.Record(200, 2*time.Minute)

	s := a.Stats(time.Second, 1)
	assert.Equal(t, 2*time.Minute, s.Max)
	assert.Zero(t, s.Min)
}

func TestAggregatorZeroDuration(t *testing.T) {
	s := NewAggregator().Stats(0, 5)
	assert.Zero(t, s.Throughput)
	assert.Empty(t, s.Histogram)
}
