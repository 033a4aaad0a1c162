package benchmark

import (
	"math"
	"sort"
	"time"
)

type Percentile struct {
	P     int           `json:"p"`
	Value time.Duration `json:"value"`
}

// Bucket is one linear histogram bin covering [Start, End].
type Bucket struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Count int           `json:"count"`
}

// Stats summarises a finished benchmark. Latency fields only cover
// successful calls.
type Stats struct {
	Requests      []string       `json:"requests"`
	Workers       int            `json:"workers"`
	Iterations    int            `json:"iterations"`
	Count         int            `json:"count"`
	Errors        int            `json:"errors"`
	StatusCodes   map[uint16]int `json:"status_codes"`
	TotalDuration time.Duration  `json:"total_duration"`
	Throughput    float64        `json:"throughput"`
	Mean          time.Duration  `json:"mean"`
	StdDev        time.Duration  `json:"stddev"`
	Min           time.Duration  `json:"min"`
	Max           time.Duration  `json:"max"`
	Percentiles   []Percentile   `json:"percentiles"`
	Histogram     []Bucket       `json:"histogram"`
}

// Percentile returns the cut point for p, or zero when p was not computed.
func (s *Stats) Percentile(p int) time.Duration {
	for _, pc := range s.Percentiles {
		if pc.P == p {
			return pc.Value
		}
	}
	return 0
}

// Total counts every attempted call.
func (s *Stats) Total() int {
	return s.Count + s.Errors
}

func (s *Stats) ErrorRate() float64 {
	if s.Total() == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Total())
}

// SortedStatusCodes returns the observed status codes in ascending order.
func (s *Stats) SortedStatusCodes() []uint16 {
	codes := make([]uint16, 0, len(s.StatusCodes))
	for code := range s.StatusCodes {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// ComputeStats fills the latency fields of a Stats from samples. With no
// samples every field is zero and the histogram is empty.
func ComputeStats(samples []time.Duration, buckets int) *Stats {
	s := &Stats{Count: len(samples), StatusCodes: map[uint16]int{}}
	if len(samples) == 0 {
		return s
	}

	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum float64
	for _, d := range sorted {
		sum += float64(d)
	}
	mean := sum / float64(len(sorted))

	var sq float64
	for _, d := range sorted {
		diff := float64(d) - mean
		sq += diff * diff
	}

	s.Mean = time.Duration(mean)
	s.StdDev = time.Duration(math.Sqrt(sq / float64(len(sorted))))
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]

	for _, p := range Percentiles {
		s.Percentiles = append(s.Percentiles, Percentile{P: p, Value: sorted[PercentileIndex(len(sorted), p)]})
	}
	s.Histogram = Histogram(sorted, s.Min, s.Max, buckets)
	return s
}

// PercentileIndex is the index of the p-th percentile in a sorted list of
// length n.
func PercentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// Histogram sorts values into n linear bins from min to max. Values past
// the last bin land in it. When all values are equal they share bin 0.
func Histogram(values []time.Duration, min, max time.Duration, n int) []Bucket {
	if n < 1 || len(values) == 0 {
		return nil
	}

	size := (max - min) / time.Duration(n)
	bins := make([]Bucket, n)
	for i := range bins {
		start := min + time.Duration(i)*size
		bins[i] = Bucket{Start: start, End: start + size}
	}

	for _, v := range values {
		idx := 0
		if size > 0 {
			idx = int((v - min) / size)
		}
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}
	return bins
}
