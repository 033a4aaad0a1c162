// Package metrics exports benchmark statistics for other tools to pick up.
package metrics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/apictl/packages/benchmark"
)

// Kind names an exporter.
type Kind string

const (
	KindJSON       Kind = "json"
	KindPrometheus Kind = "prometheus"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindJSON:
		return KindJSON, nil
	case KindPrometheus, "prom":
		return KindPrometheus, nil
	}
	return "", fmt.Errorf("unknown metrics format %q", s)
}

// Summary is the flat view of a benchmark shared by every exporter.
// Durations are in milliseconds.
type Summary struct {
	Requests        []string           `json:"requests"`
	Workers         int                `json:"workers"`
	Iterations      int                `json:"iterations"`
	TotalRequests   int64              `json:"total_requests"`
	SuccessCount    int64              `json:"success_count"`
	FailureCount    int64              `json:"failure_count"`
	TotalDurationMs float64            `json:"total_duration_ms"`
	Throughput      float64            `json:"throughput"`
	MinDurationMs   float64            `json:"min_duration_ms"`
	MaxDurationMs   float64            `json:"max_duration_ms"`
	AvgDurationMs   float64            `json:"avg_duration_ms"`
	StdDevMs        float64            `json:"stddev_ms"`
	Percentiles     map[string]float64 `json:"percentiles"`
	StatusCodes     map[int]int64      `json:"status_codes"`
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// FromStats flattens s.
func FromStats(s *benchmark.Stats) *Summary {
	out := &Summary{
		Requests:        s.Requests,
		Workers:         s.Workers,
		Iterations:      s.Iterations,
		TotalRequests:   int64(s.Total()),
		SuccessCount:    int64(s.Count),
		FailureCount:    int64(s.Errors),
		TotalDurationMs: ms(s.TotalDuration),
		Throughput:      s.Throughput,
		MinDurationMs:   ms(s.Min),
		MaxDurationMs:   ms(s.Max),
		AvgDurationMs:   ms(s.Mean),
		StdDevMs:        ms(s.StdDev),
		Percentiles:     make(map[string]float64, len(s.Percentiles)),
		StatusCodes:     make(map[int]int64, len(s.StatusCodes)),
	}
	for _, p := range s.Percentiles {
		out.Percentiles[fmt.Sprintf("p%d", p.P)] = ms(p.Value)
	}
	for code, n := range s.StatusCodes {
		out.StatusCodes[int(code)] = int64(n)
	}
	return out
}

// Exporter is the interface for metrics exporters
type Exporter interface {
	// Export writes the statistics of one finished benchmark
	Export(stats *benchmark.Stats) error

	// Close releases anything the exporter holds open
	Close() error
}

// NewExporter builds the exporter for kind. Output goes to path when it is
// set and to w otherwise.
func NewExporter(kind Kind, path string, w io.Writer) (Exporter, error) {
	switch kind {
	case KindJSON:
		if path != "" {
			return NewJSONExporter(WithJSONFile(path)), nil
		}
		return NewJSONExporter(WithJSONWriter(w)), nil
	case KindPrometheus:
		if path != "" {
			return NewPrometheusExporter(WithPrometheusFile(path)), nil
		}
		return NewPrometheusExporter(WithPrometheusWriter(w)), nil
	}
	return nil, fmt.Errorf("unknown metrics format %q", kind)
}
