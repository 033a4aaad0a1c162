// Package benchmark repeatedly runs a fixed list of requests from several
// workers and summarises the latencies.
//
// Workers claim iterations from a shared counter until the configured total
// is reached, so every iteration runs exactly once. Each iteration renders
// and sends the request list in order with its own variables and responses,
// letting later requests reference earlier ones. Failed calls are logged and
// left out of the statistics.
package benchmark

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for a benchmark
type Config struct {
	Requests   []string
	Workers    int
	Iterations int
	Buckets    int           // latency histogram bins
	Rate       float64       // iterations per second, 0 for unlimited
	RampUp     time.Duration // linear ramp of Rate from zero
	Thresholds Thresholds
}

// Percentiles are the cut points reported for every run.
var Percentiles = []int{99, 95, 90, 75, 50, 25, 10}

// DefaultConfig returns a Config with the command line defaults
func DefaultConfig() *Config {
	return &Config{
		Workers:    8,
		Iterations: 100,
		Buckets:    10,
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if len(c.Requests) == 0 {
		return fmt.Errorf("at least one request is required")
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}

	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1")
	}

	if c.Buckets < 1 {
		return fmt.Errorf("buckets must be at least 1")
	}

	if c.Rate < 0 {
		return fmt.Errorf("rate cannot be negative")
	}

	if c.RampUp < 0 {
		return fmt.Errorf("rampUp cannot be negative")
	}

	if c.RampUp > 0 && c.Rate == 0 {
		return fmt.Errorf("rampUp requires a rate")
	}

	return nil
}

// Thresholds defines pass/fail criteria for a benchmark
type Thresholds struct {
	P50        time.Duration
	P95        time.Duration
	P99        time.Duration
	MaxLatency time.Duration
	ErrorRate  float64 // maximum error rate (0.0 - 1.0)
	MinRPS     float64
}

var thresholdPattern = regexp.MustCompile(`^(\w+)\s*([<>]=?)\s*(.+)$`)

// ParseThresholds parses a threshold string like "p95<200ms,errors<0.1%"
func ParseThresholds(s string) (Thresholds, error) {
	var t Thresholds

	if s == "" {
		return t, nil
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if err := parseThresholdPart(part, &t); err != nil {
			return t, err
		}
	}

	return t, nil
}

func parseThresholdPart(part string, t *Thresholds) error {
	matches := thresholdPattern.FindStringSubmatch(part)
	if len(matches) != 4 {
		return fmt.Errorf("invalid threshold format: %s", part)
	}

	metric := strings.ToLower(matches[1])
	op := matches[2]
	valueStr := matches[3]

	upper := func(name string, dst *time.Duration) error {
		d, err := time.ParseDuration(valueStr)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", name, valueStr)
		}
		if op != "<" && op != "<=" {
			return fmt.Errorf("%s threshold must use < or <=", name)
		}
		*dst = d
		return nil
	}

	switch metric {
	case "p50":
		return upper("p50", &t.P50)
	case "p95":
		return upper("p95", &t.P95)
	case "p99":
		return upper("p99", &t.P99)
	case "max", "maxlatency":
		return upper("max latency", &t.MaxLatency)

	case "errors", "error", "errorrate":
		trimmed := strings.TrimSuffix(valueStr, "%")
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return fmt.Errorf("invalid error rate: %s", valueStr)
		}
		if trimmed != valueStr {
			f = f / 100
		}
		if op != "<" && op != "<=" {
			return fmt.Errorf("error rate threshold must use < or <=")
		}
		t.ErrorRate = f

	case "rps", "rate":
		f, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return fmt.Errorf("invalid RPS: %s", valueStr)
		}
		if op != ">" && op != ">=" {
			return fmt.Errorf("RPS threshold must use > or >=")
		}
		t.MinRPS = f

	default:
		return fmt.Errorf("unknown threshold metric: %s", metric)
	}

	return nil
}

// HasThresholds returns true if any thresholds are configured
func (t *Thresholds) HasThresholds() bool {
	return t.P50 > 0 || t.P95 > 0 || t.P99 > 0 || t.MaxLatency > 0 || t.ErrorRate > 0 || t.MinRPS > 0
}

// ThresholdResult holds the result of evaluating a threshold
type ThresholdResult struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// Evaluate checks s against every configured threshold.
func (t Thresholds) Evaluate(s *Stats) []ThresholdResult {
	var results []ThresholdResult

	latency := func(name string, limit, actual time.Duration) {
		if limit > 0 {
			results = append(results, ThresholdResult{
				Name:     name,
				Passed:   actual <= limit,
				Expected: "< " + limit.String(),
				Actual:   actual.String(),
			})
		}
	}

	latency("p50", t.P50, s.Percentile(50))
	latency("p95", t.P95, s.Percentile(95))
	latency("p99", t.P99, s.Percentile(99))
	latency("max latency", t.MaxLatency, s.Max)

	if t.ErrorRate > 0 {
		results = append(results, ThresholdResult{
			Name:     "error rate",
			Passed:   s.ErrorRate() <= t.ErrorRate,
			Expected: formatPercent(t.ErrorRate),
			Actual:   formatPercent(s.ErrorRate()),
		})
	}

	if t.MinRPS > 0 {
		results = append(results, ThresholdResult{
			Name:     "min RPS",
			Passed:   s.Throughput >= t.MinRPS,
			Expected: "> " + formatFloat(t.MinRPS),
			Actual:   formatFloat(s.Throughput),
		})
	}

	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []ThresholdResult) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

func formatPercent(f float64) string {
	return formatFloat(f*100) + "%"
}

func formatFloat(f float64) string {
	if f == float64(int(f)) {
		return strconv.Itoa(int(f))
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
