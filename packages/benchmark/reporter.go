package benchmark

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

const (
	histogramBarWidth = 50
	progressLines     = 3
)

// Reporter handles output for benchmarks
type Reporter struct {
	writer     io.Writer
	noColor    bool
	noProgress bool

	drawn bool

	green *color.Color
	red   *color.Color
	cyan  *color.Color
	bold  *color.Color
	dim   *color.Color
}

// ReporterOption configures the reporter
type ReporterOption func(*Reporter)

// WithWriter sets the output writer
func WithWriter(w io.Writer) ReporterOption {
	return func(r *Reporter) {
		r.writer = w
	}
}

// WithNoColor disables colored output
func WithNoColor(noColor bool) ReporterOption {
	return func(r *Reporter) {
		r.noColor = noColor
	}
}

// WithNoProgress disables real-time progress display
func WithNoProgress(noProgress bool) ReporterOption {
	return func(r *Reporter) {
		r.noProgress = noProgress
	}
}

// NewReporter creates a new reporter
func NewReporter(opts ...ReporterOption) *Reporter {
	r := &Reporter{
		writer: os.Stdout,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.green = color.New(color.FgGreen)
	r.red = color.New(color.FgRed)
	r.cyan = color.New(color.FgCyan)
	r.bold = color.New(color.Bold)
	r.dim = color.New(color.Faint)
	if r.noColor {
		for _, c := range []*color.Color{r.green, r.red, r.cyan, r.bold, r.dim} {
			c.DisableColor()
		}
	}

	return r
}

// Header prints the run parameters
func (r *Reporter) Header(config *Config) {
	r.cyan.Fprintf(r.writer, "benchmarking: %s\n", strings.Join(config.Requests, ", "))

	details := []string{
		fmt.Sprintf("workers: %d", config.Workers),
		fmt.Sprintf("iterations: %d", config.Iterations),
	}
	if config.Rate > 0 {
		details = append(details, fmt.Sprintf("rate: %.0f/s", config.Rate))
	}
	if config.RampUp > 0 {
		details = append(details, fmt.Sprintf("ramp-up: %s", formatDuration(config.RampUp)))
	}
	r.dim.Fprintf(r.writer, "%s\n\n", strings.Join(details, " | "))
}

// Progress prints real-time progress
func (r *Reporter) Progress(stats CurrentStats, claimed, total int64) {
	if r.noProgress {
		return
	}

	if r.drawn {
		fmt.Fprintf(r.writer, "\033[%dA", progressLines)
	}
	r.drawn = true

	progress := float64(0)
	if total > 0 {
		progress = float64(stats.Completed) / float64(total)
	}
	if progress > 1 {
		progress = 1
	}
	barWidth := 30
	filled := int(progress * float64(barWidth))
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	fmt.Fprint(r.writer, "\r\033[K")
	fmt.Fprintf(r.writer, "Progress %s %s / %s (%s claimed) %s\n",
		bar,
		formatNumber(stats.Completed),
		formatNumber(total),
		formatNumber(claimed),
		formatDuration(stats.Elapsed))

	fmt.Fprint(r.writer, "\r\033[K")
	fmt.Fprintf(r.writer, "Requests: ")
	r.bold.Fprintf(r.writer, "%s", formatNumber(stats.Total))
	fmt.Fprintf(r.writer, " total | ")
	if stats.Errors > 0 {
		r.red.Fprintf(r.writer, "%s", formatNumber(stats.Errors))
	} else {
		fmt.Fprintf(r.writer, "%s", formatNumber(stats.Errors))
	}
	fmt.Fprintf(r.writer, " errors | ")
	r.cyan.Fprintf(r.writer, "%.1f", stats.RPS)
	fmt.Fprintf(r.writer, " req/s\n")

	fmt.Fprint(r.writer, "\r\033[K")
	fmt.Fprintf(r.writer, "Latency: p50: %s | p95: %s | p99: %s\n",
		formatLatency(stats.P50),
		formatLatency(stats.P95),
		formatLatency(stats.P99))
}

// ClearProgress clears the progress display
func (r *Reporter) ClearProgress() {
	if r.noProgress || !r.drawn {
		return
	}
	fmt.Fprintf(r.writer, "\033[%dA\033[J", progressLines)
	r.drawn = false
}

// Summary prints the final statistics
func (r *Reporter) Summary(s *Stats) {
	r.bold.Fprintln(r.writer, "status codes:")
	for _, code := range s.SortedStatusCodes() {
		status := r.green
		if code >= 400 {
			status = r.red
		}
		fmt.Fprintf(r.writer, "  %s: %d\n", status.Sprintf("%d", code), s.StatusCodes[code])
	}

	r.bold.Fprintln(r.writer, "statistics:")
	fmt.Fprintf(r.writer, "  total requests:     %d\n", s.Total())
	errors := fmt.Sprintf("%d", s.Errors)
	if s.Errors > 0 {
		errors = r.red.Sprint(errors)
	}
	fmt.Fprintf(r.writer, "  failed requests:    %s\n", errors)
	fmt.Fprintf(r.writer, "  total duration:     %s\n", s.TotalDuration)
	fmt.Fprintf(r.writer, "  throughput:         %.1f req/s\n", s.Throughput)
	fmt.Fprintf(r.writer, "  mean duration:      %s\n", s.Mean)
	fmt.Fprintf(r.writer, "  standard deviation: %s\n", s.StdDev)
	fmt.Fprintf(r.writer, "  fastest duration:   %s\n", s.Min)
	fmt.Fprintf(r.writer, "  slowest duration:   %s\n", s.Max)

	r.bold.Fprintln(r.writer, "latency distribution:")
	for _, p := range s.Percentiles {
		fmt.Fprintf(r.writer, "  %d%%: %s\n", p.P, p.Value)
	}

	r.bold.Fprintln(r.writer, "latency histogram:")
	fmt.Fprintln(r.writer, "  bin ranges:")
	for _, b := range s.Histogram {
		fmt.Fprintf(r.writer, "  - [%s, %s]\n", b.Start, b.End)
	}

	fmt.Fprintln(r.writer, "  values:")
	maxCount, width := 0, 1
	for _, b := range s.Histogram {
		if b.Count > maxCount {
			maxCount = b.Count
		}
		if w := len(fmt.Sprintf("%d", b.Count)); w > width {
			width = w
		}
	}
	for _, b := range s.Histogram {
		bar := ""
		if maxCount > 0 {
			bar = strings.Repeat("█", b.Count*histogramBarWidth/maxCount)
		}
		fmt.Fprintf(r.writer, "    %*d: %s\n", width, b.Count, r.cyan.Sprint(bar))
	}
}

// Thresholds prints the outcome of every threshold.
func (r *Reporter) Thresholds(results []ThresholdResult) {
	if len(results) == 0 {
		return
	}

	r.bold.Fprintln(r.writer, "thresholds:")
	for _, tr := range results {
		if tr.Passed {
			r.green.Fprintf(r.writer, "  ✓ ")
		} else {
			r.red.Fprintf(r.writer, "  ✗ ")
		}
		fmt.Fprintf(r.writer, "%s %s    (actual: %s)\n", tr.Name, tr.Expected, tr.Actual)
	}

	if AllPassed(results) {
		r.green.Fprintln(r.writer, "all thresholds passed")
	} else {
		r.red.Fprintln(r.writer, "some thresholds failed")
	}
}

// JSONSummary outputs the summary as JSON
func (r *Reporter) JSONSummary(s *Stats, thresholdResults []ThresholdResult) error {
	codes := make(map[string]int, len(s.StatusCodes))
	for code, n := range s.StatusCodes {
		codes[fmt.Sprintf("%d", code)] = n
	}

	percentiles := make(map[string]float64, len(s.Percentiles))
	for _, p := range s.Percentiles {
		percentiles[fmt.Sprintf("p%d", p.P)] = durationMs(p.Value)
	}

	histogram := make([]map[string]interface{}, len(s.Histogram))
	for i, b := range s.Histogram {
		histogram[i] = map[string]interface{}{
			"start": durationMs(b.Start),
			"end":   durationMs(b.End),
			"count": b.Count,
		}
	}

	output := map[string]interface{}{
		"requests":    s.Requests,
		"workers":     s.Workers,
		"iterations":  s.Iterations,
		"statusCodes": codes,
		"totals": map[string]interface{}{
			"requests": s.Total(),
			"success":  s.Count,
			"failed":   s.Errors,
		},
		"duration":   s.TotalDuration.String(),
		"throughput": s.Throughput,
		"latency": map[string]interface{}{
			"mean":        durationMs(s.Mean),
			"stddev":      durationMs(s.StdDev),
			"min":         durationMs(s.Min),
			"max":         durationMs(s.Max),
			"percentiles": percentiles,
		},
		"histogram": histogram,
	}

	if len(thresholdResults) > 0 {
		output["thresholds"] = thresholdResults
	}

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if seconds == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm %02ds", minutes, seconds)
}

func formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dμs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// formatNumber formats a number with commas
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if n < 1000 {
		return s
	}

	start := len(s) % 3
	if start == 0 {
		start = 3
	}

	var b strings.Builder
	b.WriteString(s[:start])
	for i := start; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
