package metrics

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/apictl/packages/benchmark"
)

// PrometheusExporter writes metrics in the Prometheus text exposition
// format, either to a writer or to a file for the node exporter's textfile
// collector.
type PrometheusExporter struct {
	writer   io.Writer
	filePath string
	now      func() time.Time
}

// PrometheusOption is a functional option for PrometheusExporter
type PrometheusOption func(*PrometheusExporter)

// WithPrometheusWriter sets the output writer for Prometheus metrics
func WithPrometheusWriter(w io.Writer) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.writer = w
	}
}

// WithPrometheusFile writes the metrics to path, replacing it atomically.
func WithPrometheusFile(path string) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.filePath = path
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter
func NewPrometheusExporter(opts ...PrometheusOption) *PrometheusExporter {
	p := &PrometheusExporter{now: time.Now}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Export exports aggregated metrics
func (p *PrometheusExporter) Export(stats *benchmark.Stats) error {
	var buf bytes.Buffer
	p.writeMetrics(&buf, stats)

	if p.filePath != "" {
		if err := writeFileAtomic(p.filePath, buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write metrics file: %w", err)
		}
	}

	if p.writer != nil {
		if _, err := p.writer.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

func (p *PrometheusExporter) writeMetrics(w io.Writer, stats *benchmark.Stats) {
	now := p.now().UnixMilli()
	labels := fmt.Sprintf("requests=\"%s\"", sanitizeLabel(strings.Join(stats.Requests, ",")))

	fmt.Fprintf(w, "# HELP apictl_benchmark_requests_total Total number of HTTP requests made\n")
	fmt.Fprintf(w, "# TYPE apictl_benchmark_requests_total counter\n")
	fmt.Fprintf(w, "apictl_benchmark_requests_total{%s} %d %d\n", labels, stats.Total(), now)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP apictl_benchmark_errors_total Requests that failed before a response arrived\n")
	fmt.Fprintf(w, "# TYPE apictl_benchmark_errors_total counter\n")
	fmt.Fprintf(w, "apictl_benchmark_errors_total{%s} %d %d\n", labels, stats.Errors, now)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP apictl_benchmark_throughput Successful requests per second\n")
	fmt.Fprintf(w, "# TYPE apictl_benchmark_throughput gauge\n")
	fmt.Fprintf(w, "apictl_benchmark_throughput{%s} %.3f %d\n", labels, stats.Throughput, now)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP apictl_benchmark_duration_seconds Request latency\n")
	fmt.Fprintf(w, "# TYPE apictl_benchmark_duration_seconds summary\n")
	fmt.Fprintf(w, "apictl_benchmark_duration_seconds{%s,quantile=\"0\"} %g %d\n", labels, stats.Min.Seconds(), now)
	for i := len(stats.Percentiles) - 1; i >= 0; i-- {
		pc := stats.Percentiles[i]
		fmt.Fprintf(w, "apictl_benchmark_duration_seconds{%s,quantile=\"%g\"} %g %d\n",
			labels, float64(pc.P)/100, pc.Value.Seconds(), now)
	}
	fmt.Fprintf(w, "apictl_benchmark_duration_seconds{%s,quantile=\"1\"} %g %d\n", labels, stats.Max.Seconds(), now)
	fmt.Fprintf(w, "apictl_benchmark_duration_seconds_sum{%s} %g %d\n", labels, stats.Mean.Seconds()*float64(stats.Count), now)
	fmt.Fprintf(w, "apictl_benchmark_duration_seconds_count{%s} %d %d\n", labels, stats.Count, now)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP apictl_benchmark_status_total Responses by HTTP status code\n")
	fmt.Fprintf(w, "# TYPE apictl_benchmark_status_total counter\n")

	codes := make([]int, 0, len(stats.StatusCodes))
	for code := range stats.StatusCodes {
		codes = append(codes, int(code))
	}
	sort.Ints(codes)

	for _, code := range codes {
		count := stats.StatusCodes[uint16(code)]
		fmt.Fprintf(w, "apictl_benchmark_status_total{%s,code=\"%d\"} %d %d\n", labels, code, count, now)
	}
}

// sanitizeLabel makes a string safe for use as a Prometheus label value
func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// writeFileAtomic replaces path so that readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".apictl-metrics-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Close is a no-op; every Export writes its output in full.
func (p *PrometheusExporter) Close() error {
	return nil
}
