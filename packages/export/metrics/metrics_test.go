package metrics

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/apictl/packages/benchmark"
)

func sampleStats() *benchmark.Stats {
	s := benchmark.ComputeStats([]time.Duration{
		10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond, 40 * time.Millisecond,
	}, 2)
	s.Requests = []string{"login", "me"}
	s.Workers = 2
	s.Iterations = 2
	s.Errors = 1
	s.StatusCodes = map[uint16]int{200: 3, 404: 1}
	s.TotalDuration = 2 * time.Second
	s.Throughput = 2
	return s
}

func fixedNow() time.Time {
	return time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("JSON")
	require.NoError(t, err)
	assert.Equal(t, KindJSON, k)

	k, err = ParseKind("prom")
	require.NoError(t, err)
	assert.Equal(t, KindPrometheus, k)

	_, err = ParseKind("datadog")
	assert.Error(t, err)
}

func TestFromStats(t *testing.T) {
	s := FromStats(sampleStats())

	assert.Equal(t, int64(5), s.TotalRequests)
	assert.Equal(t, int64(4), s.SuccessCount)
	assert.Equal(t, int64(1), s.FailureCount)
	assert.Equal(t, 25.0, s.AvgDurationMs)
	assert.Equal(t, 10.0, s.MinDurationMs)
	assert.Equal(t, 40.0, s.MaxDurationMs)
	assert.Equal(t, 30.0, s.Percentiles["p50"])
	assert.Equal(t, map[int]int64{200: 3, 404: 1}, s.StatusCodes)
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	exp := NewJSONExporter(WithJSONWriter(&buf))
	exp.now = fixedNow

	require.NoError(t, exp.Export(sampleStats()))
	require.NoError(t, exp.Close())

	var out JSONMetricsOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "2026-05-06T07:08:09Z", out.Metadata.EndTime)
	assert.Equal(t, "2026-05-06T07:08:07Z", out.Metadata.StartTime)
	assert.Equal(t, "2s", out.Metadata.Duration)
	assert.Equal(t, []string{"login", "me"}, out.Summary.Requests)
	assert.Len(t, out.Histogram, 2)
	assert.True(t, strings.HasSuffix(buf.String(), "}\n"))
}

func TestJSONExporterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	exp, err := NewExporter(KindJSON, path, nil)
	require.NoError(t, err)

	require.NoError(t, exp.Export(sampleStats()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total_requests": 5`)
}

func TestPrometheusExporter(t *testing.T) {
	var buf bytes.Buffer
	exp := NewPrometheusExporter(WithPrometheusWriter(&buf))
	exp.now = fixedNow

	require.NoError(t, exp.Export(sampleStats()))

	out := buf.String()
	ts := " 1778051289000\n"
	assert.Contains(t, out, "# TYPE apictl_benchmark_requests_total counter\n")
	assert.Contains(t, out, `apictl_benchmark_requests_total{requests="login,me"} 5`+ts)
	assert.Contains(t, out, `apictl_benchmark_errors_total{requests="login,me"} 1`+ts)
	assert.Contains(t, out, `apictl_benchmark_duration_seconds{requests="login,me",quantile="0"} 0.01`+ts)
	assert.Contains(t, out, `apictl_benchmark_duration_seconds{requests="login,me",quantile="0.5"} 0.03`+ts)
	assert.Contains(t, out, `apictl_benchmark_duration_seconds{requests="login,me",quantile="0.99"} 0.04`+ts)
	assert.Contains(t, out, `apictl_benchmark_duration_seconds{requests="login,me",quantile="1"} 0.04`+ts)
	assert.Contains(t, out, `apictl_benchmark_duration_seconds_count{requests="login,me"} 4`+ts)
	assert.Contains(t, out, `apictl_benchmark_status_total{requests="login,me",code="200"} 3`+ts)
	assert.Less(t, strings.Index(out, `code="200"`), strings.Index(out, `code="404"`))
	// quantiles ascend
	assert.Less(t, strings.Index(out, `quantile="0.1"`), strings.Index(out, `quantile="0.99"`))
}

func TestPrometheusExporterFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apictl.prom")
	exp, err := NewExporter(KindPrometheus, path, nil)
	require.NoError(t, err)

	require.NoError(t, exp.Export(sampleStats()))
	require.NoError(t, exp.Export(sampleStats()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "# TYPE apictl_benchmark_requests_total"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, `a\"b\\c\nd`, sanitizeLabel("a\"b\\c\nd"))
}

func TestNewExporterUnknown(t *testing.T) {
	_, err := NewExporter(Kind("statsd"), "", nil)
	assert.Error(t, err)
}
