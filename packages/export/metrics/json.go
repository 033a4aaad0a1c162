package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/abdul-hamid-achik/apictl/packages/benchmark"
)

// JSONExporter writes one document per benchmark.
type JSONExporter struct {
	writer   io.Writer
	filePath string
	pretty   bool
	now      func() time.Time
}

type JSONOption func(*JSONExporter)

func WithJSONWriter(w io.Writer) JSONOption {
	return func(j *JSONExporter) {
		j.writer = w
	}
}

// WithJSONFile replaces the file at path on every Export.
func WithJSONFile(path string) JSONOption {
	return func(j *JSONExporter) {
		j.filePath = path
	}
}

// WithJSONPretty indents the document. It is on by default.
func WithJSONPretty(pretty bool) JSONOption {
	return func(j *JSONExporter) {
		j.pretty = pretty
	}
}

func NewJSONExporter(opts ...JSONOption) *JSONExporter {
	j := &JSONExporter{
		pretty: true,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

type JSONMetricsOutput struct {
	Metadata  JSONMetadata      `json:"metadata"`
	Summary   *Summary          `json:"summary"`
	Histogram []HistogramBucket `json:"histogram"`
}

type JSONMetadata struct {
	Tool      string `json:"tool"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Duration  string `json:"duration"`
}

// HistogramBucket is one latency bin in milliseconds.
type HistogramBucket struct {
	StartMs float64 `json:"start_ms"`
	EndMs   float64 `json:"end_ms"`
	Count   int     `json:"count"`
}

// Document builds what Export writes. The run is taken to have ended now.
func (j *JSONExporter) Document(stats *benchmark.Stats) JSONMetricsOutput {
	end := j.now().UTC()
	doc := JSONMetricsOutput{
		Metadata: JSONMetadata{
			Tool:      "apictl",
			StartTime: end.Add(-stats.TotalDuration).Format(time.RFC3339),
			EndTime:   end.Format(time.RFC3339),
			Duration:  stats.TotalDuration.String(),
		},
		Summary:   FromStats(stats),
		Histogram: make([]HistogramBucket, len(stats.Histogram)),
	}
	for i, b := range stats.Histogram {
		doc.Histogram[i] = HistogramBucket{StartMs: ms(b.Start), EndMs: ms(b.End), Count: b.Count}
	}
	return doc
}

func (j *JSONExporter) Export(stats *benchmark.Stats) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if j.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(j.Document(stats)); err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}

	if j.filePath != "" {
		if err := writeFileAtomic(j.filePath, buf.Bytes()); err != nil {
			return err
		}
	}
	if j.writer != nil {
		if _, err := j.writer.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

// Close is a no-op; every Export writes its output in full.
func (j *JSONExporter) Close() error {
	return nil
}
