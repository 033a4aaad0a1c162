package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/abdul-hamid-achik/apictl/packages/benchmark"
)

const (
	defaultSheetName = "Sheet1"
	minColumnWidth   = 10
	maxColumnWidth   = 80
)

// WriteWorkbook writes one sheet per table to w. Sheets are named after the
// table titles.
func WriteWorkbook(w io.Writer, tables ...*Table) error {
	f, err := buildWorkbook(tables)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// SaveWorkbook writes the tables to an .xlsx file at path.
func SaveWorkbook(path string, tables ...*Table) error {
	f, err := buildWorkbook(tables)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func buildWorkbook(tables []*Table) (*excelize.File, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("workbook needs at least one table")
	}

	f := excelize.NewFile()
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	for i, t := range tables {
		name := sheetName(t, i)
		if i == 0 {
			if err := f.SetSheetName(defaultSheetName, name); err != nil {
				f.Close()
				return nil, fmt.Errorf("naming sheet %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("creating sheet %s: %w", name, err)
		}

		if err := writeSheet(f, name, t, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func sheetName(t *Table, i int) string {
	if t.Title != "" {
		return t.Title
	}
	return "Sheet" + strconv.Itoa(i+1)
}

func writeSheet(f *excelize.File, sheet string, t *Table, headerStyle int) error {
	widths := make([]int, len(t.Headers))

	set := func(col, row int, value string) error {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if n := utf8.RuneCountInString(value); n > widths[col] {
			widths[col] = n
		}
		return f.SetCellValue(sheet, cell, cellValue(value))
	}

	for i, h := range t.Headers {
		if err := set(i, 1, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if len(t.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Headers), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("styling header: %w", err)
		}
	}

	for r, row := range t.Rows {
		for c, v := range row {
			if c >= len(widths) {
				break
			}
			if err := set(c, r+2, v); err != nil {
				return fmt.Errorf("writing row %d: %w", r+1, err)
			}
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		w += 2
		if w < minColumnWidth {
			w = minColumnWidth
		}
		if w > maxColumnWidth {
			w = maxColumnWidth
		}
		if err := f.SetColWidth(sheet, col, col, float64(w)); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}
	return nil
}

// cellValue stores numbers as numbers so they can be charted.
func cellValue(v string) any {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// BenchmarkTables lays out benchmark statistics as summary, status,
// latency and histogram sheets. Durations are in milliseconds.
func BenchmarkTables(s *benchmark.Stats) []*Table {
	ms := func(d interface{ Microseconds() int64 }) string {
		return strconv.FormatFloat(float64(d.Microseconds())/1000, 'f', 3, 64)
	}

	summary := NewTable("summary", "Metric", "Value")
	summary.Append("requests", strings.Join(s.Requests, ", "))
	summary.Append("workers", strconv.Itoa(s.Workers))
	summary.Append("iterations", strconv.Itoa(s.Iterations))
	summary.Append("total requests", strconv.Itoa(s.Total()))
	summary.Append("failed requests", strconv.Itoa(s.Errors))
	summary.Append("total duration ms", ms(s.TotalDuration))
	summary.Append("throughput req/s", strconv.FormatFloat(s.Throughput, 'f', 2, 64))
	summary.Append("mean ms", ms(s.Mean))
	summary.Append("stddev ms", ms(s.StdDev))
	summary.Append("min ms", ms(s.Min))
	summary.Append("max ms", ms(s.Max))

	status := NewTable("status codes", "Status", "Count")
	for _, code := range s.SortedStatusCodes() {
		status.Append(strconv.Itoa(int(code)), strconv.Itoa(s.StatusCodes[code]))
	}

	latency := NewTable("latency", "Percentile", "Duration ms")
	for _, p := range s.Percentiles {
		latency.Append(strconv.Itoa(p.P), ms(p.Value))
	}

	histogram := NewTable("histogram", "Start ms", "End ms", "Count")
	for _, b := range s.Histogram {
		histogram.Append(ms(b.Start), ms(b.End), strconv.Itoa(b.Count))
	}

	return []*Table{summary, status, latency, histogram}
}
