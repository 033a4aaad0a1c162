package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// ListFormat names a listing format.
type ListFormat string

const (
	ListTable ListFormat = "table"
	ListTSV   ListFormat = "tsv"
	ListYAML  ListFormat = "yaml"
	ListXLSX  ListFormat = "xlsx"
)

var ListFormats = []ListFormat{ListTable, ListTSV, ListYAML, ListXLSX}

func ParseListFormat(s string) (ListFormat, error) {
	for _, f := range ListFormats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Table is a listing: one header row and any number of data rows.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func NewTable(title string, headers ...string) *Table {
	return &Table{Title: title, Headers: headers}
}

// Append adds a row. Missing cells are left empty.
func (t *Table) Append(cells ...string) {
	row := make([]string, len(t.Headers))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Lister writes tables in one of the list formats.
type Lister struct {
	writer io.Writer
	bold   *color.Color
}

type ListerOption func(*Lister)

func NewLister(opts ...ListerOption) *Lister {
	l := &Lister{
		writer: os.Stdout,
		bold:   color.New(color.Bold),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func ListerWithWriter(w io.Writer) ListerOption {
	return func(l *Lister) {
		l.writer = w
	}
}

func ListerWithNoColor(nc bool) ListerOption {
	return func(l *Lister) {
		if nc {
			l.bold.DisableColor()
		}
	}
}

func (l *Lister) Write(t *Table, format ListFormat) error {
	switch format {
	case ListTable:
		return l.writeTable(t)
	case ListTSV:
		return l.writeTSV(t)
	case ListYAML:
		return l.writeYAML(t)
	case ListXLSX:
		return WriteWorkbook(l.writer, t)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// writeTable pads every column to its widest cell. The header is bold.
func (l *Lister) writeTable(t *Table) error {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	line := func(cells []string, style func(string) string) error {
		var b strings.Builder
		for i, cell := range cells {
			if i == len(cells)-1 {
				b.WriteString(style(cell))
				break
			}
			b.WriteString(style(cell))
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)+2))
		}
		b.WriteByte('\n')
		_, err := io.WriteString(l.writer, b.String())
		return err
	}

	if err := line(t.Headers, func(s string) string { return l.bold.Sprint(s) }); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := line(row, func(s string) string { return s }); err != nil {
			return err
		}
	}
	return nil
}

// writeTSV prints data rows only.
func (l *Lister) writeTSV(t *Table) error {
	for _, row := range t.Rows {
		if _, err := fmt.Fprintln(l.writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// writeYAML prints a sequence of mappings keyed by the lowercased headers,
// keeping column order.
func (l *Lister) writeYAML(t *Table) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range t.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for i, h := range t.Headers {
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: strings.ToLower(h)},
				&yaml.Node{Kind: yaml.ScalarNode, Value: row[i], Style: scalarStyle(row[i])},
			)
		}
		seq.Content = append(seq.Content, m)
	}

	enc := yaml.NewEncoder(l.writer)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}

// scalarStyle quotes values that would otherwise decode as something other
// than a string.
func scalarStyle(v string) yaml.Style {
	var out any
	if err := yaml.Unmarshal([]byte(v), &out); err != nil {
		return yaml.DoubleQuotedStyle
	}
	if s, ok := out.(string); ok && s == v {
		return 0
	}
	return yaml.DoubleQuotedStyle
}
