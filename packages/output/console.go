package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/apictl/packages/results"
)

// ConsoleFormatter prints the totals line shown under the live tree. With
// verbose set it also lists every failure.
type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool

	green  *color.Color
	red    *color.Color
	yellow *color.Color
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		if nc {
			f.green.DisableColor()
			f.red.DisableColor()
			f.yellow.DisableColor()
		}
	}
}

func (f *ConsoleFormatter) Format(root *results.Node, total time.Duration) error {
	c := countTests(root)

	if f.verbose {
		if fails := failures(root); len(fails) > 0 {
			fmt.Fprintf(f.writer, "\nfailures:\n")
			for _, line := range fails {
				fmt.Fprintf(f.writer, "  %s %s\n", f.red.Sprint("→"), line)
			}
		}
	}

	fmt.Fprintf(f.writer, "\ntests: ")
	if c.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", f.green.Sprintf("%d passed", c.Passed))
	}
	if c.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", f.red.Sprintf("%d failed", c.Failed))
	}
	if c.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", f.yellow.Sprintf("%d not run", c.Skipped))
	}
	fmt.Fprintf(f.writer, "%d total\n", c.Total)
	_, err := fmt.Fprintf(f.writer, "time:  %dms\n", total.Milliseconds())
	return err
}
