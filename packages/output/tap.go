package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/apictl/packages/results"
)

// TAPFormatter formats test results in TAP (Test Anything Protocol) format.
// Each test is one TAP line.
type TAPFormatter struct {
	writer io.Writer
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) Format(root *results.Node, _ time.Duration) error {
	fmt.Fprintf(f.writer, "TAP version 13\n")
	fmt.Fprintf(f.writer, "1..%d\n", len(root.Children))

	for i, test := range root.Children {
		n := i + 1
		switch test.State.Kind {
		case results.KindPassed:
			fmt.Fprintf(f.writer, "ok %d - %s\n", n, test.Name)
		case results.KindFailed:
			fmt.Fprintf(f.writer, "not ok %d - %s\n", n, test.Name)
			if fails := failures(test); len(fails) > 0 {
				fmt.Fprintf(f.writer, "  ---\n")
				fmt.Fprintf(f.writer, "  failures:\n")
				for _, a := range fails {
					fmt.Fprintf(f.writer, "    - %s\n", escapeYAML(a))
				}
				fmt.Fprintf(f.writer, "  ...\n")
			}
		default:
			fmt.Fprintf(f.writer, "ok %d - %s # SKIP not run\n", n, test.Name)
		}
	}

	_, err := fmt.Fprintln(f.writer)
	return err
}

func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":\n\"'[]{}#&*!|>%@`") {
		s = strings.ReplaceAll(s, "\"", "\\\"")
		return "\"" + s + "\""
	}
	return s
}
