package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/apictl/packages/results"
)

// Formatter writes a report for a finished results tree.
type Formatter interface {
	Format(root *results.Node, total time.Duration) error
}

// ReportFormat names a test report format.
type ReportFormat string

const (
	ReportConsole ReportFormat = "console"
	ReportJSON    ReportFormat = "json"
	ReportJUnit   ReportFormat = "junit"
	ReportTAP     ReportFormat = "tap"
)

var ReportFormats = []ReportFormat{ReportConsole, ReportJSON, ReportJUnit, ReportTAP}

func ParseReportFormat(s string) (ReportFormat, error) {
	for _, f := range ReportFormats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Counts tallies the direct children of the root, which are the tests.
type Counts struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

func countTests(root *results.Node) Counts {
	var c Counts
	for _, t := range root.Children {
		c.Total++
		switch t.State.Kind {
		case results.KindPassed:
			c.Passed++
		case results.KindFailed:
			c.Failed++
		default:
			c.Skipped++
		}
	}
	return c
}

// failures lists the nodes under n that failed for their own reason, as
// "step / assert: reason".
func failures(n *results.Node) []string {
	var out []string
	var visit func(prefix string, node *results.Node)
	visit = func(prefix string, node *results.Node) {
		for _, c := range node.Children {
			name := c.Name
			if prefix != "" {
				name = prefix + " / " + c.Name
			}
			if c.State.IsFailed() && c.State.Reason != results.DependentFailure {
				out = append(out, name+": "+c.State.Reason)
			}
			visit(name, c)
		}
	}
	visit("", n)
	return out
}

func kindName(k results.Kind) string {
	switch k {
	case results.KindRunning:
		return "running"
	case results.KindPassed:
		return "passed"
	case results.KindFailed:
		return "failed"
	default:
		return "not_run"
	}
}
