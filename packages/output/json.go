package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/apictl/packages/results"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary  Counts     `json:"summary"`
	Tests    []JSONNode `json:"tests"`
	Duration float64    `json:"duration"`
	Time     string     `json:"time"`
}

// JSONNode mirrors one node of the results tree.
type JSONNode struct {
	Name     string     `json:"name"`
	Status   string     `json:"status"`
	Reason   string     `json:"reason,omitempty"`
	Duration float64    `json:"duration"`
	Children []JSONNode `json:"children,omitempty"`
}

// JSONFormatter formats test results as JSON
type JSONFormatter struct {
	writer io.Writer
	now    func() time.Time
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func toJSONNode(n *results.Node) JSONNode {
	out := JSONNode{
		Name:     n.Name,
		Status:   kindName(n.State.Kind),
		Reason:   n.State.Reason,
		Duration: float64(n.Duration.Microseconds()) / 1000,
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, toJSONNode(c))
	}
	return out
}

func (f *JSONFormatter) Format(root *results.Node, total time.Duration) error {
	output := JSONOutput{
		Summary:  countTests(root),
		Tests:    make([]JSONNode, 0, len(root.Children)),
		Duration: float64(total.Milliseconds()),
		Time:     f.now().Format(time.RFC3339),
	}
	for _, t := range root.Children {
		output.Tests = append(output.Tests, toJSONNode(t))
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
