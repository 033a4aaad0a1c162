package results

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Printer renders a tree, replacing its previous rendering in place.
type Printer struct {
	mu      sync.Mutex
	writer  io.Writer
	verbose bool
	live    bool
	lines   int

	red  *color.Color
	cyan *color.Color
}

type PrinterOption func(*Printer)

func NewPrinter(opts ...PrinterOption) *Printer {
	p := &Printer{
		writer: os.Stdout,
		live:   true,
		red:    color.New(color.FgRed),
		cyan:   color.New(color.FgCyan),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func WithWriter(w io.Writer) PrinterOption {
	return func(p *Printer) {
		p.writer = w
	}
}

// WithVerbose prints failure reasons under failed leaves.
func WithVerbose(v bool) PrinterOption {
	return func(p *Printer) {
		p.verbose = v
	}
}

func WithNoColor(nc bool) PrinterOption {
	return func(p *Printer) {
		if nc {
			p.red.DisableColor()
			p.cyan.DisableColor()
		}
	}
}

// WithLive disables the intermediate redraws when false. Only Finish writes
// output then.
func WithLive(live bool) PrinterOption {
	return func(p *Printer) {
		p.live = live
	}
}

// Print redraws root. The lines written by the previous call are cleared
// first.
func (p *Printer) Print(root *Node) error {
	if !p.live {
		return nil
	}
	return p.draw(root)
}

// Finish writes the final rendering of root.
func (p *Printer) Finish(root *Node) error {
	return p.draw(root)
}

// Reset forgets the previous rendering so the next draw starts on a fresh
// line.
func (p *Printer) Reset() {
	p.mu.Lock()
	p.lines = 0
	p.mu.Unlock()
}

func (p *Printer) draw(root *Node) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var buf bytes.Buffer
	if p.lines > 0 {
		fmt.Fprintf(&buf, "\033[%dA\033[J", p.lines)
	}

	body := p.Render(root)
	buf.WriteString(body)

	if _, err := p.writer.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	p.lines = strings.Count(body, "\n")
	return nil
}

// Render returns the text of root without any cursor movement.
func (p *Printer) Render(root *Node) string {
	var b strings.Builder
	root.Walk(func(depth int, n *Node) {
		prefix := strings.Repeat("  ", depth)
		fmt.Fprintf(&b, "%s%s %s %s\n", prefix, n.State.Glyph(), p.cyan.Sprintf("(%s)", n.Duration), n.Name)
		if p.verbose && n.IsLeaf() && n.State.IsFailed() && n.State.Reason != "" {
			fmt.Fprintf(&b, "%s  %s\n", prefix, p.red.Sprint(n.State.Reason))
		}
	})
	return b.String()
}
