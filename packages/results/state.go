package results

type Kind int

const (
	KindNotRun Kind = iota
	KindRunning
	KindPassed
	KindFailed
)

// State is the outcome of a node. Reason is only set for failures.
type State struct {
	Kind   Kind
	Reason string
}

var (
	NotRun  = State{Kind: KindNotRun}
	Running = State{Kind: KindRunning}
	Passed  = State{Kind: KindPassed}
)

// DependentFailure is the reason given to a parent with a failed child.
const DependentFailure = "dependent test failed"

func Failed(reason string) State {
	return State{Kind: KindFailed, Reason: reason}
}

func (s State) IsFailed() bool {
	return s.Kind == KindFailed
}

// Glyph returns the symbol drawn in front of a node.
func (s State) Glyph() string {
	switch s.Kind {
	case KindRunning:
		return "🏃"
	case KindPassed:
		return "✅"
	case KindFailed:
		return "❌"
	default:
		return "⏸"
	}
}

func (s State) String() string {
	switch s.Kind {
	case KindRunning:
		return "running"
	case KindPassed:
		return "passed"
	case KindFailed:
		return "failed: " + s.Reason
	default:
		return "not run"
	}
}
