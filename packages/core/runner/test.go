package runner

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/apictl/packages/assertions"
)

// ErrTestNotFound is returned when a named test is not defined.
var ErrTestNotFound = errors.New("test not found")

type Test struct {
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps"`
}

type Step struct {
	Name    string              `yaml:"name"`
	Request string              `yaml:"request"`
	Asserts []assertions.Assert `yaml:"asserts,omitempty"`
}

// Describe renders the test in the indented form printed by tests describe.
func (t *Test) Describe(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "test: %s\n", name)
	fmt.Fprintf(&b, "  description: %s\n", t.Description)
	b.WriteString("  steps:\n")
	for _, s := range t.Steps {
		fmt.Fprintf(&b, "    %s (%s)\n", s.Name, s.Request)
		if len(s.Asserts) == 0 {
			continue
		}
		b.WriteString("      asserts:\n")
		for _, a := range s.Asserts {
			fmt.Fprintf(&b, "        %s\n", a)
		}
	}
	return b.String()
}

// Set is a collection of named tests.
type Set map[string]*Test

func (s Set) Get(name string) (*Test, error) {
	t, ok := s[name]
	if !ok || t == nil {
		return nil, fmt.Errorf("%w: %s", ErrTestNotFound, name)
	}
	return t, nil
}

// Names returns the test names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s Set) Merge(other Set) {
	for name, t := range other {
		s[name] = t
	}
}

// Expand resolves each pattern to test names. A pattern with a leading or
// trailing '*' matches every test it fits, in sorted order; anything else
// must name a test exactly. Duplicates are dropped. No patterns selects
// every test.
func (s Set) Expand(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return s.Names(), nil
	}

	var names []string
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for _, p := range patterns {
		if !strings.Contains(p, "*") {
			if _, err := s.Get(p); err != nil {
				return nil, err
			}
			add(p)
			continue
		}

		matched := false
		for _, name := range s.Names() {
			if matchesPattern(name, p) {
				add(name)
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("%w: no test matches %q", ErrTestNotFound, p)
		}
	}
	return names, nil
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	if pattern == "*" {
		return true
	}

	if pattern[0] == '*' && pattern[len(pattern)-1] == '*' {
		return strings.Contains(name, pattern[1:len(pattern)-1])
	}

	if pattern[0] == '*' {
		return strings.HasSuffix(name, pattern[1:])
	}

	if pattern[len(pattern)-1] == '*' {
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	}

	return name == pattern
}
