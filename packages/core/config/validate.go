package config

import (
	"fmt"
	"strings"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found by Validate.
type Issue struct {
	Severity Severity
	Location string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Location, i.Message)
}

// Validate checks the config for problems that would only surface at run
// time. Requests are checked before tests, each in name order.
func (c *Config) Validate() []Issue {
	var issues []Issue
	add := func(sev Severity, loc, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Location: loc, Message: fmt.Sprintf(format, args...)})
	}

	for _, name := range c.Requests.Names() {
		t := c.Requests[name]
		loc := "requests." + name
		if t == nil {
			add(SeverityError, loc, "empty request")
			continue
		}
		if strings.TrimSpace(t.URL) == "" {
			add(SeverityError, loc, "missing url")
		}
		switch strings.ToUpper(t.Method) {
		case "", "GET", "POST", "PUT", "DELETE":
		default:
			add(SeverityError, loc, "unsupported method %q", t.Method)
		}
	}

	for _, name := range c.Tests.Names() {
		test := c.Tests[name]
		loc := "tests." + name
		if test == nil {
			add(SeverityError, loc, "empty test")
			continue
		}
		if len(test.Steps) == 0 {
			add(SeverityWarning, loc, "test has no steps")
		}

		seen := make(map[string]bool, len(test.Steps))
		for i, step := range test.Steps {
			stepLoc := fmt.Sprintf("%s.steps[%d]", loc, i)
			if seen[step.Name] {
				add(SeverityWarning, stepLoc, "duplicate step name %q", step.Name)
			}
			seen[step.Name] = true

			if _, ok := c.Requests[step.Request]; !ok {
				add(SeverityError, stepLoc, "request %q is not defined", step.Request)
			}
			for j, a := range step.Asserts {
				if err := a.Validate(); err != nil {
					add(SeverityError, fmt.Sprintf("%s.asserts[%d]", stepLoc, j), "%v", err)
				}
			}
		}
	}

	return issues
}

// HasErrors reports whether any issue is an error rather than a warning.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
