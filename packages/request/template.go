package request

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultMethod is used when a template does not name a method.
const DefaultMethod = "GET"

// ErrNotFound is returned when a named request is not defined.
var ErrNotFound = errors.New("request not found")

type Template struct {
	Description     string            `yaml:"description,omitempty" json:"description,omitempty"`
	Tags            []string          `yaml:"tags,omitempty" json:"tags,omitempty"`
	URL             string            `yaml:"url" json:"url"`
	Method          string            `yaml:"method,omitempty" json:"method,omitempty"`
	Headers         map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	QueryParameters map[string]string `yaml:"query_parameters,omitempty" json:"query_parameters,omitempty"`
	Body            Body              `yaml:"body,omitempty" json:"-"`
}

// templateYAML accepts "payload" as an older spelling of "body".
type templateYAML struct {
	Description     string            `yaml:"description"`
	Tags            []string          `yaml:"tags"`
	URL             string            `yaml:"url"`
	Method          string            `yaml:"method"`
	Headers         map[string]string `yaml:"headers"`
	QueryParameters map[string]string `yaml:"query_parameters"`
	Body            *Body             `yaml:"body"`
	Payload         *Body             `yaml:"payload"`
}

func (t *Template) UnmarshalYAML(value *yaml.Node) error {
	var raw templateYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*t = Template{
		Description:     raw.Description,
		Tags:            raw.Tags,
		URL:             raw.URL,
		Method:          raw.Method,
		Headers:         raw.Headers,
		QueryParameters: raw.QueryParameters,
		Body:            NoBody(),
	}
	if t.Method == "" {
		t.Method = DefaultMethod
	}

	switch {
	case raw.Body != nil && raw.Payload != nil:
		return fmt.Errorf("line %d: request sets both body and payload", value.Line)
	case raw.Body != nil:
		t.Body = *raw.Body
	case raw.Payload != nil:
		t.Body = *raw.Payload
	}
	return nil
}

// Set is a collection of named templates.
type Set map[string]*Template

// Get returns the template registered under name.
func (s Set) Get(name string) (*Template, error) {
	t, ok := s[name]
	if !ok || t == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return t, nil
}

// Names returns the template names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge copies every template from other into s, replacing existing names.
func (s Set) Merge(other Set) {
	for name, t := range other {
		s[name] = t
	}
}
