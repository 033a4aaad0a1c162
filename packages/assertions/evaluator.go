package assertions

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/abdul-hamid-achik/apictl/packages/response"
)

type Result struct {
	Name    string
	Passed  bool
	Message string
}

type Evaluator struct {
	response *response.Response
	baseDir  string // Base directory for resolving schema file paths
}

// EvaluatorOption is a functional option for configuring an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithBaseDir resolves relative schema files against dir.
func WithBaseDir(dir string) EvaluatorOption {
	return func(e *Evaluator) {
		e.baseDir = dir
	}
}

func NewEvaluator(resp *response.Response, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{response: resp}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) Evaluate(a Assert) *Result {
	result := &Result{Name: a.String()}
	if msg := e.check(a); msg != "" {
		result.Message = msg
		return result
	}
	result.Passed = true
	return result
}

// check returns the failure reason, or "" when a holds.
func (e *Evaluator) check(a Assert) string {
	switch a.Type {
	case TypeStatusCode:
		if e.response.StatusCode != a.Status {
			return fmt.Sprintf("got status code %d, want %d", e.response.StatusCode, a.Status)
		}
		return ""
	case TypeHeaderContains, TypeHeaderEquals:
		return e.header(a)
	case TypeJSONSchema:
		return e.schema(a)
	case TypeContains, TypeEquals, TypeNotEquals, TypeHasPrefix, TypeHasSuffix, TypeRegex:
		return e.body(a)
	default:
		return fmt.Sprintf("unknown assert type %q", a.Type)
	}
}

func (e *Evaluator) header(a Assert) string {
	got, ok := e.response.Header(a.Key)
	if !ok {
		return fmt.Sprintf("header not found: %s", a.Key)
	}
	if a.Type == TypeHeaderContains {
		if !strings.Contains(got, a.Value) {
			return fmt.Sprintf("header '%s' got '%s', does not contain '%s'", a.Key, got, a.Value)
		}
		return ""
	}
	if got != a.Value {
		return fmt.Sprintf("header '%s' got '%s', want '%s'", a.Key, got, a.Value)
	}
	return ""
}

func (e *Evaluator) body(a Assert) string {
	got, ok := e.response.FindPath(a.Key)
	if !ok {
		return fmt.Sprintf("key '%s' not found in response", a.Key)
	}

	var passed bool
	var verb string
	switch a.Type {
	case TypeContains:
		passed, verb = strings.Contains(got, a.Value), "does not contain"
	case TypeEquals:
		passed, verb = got == a.Value, "want"
	case TypeNotEquals:
		passed, verb = got != a.Value, "did not want"
	case TypeHasPrefix:
		passed, verb = strings.HasPrefix(got, a.Value), "does not have prefix"
	case TypeHasSuffix:
		passed, verb = strings.HasSuffix(got, a.Value), "does not have suffix"
	case TypeRegex:
		re, err := regexp.Compile(a.Value)
		if err != nil {
			return fmt.Sprintf("invalid regex '%s': %v", a.Value, err)
		}
		passed, verb = re.MatchString(got), "does not match regex"
	}

	if passed {
		return ""
	}
	return fmt.Sprintf("body '%s' got '%s', %s '%s'", a.Key, got, verb, a.Value)
}

func (e *Evaluator) schema(a Assert) string {
	doc, ok := response.LookupRaw(e.response.Body, a.Key)
	if !ok {
		if a.Key == "" {
			return "response body is not valid JSON"
		}
		return fmt.Sprintf("key '%s' not found in response", a.Key)
	}

	schemaLoader, err := e.schemaLoader(a.Value)
	if err != nil {
		return err.Error()
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Sprintf("schema validation error: %v", err)
	}

	if result.Valid() {
		return ""
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Sprintf("schema validation failed: %s", strings.Join(errs, "; "))
}

func (e *Evaluator) schemaLoader(value string) (gojsonschema.JSONLoader, error) {
	schemaPath, isFile := strings.CutPrefix(value, SchemaFilePrefix)
	if !isFile {
		return gojsonschema.NewStringLoader(value), nil
	}

	if !filepath.IsAbs(schemaPath) && e.baseDir != "" {
		schemaPath = filepath.Join(e.baseDir, schemaPath)
	}

	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %v", err)
	}
	return gojsonschema.NewBytesLoader(schemaData), nil
}

func EvaluateAll(resp *response.Response, asserts []Assert, opts ...EvaluatorOption) []*Result {
	evaluator := NewEvaluator(resp, opts...)
	results := make([]*Result, len(asserts))
	for i, a := range asserts {
		results[i] = evaluator.Evaluate(a)
	}
	return results
}
