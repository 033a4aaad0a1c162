package env

import (
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/apictl/packages/response"
)

var variablePattern = regexp.MustCompile(`\$\{\s*([-.\w]+)\s*\}`)

const responsePrefix = "response."

// Applicator rewrites ${...} placeholders in strings. Plain identifiers are
// looked up in the context; identifiers of the form response.<name>.<path>
// walk the JSON body of the stored response for <name>. Anything that cannot
// be resolved becomes the empty string.
type Applicator struct {
	context   Context
	responses *response.Store
}

func NewApplicator(ctx Context, responses *response.Store) *Applicator {
	if ctx == nil {
		ctx = Context{}
	}
	if responses == nil {
		responses = response.NewStore()
	}
	return &Applicator{
		context:   ctx,
		responses: responses,
	}
}

func (a *Applicator) Context() Context {
	return a.context
}

// Responses returns the live store read by Apply.
func (a *Applicator) Responses() *response.Store {
	return a.responses
}

// AddResponse records resp so later placeholders can reference it.
func (a *Applicator) AddResponse(name string, resp *response.Response) {
	a.responses.Put(name, resp)
}

// Apply substitutes every placeholder in s. Substituted text is not scanned
// again.
func (a *Applicator) Apply(s string) string {
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		name := variablePattern.FindStringSubmatch(match)[1]
		if rest, ok := strings.CutPrefix(name, responsePrefix); ok {
			return a.responseValue(rest)
		}
		return a.context[name]
	})
}

// ApplyAll returns a copy of values with every value applied.
func (a *Applicator) ApplyAll(values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = a.Apply(v)
	}
	return out
}

func (a *Applicator) responseValue(ref string) string {
	name, path, ok := strings.Cut(ref, ".")
	if !ok || name == "" || path == "" {
		return ""
	}
	resp, ok := a.responses.Get(name)
	if !ok {
		return ""
	}
	v, _ := resp.FindPath(path)
	return v
}

// Placeholders returns the identifiers referenced by s, in order.
func Placeholders(s string) []string {
	var names []string
	for _, m := range variablePattern.FindAllStringSubmatch(s, -1) {
		names = append(names, m[1])
	}
	return names
}
