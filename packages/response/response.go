package response

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type Response struct {
	StatusCode      uint16            `yaml:"status_code" json:"status_code"`
	ProtocolVersion string            `yaml:"protocol_version,omitempty" json:"protocol_version,omitempty"`
	Headers         map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Body            string            `yaml:"body" json:"body"`

	// Duration is the round trip time of the request. It is not persisted.
	Duration time.Duration `yaml:"-" json:"-"`
}

// Header performs a case-sensitive header lookup.
func (r *Response) Header(key string) (string, bool) {
	v, ok := r.Headers[key]
	return v, ok
}

// FindPath resolves a dot separated path against the JSON body.
func (r *Response) FindPath(path string) (string, bool) {
	return Lookup(r.Body, path)
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) Clone() *Response {
	c := *r
	c.Headers = make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		c.Headers[k] = v
	}
	return &c
}

// String renders the status line, sorted headers and body the way they are
// shown by verbose request runs.
func (r *Response) String() string {
	var b strings.Builder
	proto := r.ProtocolVersion
	if proto == "" {
		proto = "HTTP/1.1"
	}
	fmt.Fprintf(&b, "%s %d\n", proto, r.StatusCode)

	keys := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, r.Headers[k])
	}
	b.WriteString("\n")
	b.WriteString(r.Body)
	return b.String()
}
