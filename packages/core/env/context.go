package env

import (
	"errors"
	"fmt"
	"sort"
)

// ErrContextNotFound is returned when a named context is not defined.
var ErrContextNotFound = errors.New("context not found")

// Context maps variable names to their values.
type Context map[string]string

// Clone returns an independent copy of c.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Keys returns the variable names in sorted order.
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge combines contexts left to right. A key present in several contexts
// takes the value from the last one.
func Merge(contexts ...Context) Context {
	out := make(Context)
	for _, c := range contexts {
		for k, v := range c {
			out[k] = v
		}
	}
	return out
}

// MergeNamed looks up each name in defined and merges them in order.
func MergeNamed(defined map[string]Context, names ...string) (Context, error) {
	layers := make([]Context, 0, len(names))
	for _, name := range names {
		c, ok := defined[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrContextNotFound, name)
		}
		layers = append(layers, c)
	}
	return Merge(layers...), nil
}
