package response

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Lookup walks path through the JSON document in body. Each dot separated
// token selects an object field, or an array element when the current value
// is an array and the token is a non-negative integer. The second return
// value is false when the body is not JSON or any step is missing.
//
// The leaf is returned as its JSON text with surrounding quotes removed, so
// strings come back unescaped and numbers, booleans, objects and arrays come
// back as written.
func Lookup(body, path string) (string, bool) {
	if path == "" {
		return "", false
	}
	v, ok := walk(body, path)
	if !ok {
		return "", false
	}
	return leaf(v), true
}

// LookupRaw is like Lookup but returns the JSON text of the value at path
// unchanged. An empty path selects the whole document.
func LookupRaw(body, path string) (string, bool) {
	v, ok := walk(body, path)
	if !ok {
		return "", false
	}
	return v.Raw, true
}

func walk(body, path string) (gjson.Result, bool) {
	if !gjson.Valid(body) {
		return gjson.Result{}, false
	}

	cur := gjson.Parse(body)
	if path == "" {
		return cur, true
	}
	for _, tok := range strings.Split(path, ".") {
		next, ok := step(cur, tok)
		if !ok {
			return gjson.Result{}, false
		}
		cur = next
	}
	return cur, true
}

func step(v gjson.Result, tok string) (gjson.Result, bool) {
	var (
		found gjson.Result
		ok    bool
	)

	switch {
	case v.IsObject():
		v.ForEach(func(key, value gjson.Result) bool {
			if key.String() == tok {
				found, ok = value, true
				return false
			}
			return true
		})
	case v.IsArray():
		idx, err := strconv.Atoi(tok)
		if err != nil || idx < 0 {
			return found, false
		}
		i := 0
		v.ForEach(func(_, value gjson.Result) bool {
			if i == idx {
				found, ok = value, true
				return false
			}
			i++
			return true
		})
	}

	return found, ok
}

func leaf(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	return strings.Trim(v.Raw, `"`)
}
