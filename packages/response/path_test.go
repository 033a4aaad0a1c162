package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	body := `{
		"name": "Galaxy",
		"age": "13.61 Billion",
		"a": {"b": "x", "n": 42, "ok": true, "nil": null},
		"items": [{"id": 1, "tags": ["red", "blue"]}, {"id": 2}],
		"quoted": "\"inner\"",
		"escaped": "line\nbreak"
	}`

	tests := []struct {
		name  string
		path  string
		want  string
		found bool
	}{
		{"top level string", "name", "Galaxy", true},
		{"nested string", "a.b", "x", true},
		{"nested number", "a.n", "42", true},
		{"nested bool", "a.ok", "true", true},
		{"null leaf", "a.nil", "null", true},
		{"array index", "items.0.id", "1", true},
		{"nested array index", "items.0.tags.1", "blue", true},
		{"second element", "items.1.id", "2", true},
		{"missing field", "a.c", "", false},
		{"index out of range", "items.5.id", "", false},
		{"negative index", "items.-1", "", false},
		{"non numeric index", "items.first", "", false},
		{"walk past scalar", "name.first", "", false},
		{"deep missing", "some.bad.one", "", false},
		{"empty path", "", "", false},
		{"inner quotes kept", "quoted", `"inner"`, true},
		{"string unescaped", "escaped", "line\nbreak", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Lookup(body, tt.path)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupInvalidJSON(t *testing.T) {
	got, ok := Lookup("not json at all", "a")
	assert.False(t, ok)
	assert.Empty(t, got)

	got, ok = Lookup("", "a")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestLookupTopLevelArray(t *testing.T) {
	got, ok := Lookup(`[{"id":"first"},{"id":"second"}]`, "1.id")
	assert.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestLookupObjectLeaf(t *testing.T) {
	got, ok := Lookup(`{"a":{"b":1}}`, "a")
	assert.True(t, ok)
	assert.Equal(t, `{"b":1}`, got)
}

func TestLookupNumericObjectKey(t *testing.T) {
	got, ok := Lookup(`{"0":{"v":"zero"}}`, "0.v")
	assert.True(t, ok)
	assert.Equal(t, "zero", got)
}

func TestLookupRaw(t *testing.T) {
	body := `{"a": {"b": "x", "c": [1, 2]}}`

	got, ok := LookupRaw(body, "a.b")
	assert.True(t, ok)
	assert.Equal(t, `"x"`, got)

	got, ok = LookupRaw(body, "a.c")
	assert.True(t, ok)
	assert.Equal(t, `[1, 2]`, got)

	got, ok = LookupRaw(body, "")
	assert.True(t, ok)
	assert.Equal(t, body, got)

	_, ok = LookupRaw(body, "a.z")
	assert.False(t, ok)

	_, ok = LookupRaw("not json", "")
	assert.False(t, ok)
}
