package assertions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAssertString(t *testing.T) {
	tests := []struct {
		assert Assert
		want   string
	}{
		{StatusCode(200), "status_code == 200"},
		{HeaderContains("content-type", "json"), "header_contains(content-type, json)"},
		{HeaderEquals("x-id", "1"), "header_equals(x-id, 1)"},
		{Body(TypeContains, "a", "b"), "contains(a, b)"},
		{Body(TypeEquals, "a", "b"), "equals(a, b)"},
		{Body(TypeNotEquals, "a", "b"), "not_equals(a, b)"},
		{Body(TypeHasPrefix, "a", "b"), "has_prefix(a, b)"},
		{Body(TypeHasSuffix, "a", "b"), "has_suffix(a, b)"},
		{Body(TypeRegex, "a", "^b$"), "regex(a, ^b$)"},
		{Body(TypeJSONSchema, "user", "file://user.json"), "json_schema(user, file://user.json)"},
		{Body(TypeJSONSchema, "", `{"type":"object"}`), "json_schema(, inline)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.assert.String())
		})
	}
}

func TestAssertUnmarshal(t *testing.T) {
	src := `
- type: status_code
  value: 200
- type: header_contains
  key: content-type
  value: json
- type: equals
  key: user.age
  value: 30
- type: regex
  key: token
  value: '^\w+$'
- type: json_schema
  key: user
  value:
    type: object
    required: [name]
- type: json_schema
  value: file://schema.json
`
	var asserts []Assert
	require.NoError(t, yaml.Unmarshal([]byte(src), &asserts))
	require.Len(t, asserts, 6)

	assert.Equal(t, StatusCode(200), asserts[0])
	assert.Equal(t, HeaderContains("content-type", "json"), asserts[1])
	assert.Equal(t, Body(TypeEquals, "user.age", "30"), asserts[2])
	assert.Equal(t, Body(TypeRegex, "token", `^\w+$`), asserts[3])
	assert.Equal(t, TypeJSONSchema, asserts[4].Type)
	assert.JSONEq(t, `{"type":"object","required":["name"]}`, asserts[4].Value)
	assert.Equal(t, Body(TypeJSONSchema, "", "file://schema.json"), asserts[5])
}

func TestAssertUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown type", "type: greater_than\nkey: a\nvalue: b\n"},
		{"status not a number", "type: status_code\nvalue: ok\n"},
		{"status overflow", "type: status_code\nvalue: 70000\n"},
		{"body value is a list", "type: equals\nkey: a\nvalue: [1, 2]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Assert
			assert.Error(t, yaml.Unmarshal([]byte(tt.src), &a))
		})
	}
}

func TestAssertMarshalRoundTrip(t *testing.T) {
	for _, a := range []Assert{StatusCode(404), HeaderEquals("k", "v"), Body(TypeHasSuffix, "a.b", "z")} {
		data, err := yaml.Marshal(a)
		require.NoError(t, err)

		var back Assert
		require.NoError(t, yaml.Unmarshal(data, &back))
		assert.Equal(t, a, back)
	}
}

func TestAssertValidate(t *testing.T) {
	assert.NoError(t, StatusCode(200).Validate())
	assert.NoError(t, Body(TypeRegex, "a", `^\d+$`).Validate())
	assert.NoError(t, Body(TypeJSONSchema, "", "{}").Validate())

	assert.Error(t, StatusCode(42).Validate())
	assert.Error(t, Body(TypeRegex, "a", "(").Validate())
	assert.Error(t, Body(TypeEquals, "", "x").Validate())
	assert.Error(t, Body(TypeJSONSchema, "", "").Validate())
	assert.Error(t, Assert{Type: "bogus"}.Validate())
}
