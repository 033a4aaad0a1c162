package assertions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/apictl/packages/response"
)

func createResponse(statusCode uint16, body string, headers map[string]string) *response.Response {
	if headers == nil {
		headers = map[string]string{"content-type": "application/json"}
	}
	return &response.Response{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       body,
	}
}

const userBody = `{"user": {"name": "John Smith", "age": 30, "tags": ["a", "b"]}, "token": "abc123"}`

func TestEvaluator(t *testing.T) {
	resp := createResponse(200, userBody, map[string]string{
		"content-type": "application/json; charset=utf-8",
		"x-request-id": "42",
	})

	tests := []struct {
		name    string
		assert  Assert
		message string
	}{
		{"status ok", StatusCode(200), ""},
		{"status mismatch", StatusCode(201), "got status code 200, want 201"},

		{"header contains", HeaderContains("content-type", "json"), ""},
		{"header contains mismatch", HeaderContains("content-type", "xml"),
			"header 'content-type' got 'application/json; charset=utf-8', does not contain 'xml'"},
		{"header equals", HeaderEquals("x-request-id", "42"), ""},
		{"header equals mismatch", HeaderEquals("x-request-id", "7"), "header 'x-request-id' got '42', want '7'"},
		{"header lookup is case-sensitive", HeaderEquals("X-Request-Id", "42"), "header not found: X-Request-Id"},

		{"contains", Body(TypeContains, "user.name", "Smith"), ""},
		{"contains mismatch", Body(TypeContains, "user.name", "Doe"),
			"body 'user.name' got 'John Smith', does not contain 'Doe'"},
		{"equals", Body(TypeEquals, "user.age", "30"), ""},
		{"equals array element", Body(TypeEquals, "user.tags.1", "b"), ""},
		{"equals mismatch", Body(TypeEquals, "token", "x"), "body 'token' got 'abc123', want 'x'"},
		{"not equals", Body(TypeNotEquals, "token", "x"), ""},
		{"not equals mismatch", Body(TypeNotEquals, "token", "abc123"),
			"body 'token' got 'abc123', did not want 'abc123'"},
		{"has prefix", Body(TypeHasPrefix, "token", "abc"), ""},
		{"has prefix mismatch", Body(TypeHasPrefix, "token", "123"),
			"body 'token' got 'abc123', does not have prefix '123'"},
		{"has suffix", Body(TypeHasSuffix, "token", "123"), ""},
		{"has suffix mismatch", Body(TypeHasSuffix, "token", "abc"),
			"body 'token' got 'abc123', does not have suffix 'abc'"},
		{"regex", Body(TypeRegex, "token", `^[a-z]+\d+$`), ""},
		{"regex mismatch", Body(TypeRegex, "token", `^\d+$`),
			`body 'token' got 'abc123', does not match regex '^\d+$'`},
		{"missing key", Body(TypeEquals, "user.email", "x"), "key 'user.email' not found in response"},
		{"index out of range", Body(TypeEquals, "user.tags.5", "x"), "key 'user.tags.5' not found in response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewEvaluator(resp).Evaluate(tt.assert)
			assert.Equal(t, tt.message == "", result.Passed)
			assert.Equal(t, tt.message, result.Message)
			assert.Equal(t, tt.assert.String(), result.Name)
		})
	}
}

func TestEvaluator_InvalidRegex(t *testing.T) {
	result := NewEvaluator(createResponse(200, userBody, nil)).Evaluate(Body(TypeRegex, "token", "("))
	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "invalid regex '('")
}

func TestEvaluator_NonJSONBody(t *testing.T) {
	result := NewEvaluator(createResponse(200, "plain text", nil)).Evaluate(Body(TypeContains, "a", "b"))
	assert.False(t, result.Passed)
	assert.Equal(t, "key 'a' not found in response", result.Message)
}

func TestEvaluator_JSONSchema(t *testing.T) {
	schema := `{
		"type": "object",
		"required": ["name", "age"],
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "integer"}
		}
	}`

	t.Run("sub document passes", func(t *testing.T) {
		result := NewEvaluator(createResponse(200, userBody, nil)).Evaluate(Body(TypeJSONSchema, "user", schema))
		assert.True(t, result.Passed, result.Message)
	})

	t.Run("whole body fails", func(t *testing.T) {
		result := NewEvaluator(createResponse(200, userBody, nil)).Evaluate(Body(TypeJSONSchema, "", schema))
		assert.False(t, result.Passed)
		assert.Contains(t, result.Message, "schema validation failed")
		assert.Contains(t, result.Message, "name")
	})

	t.Run("schema file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "user.json"), []byte(schema), 0o644))

		e := NewEvaluator(createResponse(200, userBody, nil), WithBaseDir(dir))
		result := e.Evaluate(Body(TypeJSONSchema, "user", "file://user.json"))
		assert.True(t, result.Passed, result.Message)
	})

	t.Run("missing schema file", func(t *testing.T) {
		result := NewEvaluator(createResponse(200, userBody, nil)).
			Evaluate(Body(TypeJSONSchema, "user", "file://"+filepath.Join(t.TempDir(), "none.json")))
		assert.False(t, result.Passed)
		assert.Contains(t, result.Message, "failed to read schema file")
	})

	t.Run("body not json", func(t *testing.T) {
		result := NewEvaluator(createResponse(200, "<html>", nil)).Evaluate(Body(TypeJSONSchema, "", schema))
		assert.False(t, result.Passed)
		assert.Equal(t, "response body is not valid JSON", result.Message)
	})
}

func TestEvaluateAll(t *testing.T) {
	results := EvaluateAll(createResponse(404, `{}`, nil), []Assert{
		StatusCode(404),
		StatusCode(200),
		HeaderContains("content-type", "json"),
	})

	require.Len(t, results, 3)
	assert.True(t, results[0].Passed)
	assert.False(t, results[1].Passed)
	assert.True(t, results[2].Passed)
}
