package env

import (
	"testing"

	"github.com/abdul-hamid-achik/apictl/packages/response"
	"github.com/stretchr/testify/assert"
)

func helloApplicator() *Applicator {
	store := response.NewStore()
	store.Put("hello", &response.Response{
		StatusCode: 200,
		Body:       `{ "name": "Galaxy", "age": "13.61 Billion" }`,
	})
	return NewApplicator(Context{"name": "World", "age": "4.543 Billion"}, store)
}

func TestApply(t *testing.T) {
	app := helloApplicator()

	got := app.Apply("Hello, ${name}! You are ${age} years old. My name is ${response.hello.name}. I am ${response.hello.age} years old.${response.hello.some.bad.one}${response.}")

	assert.Equal(t, "Hello, World! You are 4.543 Billion years old. My name is Galaxy. I am 13.61 Billion years old.", got)
}

func TestApplyScenario(t *testing.T) {
	store := response.NewStore()
	store.Put("hello", &response.Response{Body: `{"name":"Galaxy"}`})
	app := NewApplicator(Context{"name": "World"}, store)

	assert.Equal(t, "Hi World, Galaxy", app.Apply("Hi ${name}, ${response.hello.name}"))
}

func TestApplyWhitespaceInsensitive(t *testing.T) {
	app := helloApplicator()
	want := app.Apply("${name}")

	for _, in := range []string{"${ name }", "${   name  }", "${name }", "${    name}", "${\tname\t}"} {
		assert.Equal(t, want, app.Apply(in), in)
	}
}

func TestApplyMissingResolvesEmpty(t *testing.T) {
	app := helloApplicator()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown variable", "[${nope}]", "[]"},
		{"unknown response", "[${response.missing.name}]", "[]"},
		{"response without path", "[${response.hello}]", "[]"},
		{"response with empty path", "[${response.hello.}]", "[]"},
		{"bare prefix", "[${response.}]", "[]"},
		{"missing body path", "[${response.hello.planet}]", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, app.Apply(tt.input))
		})
	}
}

func TestApplyResponsePath(t *testing.T) {
	store := response.NewStore()
	store.Put("R", &response.Response{Body: `{"a":{"b":"x"}}`})
	app := NewApplicator(nil, store)

	assert.Equal(t, "x", app.Apply("${response.R.a.b}"))
	assert.Equal(t, "", app.Apply("${response.R.a.c}"))
}

func TestApplyNonJSONBody(t *testing.T) {
	store := response.NewStore()
	store.Put("html", &response.Response{Body: "<html></html>"})
	app := NewApplicator(nil, store)

	assert.Equal(t, "", app.Apply("${response.html.title}"))
}

func TestApplyNoRecursiveSubstitution(t *testing.T) {
	app := NewApplicator(Context{"a": "${b}", "b": "nested"}, nil)
	assert.Equal(t, "${b}", app.Apply("${a}"))
}

func TestApplyLeavesLiteralTextAlone(t *testing.T) {
	app := NewApplicator(nil, nil)
	for _, in := range []string{
		"plain text",
		"$name and {name} and $ {name}",
		"${not closed",
		"${ spaced name }",
		"${a/b}",
		"",
	} {
		assert.Equal(t, in, app.Apply(in), in)
	}
}

func TestApplySeesLiveStore(t *testing.T) {
	app := NewApplicator(nil, nil)
	assert.Equal(t, "", app.Apply("${response.login.token}"))

	app.AddResponse("login", &response.Response{Body: `{"token":"t0k"}`})
	assert.Equal(t, "t0k", app.Apply("${response.login.token}"))
}

func TestApplyAll(t *testing.T) {
	app := NewApplicator(Context{"token": "abc"}, nil)
	got := app.ApplyAll(map[string]string{"Authorization": "Bearer ${token}", "Accept": "*/*"})
	assert.Equal(t, map[string]string{"Authorization": "Bearer abc", "Accept": "*/*"}, got)
	assert.Nil(t, app.ApplyAll(nil))
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Hello, ${name}", []string{"name"}},
		{"Hello, ${   name  }! how are you?", []string{"name"}},
		{"Hello, ${ name }! How are you, ${    name}?", []string{"name", "name"}},
		{"Hello, ${ cheese_and_toast }${toast_and_cheese}", []string{"cheese_and_toast", "toast_and_cheese"}},
		{"howdy, ${ responses.get.name }", []string{"responses.get.name"}},
		{"${kebab-case.key}", []string{"kebab-case.key"}},
		{"nothing here", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Placeholders(tt.input))
		})
	}
}
