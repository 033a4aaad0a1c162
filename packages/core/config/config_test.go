package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/apictl/packages/assertions"
	"github.com/abdul-hamid-achik/apictl/packages/core/env"
	"github.com/abdul-hamid-achik/apictl/packages/request"
	"github.com/abdul-hamid-achik/apictl/packages/response"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const baseConfig = `contexts:
  dev:
    host: localhost
    user: ada
  prod:
    host: example.com
requests:
  login:
    url: http://${host}/login
    method: POST
    body:
      type: form
      data:
        user: ${user}
tests:
  auth:
    steps:
      - name: log in
        request: login
        asserts:
          - type: status_code
            value: 200
`

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "apictl.yaml", baseConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"dev", "prod"}, cfg.ContextNames())
	assert.Equal(t, env.Context{"host": "localhost", "user": "ada"}, cfg.Contexts["dev"])

	login, err := cfg.Requests.Get("login")
	require.NoError(t, err)
	assert.Equal(t, "POST", login.Method)
	assert.Equal(t, request.FormBody(map[string]string{"user": "${user}"}), login.Body)

	auth, err := cfg.Tests.Get("auth")
	require.NoError(t, err)
	require.Len(t, auth.Steps, 1)
	assert.Equal(t, []assertions.Assert{assertions.StatusCode(200)}, auth.Steps[0].Asserts)
	assert.Equal(t, []string{path}, cfg.Files)
}

func TestLoadDirMergesInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "10-base.yaml", baseConfig)
	writeFile(t, dir, "20-override.yml", `contexts:
  dev:
    host: dev.internal
requests:
  health:
    url: http://${host}/health
`)
	writeFile(t, dir, "notes.txt", "not: [yaml")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	cfg, err := Load(dir)
	require.NoError(t, err)

	// contexts are replaced whole, not merged key by key
	assert.Equal(t, env.Context{"host": "dev.internal"}, cfg.Contexts["dev"])
	assert.Equal(t, []string{"health", "login"}, cfg.Requests.Names())
	assert.Equal(t, request.DefaultMethod, cfg.Requests["health"].Method)
	assert.Equal(t, []string{"auth"}, cfg.Tests.Names())
	assert.Len(t, cfg.Files, 2)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)

	_, err = Load(t.TempDir())
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", "requests:\n  x:\n    url: u\n    body:\n      type: carrier-pigeon\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
	assert.Contains(t, err.Error(), "carrier-pigeon")
	assert.NotErrorIs(t, err, ErrConfigNotFound)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.NotNil(t, cfg.Contexts)
	assert.NotNil(t, cfg.Requests)
	assert.NotNil(t, cfg.Tests)
}

func TestContext(t *testing.T) {
	cfg, err := Parse([]byte(baseConfig))
	require.NoError(t, err)

	ctx, err := cfg.Context(env.Context{"user": "from-env", "extra": "1"}, "dev", "prod")
	require.NoError(t, err)
	assert.Equal(t, env.Context{"host": "example.com", "user": "ada", "extra": "1"}, ctx)

	_, err = cfg.Context(nil, "qa")
	assert.ErrorIs(t, err, env.ErrContextNotFound)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(baseConfig))
	require.NoError(t, err)

	data, err := cfg.Marshal()
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg.Contexts, again.Contexts)
	assert.Equal(t, cfg.Requests, again.Requests)
	assert.Equal(t, cfg.Tests, again.Tests)
}

func TestBaseDir(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "apictl.yaml", baseConfig)

	assert.Equal(t, dir, BaseDir(dir))
	assert.Equal(t, dir, BaseDir(path))
}

func TestResponsesCache(t *testing.T) {
	cache := filepath.Join(t.TempDir(), ".apictl")

	store, err := LoadResponses(cache)
	require.NoError(t, err)
	assert.Zero(t, store.Len())
	assert.DirExists(t, ResponsesDir(cache))

	resp := &response.Response{StatusCode: 201, ProtocolVersion: "HTTP/1.1", Headers: map[string]string{"x": "y"}, Body: `{"id":1}`}
	require.NoError(t, SaveResponse(cache, "create", resp))

	store, err = LoadResponses(cache)
	require.NoError(t, err)
	got, ok := store.Get("create")
	require.True(t, ok)
	assert.Equal(t, resp, got)
}

func TestWriteExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)

	require.NoError(t, WriteExample(path, false))
	assert.ErrorIs(t, WriteExample(path, false), ErrConfigExists)
	require.NoError(t, WriteExample(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"login", "me"}, cfg.Requests.Names())
	assert.Empty(t, cfg.Validate())
}
