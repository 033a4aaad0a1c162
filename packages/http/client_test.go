package http

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pkt.systems/pslog"

	"github.com/abdul-hamid-achik/apictl/packages/request"
)

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/test", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "a b", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message": "hello"}`))
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Execute(context.Background(), &request.Template{
		URL:             server.URL + "/test?page=1",
		Method:          "GET",
		QueryParameters: map[string]string{"q": "a b"},
	})

	require.NoError(t, err)
	assert.Equal(t, uint16(200), resp.StatusCode)
	assert.Equal(t, "HTTP/1.1", resp.ProtocolVersion)
	assert.Equal(t, "application/json", resp.Headers["content-type"])
	assert.Equal(t, `{"message": "hello"}`, resp.Body)
	assert.Positive(t, resp.Duration)
}

func TestClient_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		w.Header().Add("X-Multi", "one")
		w.Header().Add("X-Multi", "two")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp, err := NewClient().Execute(context.Background(), &request.Template{
		URL:     server.URL,
		Method:  "DELETE",
		Headers: map[string]string{"Authorization": "Bearer abc"},
	})

	require.NoError(t, err)
	assert.Equal(t, uint16(204), resp.StatusCode)
	assert.Equal(t, "one, two", resp.Headers["x-multi"])
	assert.Empty(t, resp.Body)
}

func TestClient_UnsupportedMethod(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	for _, method := range []string{"PATCH", "HEAD", "OPTIONS", "get", ""} {
		t.Run(method, func(t *testing.T) {
			_, err := NewClient().Execute(context.Background(), &request.Template{URL: server.URL, Method: method})
			assert.ErrorIs(t, err, ErrUnsupportedMethod)
		})
	}
	assert.False(t, called)
}

func TestClient_NonASCIIHeader(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = bufio.NewReader(conn).ReadString('\n')
		_, _ = io.WriteString(conn, "HTTP/1.1 200 OK\r\nX-Name: caf\xc3\xa9\r\nContent-Length: 0\r\nConnection: close\r\n\r\n")
	}()

	_, err = NewClient().Execute(context.Background(), &request.Template{URL: "http://" + ln.Addr().String(), Method: "GET"})
	assert.ErrorIs(t, err, ErrNonASCIIHeader)
}

func TestIsVisibleASCII(t *testing.T) {
	assert.True(t, isVisibleASCII("text/html; charset=utf-8"))
	assert.True(t, isVisibleASCII("a\tb"))
	assert.True(t, isVisibleASCII(""))
	assert.False(t, isVisibleASCII("caf\xc3\xa9"))
	assert.False(t, isVisibleASCII("a\x7fb"))
	assert.False(t, isVisibleASCII("a\x01b"))
}

func TestClient_FormBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		if !assert.NoError(t, r.ParseForm()) {
			return
		}
		assert.Equal(t, "value1", r.PostForm.Get("key1"))
		assert.Equal(t, "value 2", r.PostForm.Get("key2"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	resp, err := NewClient().Execute(context.Background(), &request.Template{
		URL:    server.URL,
		Method: "POST",
		Body:   request.FormBody(map[string]string{"key1": "value1", "key2": "value 2"}),
	})

	require.NoError(t, err)
	assert.Equal(t, uint16(201), resp.StatusCode)
}

func TestClient_RawBodies(t *testing.T) {
	var got []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	headers := map[string]string{"Content-Type": "application/json"}

	t.Run("inline", func(t *testing.T) {
		_, err := NewClient().Execute(context.Background(), &request.Template{
			URL: server.URL, Method: "PUT", Headers: headers,
			Body: request.RawInlineBody(`{"a":1}`),
		})
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(got))
	})

	t.Run("file relative to base dir", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "body.json"), []byte(`{"file":true}`), 0o644))

		_, err := NewClient(WithBaseDir(dir)).Execute(context.Background(), &request.Template{
			URL: server.URL, Method: "POST", Headers: headers,
			Body: request.RawFileBody("body.json"),
		})
		require.NoError(t, err)
		assert.Equal(t, `{"file":true}`, string(got))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewClient().Execute(context.Background(), &request.Template{
			URL: server.URL, Method: "POST",
			Body: request.RawFileBody(filepath.Join(t.TempDir(), "nope.json")),
		})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestClient_MultipartBody(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cat.txt"), []byte("meow"), 0o644))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "hello", r.FormValue("title"))

		file, header, err := r.FormFile("upload")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "cat.txt", header.Filename)
		assert.Equal(t, "meow", string(data))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := NewClient(WithBaseDir(dir)).Execute(context.Background(), &request.Template{
		URL:    server.URL,
		Method: "POST",
		// a user supplied Content-Type must not break the boundary
		Headers: map[string]string{"Content-Type": "text/plain"},
		Body: request.MultipartBody(map[string]request.Field{
			"title":  request.TextField("hello"),
			"upload": request.FileField("cat.txt"),
		}),
	})

	require.NoError(t, err)
	assert.Equal(t, uint16(200), resp.StatusCode)
}

func TestClient_MultipartMissingFile(t *testing.T) {
	_, err := NewClient().Execute(context.Background(), &request.Template{
		URL:    "http://127.0.0.1:1",
		Method: "POST",
		Body: request.MultipartBody(map[string]request.Field{
			"upload": request.FileField(filepath.Join(t.TempDir(), "missing.bin")),
		}),
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestClient_WithHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(WithHTTPClient(server.Client()))
	resp, err := client.Execute(context.Background(), &request.Template{URL: server.URL, Method: "GET"})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Body)
}

func TestClient_WithLogger(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	buf := &bytes.Buffer{}
	logger := pslog.NewWithOptions(buf, pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.DebugLevel})

	_, err := NewClient(WithLogger(logger)).Execute(context.Background(), &request.Template{URL: server.URL, Method: "GET"})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "dispatching request")
}

func TestClient_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient().Execute(context.Background(), &request.Template{URL: url, Method: "GET"})
	assert.Error(t, err)
}

func TestClient_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient().Execute(ctx, &request.Template{URL: server.URL, Method: "GET"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"http", "http://localhost:8080/a", false},
		{"https", "https://example.com", false},
		{"ftp scheme", "ftp://example.com", true},
		{"no scheme", "example.com/path", true},
		{"no host", "http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseProxy(t *testing.T) {
	u, err := ParseProxy("http://proxy.local:3128")
	require.NoError(t, err)
	assert.Equal(t, "proxy.local:3128", u.Host)

	for _, raw := range []string{"proxy.local:3128", "http://", "://bad", "%zz"} {
		_, err := ParseProxy(raw)
		assert.Error(t, err, raw)
	}
}

func TestBuildURL(t *testing.T) {
	got, err := BuildURL("http://h/p?a=1", map[string]string{"b": "2", "a": "3"})
	require.NoError(t, err)
	assert.Equal(t, "http://h/p?a=3&b=2", got)

	got, err = BuildURL("http://h/p", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://h/p", got)
}
