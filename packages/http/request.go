package http

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/apictl/packages/request"
)

var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// BuildRequest converts a rendered template into an *http.Request without
// sending it.
func (c *Client) BuildRequest(ctx context.Context, t *request.Template) (*http.Request, error) {
	if !supportedMethods[t.Method] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, t.Method)
	}

	target, err := BuildURL(t.URL, t.QueryParameters)
	if err != nil {
		return nil, err
	}
	if err := ValidateURL(target); err != nil {
		return nil, err
	}

	body, contentType, size, err := c.encodeBody(t.Body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, t.Method, target, body)
	if err != nil {
		if body != nil {
			body.Close()
		}
		return nil, err
	}
	if size >= 0 && body != nil {
		httpReq.ContentLength = size
	}

	for k, v := range t.Headers {
		httpReq.Header.Set(k, v)
	}

	if contentType != "" {
		// multipart boundaries must win; form only fills a missing header
		if t.Body.Kind() == request.BodyMultipart || httpReq.Header.Get("Content-Type") == "" {
			httpReq.Header.Set("Content-Type", contentType)
		}
	}

	return httpReq, nil
}

// BuildURL merges params into the query string of rawURL.
func BuildURL(rawURL string, params map[string]string) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}

	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// encodeBody returns the body reader, its content type and its length, or -1
// when the length is unknown.
func (c *Client) encodeBody(b request.Body) (io.ReadCloser, string, int64, error) {
	switch b.Kind() {
	case request.BodyForm:
		encoded := encodeForm(b.Form)
		return io.NopCloser(strings.NewReader(encoded)), "application/x-www-form-urlencoded", int64(len(encoded)), nil

	case request.BodyRaw:
		if b.Raw.Kind == request.RawFile {
			f, err := os.Open(c.resolvePath(b.Raw.Path))
			if err != nil {
				return nil, "", 0, fmt.Errorf("raw body: %w", err)
			}
			info, err := f.Stat()
			if err != nil {
				f.Close()
				return nil, "", 0, fmt.Errorf("raw body: %w", err)
			}
			return f, "", info.Size(), nil
		}
		return io.NopCloser(strings.NewReader(b.Raw.Data)), "", int64(len(b.Raw.Data)), nil

	case request.BodyMultipart:
		return c.buildMultipartBody(b.Multipart)

	default:
		return nil, "", 0, nil
	}
}

func encodeForm(data map[string]string) string {
	values := url.Values{}
	for k, v := range data {
		values.Set(k, v)
	}
	return values.Encode()
}

// buildMultipartBody streams the fields through a pipe. Files are checked up
// front so a missing file is reported before the request is sent.
func (c *Client) buildMultipartBody(fields map[string]request.Field) (io.ReadCloser, string, int64, error) {
	names := make([]string, 0, len(fields))
	for name, f := range fields {
		if f.Kind == request.FieldFile {
			if _, err := os.Stat(c.resolvePath(f.Path)); err != nil {
				return nil, "", 0, fmt.Errorf("multipart field %q: %w", name, err)
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(c.writeMultipart(writer, names, fields))
	}()

	return pr, writer.FormDataContentType(), -1, nil
}

func (c *Client) writeMultipart(writer *multipart.Writer, names []string, fields map[string]request.Field) error {
	for _, name := range names {
		field := fields[name]
		if field.Kind != request.FieldFile {
			if err := writer.WriteField(name, field.Data); err != nil {
				return err
			}
			continue
		}

		filePath := c.resolvePath(field.Path)
		file, err := os.Open(filePath)
		if err != nil {
			return err
		}

		part, err := writer.CreateFormFile(name, filepath.Base(filePath))
		if err != nil {
			file.Close()
			return err
		}

		_, err = io.Copy(part, file)
		file.Close()
		if err != nil {
			return err
		}
	}
	return writer.Close()
}

func (c *Client) resolvePath(path string) string {
	if c.baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.baseDir, path)
}
