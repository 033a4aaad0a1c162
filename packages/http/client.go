package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"time"

	"pkt.systems/pslog"

	"github.com/abdul-hamid-achik/apictl/packages/request"
	"github.com/abdul-hamid-achik/apictl/packages/response"
)

const (
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
)

var (
	// ErrUnsupportedMethod is returned for any method other than GET, POST, PUT or DELETE.
	ErrUnsupportedMethod = errors.New("unsupported method")
	// ErrNonASCIIHeader is returned when a response header value is not visible ASCII.
	ErrNonASCIIHeader = errors.New("non-ascii header value")
)

type Client struct {
	httpClient  *http.Client
	validateSSL bool
	proxyURL    string
	baseDir     string
	logger      pslog.Base
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		validateSSL: true,
		logger:      pslog.New(io.Discard),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient != nil {
		return c
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	if !c.validateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	if c.proxyURL != "" {
		if proxyURL, err := ParseProxy(c.proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		} else {
			c.logger.Warn("ignoring proxy", "error", err)
		}
	}

	c.httpClient = &http.Client{Transport: transport}
	return c
}

// ParseProxy parses raw as a proxy URL. Scheme and host are required.
func ParseProxy(raw string) (*neturl.URL, error) {
	u, err := neturl.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid proxy url %q: scheme and host are required", raw)
	}
	return u, nil
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// WithHTTPClient replaces the underlying client. Proxy and SSL options are
// ignored when it is set.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseDir resolves relative body file paths against dir.
func WithBaseDir(dir string) ClientOption {
	return func(c *Client) {
		c.baseDir = dir
	}
}

func WithLogger(logger pslog.Base) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Execute sends t, which must already be rendered, and returns the reply.
func (c *Client) Execute(ctx context.Context, t *request.Template) (*response.Response, error) {
	httpReq, err := c.BuildRequest(ctx, t)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("dispatching request", "method", httpReq.Method, "url", httpReq.URL.String())

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", httpReq.Method, httpReq.URL, err)
	}
	defer httpResp.Body.Close()

	resp, err := convertResponse(httpResp)
	if err != nil {
		return nil, err
	}
	resp.Duration = time.Since(start)

	c.logger.Debug("received response", "status", resp.StatusCode, "duration", resp.Duration)
	return resp, nil
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}
