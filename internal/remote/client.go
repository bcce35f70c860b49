package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/nao1215/acctexport/internal/model"
)

// ReportPath is the account service endpoint serving the data report.
const ReportPath = "/v2/accounts/data_report"

// DefaultMaxBodySize caps the report body read from the service.
const DefaultMaxBodySize int64 = 16 * 1024 * 1024

// DefaultUserAgent identifies this tool to the account service.
const DefaultUserAgent = "acctexport"

// Client talks to the account service.
type Client struct {
	// endpoint is the absolute report URL.
	endpoint string

	httpClient  *http.Client
	username    string
	password    string
	headers     map[string]string
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client, for example one routed through Tor.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCredentials sets the HTTP basic auth credentials.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithHeaders adds extra request headers.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the largest accepted response body in bytes.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient returns a client for the account service at serverURL.
func NewClient(serverURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidServerURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidServerURL, serverURL)
	}
	u.Path = strings.TrimRight(u.Path, "/") + ReportPath
	u.RawQuery = ""
	u.Fragment = ""

	c := &Client{
		endpoint:    u.String(),
		httpClient:  http.DefaultClient,
		headers:     make(map[string]string),
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the report URL this client requests.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// FetchReport downloads the current account data report.
// Every failure wraps ErrIO.
func (c *Client) FetchReport(ctx context.Context) (model.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	c.logger.Debug("requesting account data report", "url", c.endpoint, "username", c.username)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch report: %w", &StatusError{StatusCode: resp.StatusCode, Status: resp.Status})
	}

	// One extra byte tells an exact-size body from an oversized one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrIO, err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("%w: report exceeds %d bytes", ErrIO, c.maxBodySize)
	}

	doc := model.Document(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: response is not a JSON object", ErrIO)
	}

	c.logger.Debug("account data report received", "bytes", len(body), "report_id", doc.ReportID())
	return doc, nil
}
