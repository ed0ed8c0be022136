// Package registry implements ports.Registry over the registry's HTTP/JSON API.
//
// Endpoints, relative to the registry URL:
//
//	GET    /api/v1/packages/{name}                              versions of a package
//	GET    /api/v1/packages/{name}/{version}/{platform}/archive archive download
//	POST   /api/v1/sessions                                     login
//	POST   /api/v1/packages                                     publish an archive
//	DELETE /api/v1/packages/{name}/{version}/yank               yank
//	PUT    /api/v1/packages/{name}/{version}/yank               unyank
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	apiPrefix          = "/api/v1"
	defaultTimeout     = 30 * time.Second
	defaultRetries     = 3
	maxErrorBodyBytes  = 4 << 10
	archiveContentType = "application/octet-stream"
)

// Client talks to a package registry. It implements ports.Registry.
type Client struct {
	baseURL    string
	http       *http.Client
	retries    int
	newBackOff func() backoff.BackOff
	log        ports.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithRetries sets how many times a transient failure is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		c.retries = n
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithBackOff replaces the delay policy between retries.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) {
		c.newBackOff = fn
	}
}

// WithLogger reports retries to log.
func WithLogger(log ports.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client for the registry at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		retries: defaultRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the registry base URL.
func (c *Client) URL() string {
	return c.baseURL
}

func (c *Client) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.baseURL + apiPrefix + "/" + strings.Join(escaped, "/")
}

// do sends the request built by build, retrying transport errors, 5xx and 429
// responses with exponential backoff. Any other response is returned to the caller,
// which owns its body.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	op := func() error {
		req, err := build()
		if err != nil {
			return backoff.Permanent(err)
		}
		r, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return domain.Fail(domain.ErrNetwork, "registry unreachable", "url", req.URL.String(), "cause", err.Error())
		}
		if r.StatusCode >= http.StatusInternalServerError || r.StatusCode == http.StatusTooManyRequests {
			msg := serverMessage(r)
			return domain.Fail(domain.ErrNetwork, "registry unavailable",
				"url", req.URL.String(), "status", r.StatusCode, "message", msg)
		}
		resp = r
		return nil
	}

	var policy backoff.BackOff = c.newBackOff()
	if c.retries >= 0 {
		policy = backoff.WithMaxRetries(policy, uint64(c.retries))
	}
	notify := func(err error, wait time.Duration) {
		if c.log != nil {
			c.log.Debug("retrying registry request", "error", err.Error(), "wait", wait.String())
		}
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(policy, ctx), notify); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, zerr.Wrap(err, "registry request cancelled")
		}
		return nil, err
	}
	return resp, nil
}

// serverMessage reads a short diagnostic from an error response and closes its body.
func serverMessage(r *http.Response) string {
	defer func() { _ = r.Body.Close() }()
	data, _ := io.ReadAll(io.LimitReader(r.Body, maxErrorBodyBytes))

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(data))
}

// statusError classifies a non-success response. The body is consumed.
func statusError(r *http.Response, what string, keyvals ...any) error {
	msg := serverMessage(r)
	keyvals = append(keyvals, "status", r.StatusCode)
	if msg != "" {
		keyvals = append(keyvals, "message", msg)
	}
	switch r.StatusCode {
	case http.StatusNotFound:
		return domain.Fail(domain.ErrNotFound, what, keyvals...)
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.Fail(domain.ErrPermission, what, keyvals...)
	default:
		return domain.Fail(domain.ErrRegistryRequestFailed, what, keyvals...)
	}
}

func decodeJSON(r *http.Response, v any) error {
	defer func() { _ = r.Body.Close() }()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Fail(domain.ErrRegistryParseFailed, "failed to decode registry response",
			"url", r.Request.URL.String(), "cause", err.Error())
	}
	return nil
}

func authorize(req *http.Request, session *domain.Session) {
	req.Header.Set("Authorization", "Bearer "+session.Token)
}

func requireSession(session *domain.Session) error {
	if !session.Valid() {
		return domain.Fail(domain.ErrNotLoggedIn, "this operation needs a registry session; run parcel login")
	}
	return nil
}
