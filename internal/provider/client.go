// Package provider talks to the external identity, organization and billing
// provider (a Better Auth compatible REST API).
//
// Every call forwards the inbound request's headers so the provider resolves
// the caller's session from its own cookie or bearer token. The client does
// not retry and sets no deadline of its own unless a timeout is configured.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// maxResponseBytes caps how much of a provider answer is read.
const maxResponseBytes = 10 << 20

// strippedHeaders are never forwarded: they describe the inbound hop or the
// inbound body, not the caller.
var strippedHeaders = []string{
	"Connection",
	"Content-Length",
	"Content-Type",
	"Accept-Encoding",
	"Host",
	"Keep-Alive",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Client is safe for concurrent use; it holds no per-request state.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client rooted at baseURL, e.g. http://auth:3001/api/auth.
// A zero timeout means outbound calls are bounded only by the transport.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			// Records each call as an external segment of the current
			// New Relic transaction, if any.
			Transport: newrelic.NewRoundTripper(nil),
		},
	}
}

// Forward binds the client to one inbound request.
func (c *Client) Forward(headers http.Header, logger *zerolog.Logger) *Forwarder {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Forwarder{client: c, headers: headers, logger: logger}
}

// Ping calls the provider's /ok endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/ok", nil, nil, nil, nil)
	return err
}

// Forwarder performs provider calls on behalf of one inbound request.
type Forwarder struct {
	client  *Client
	headers http.Header
	logger  *zerolog.Logger
}

// Reply is what a successful call hands back besides the decoded body.
type Reply struct {
	Status int
	Header http.Header
}

// Cookies returns the Set-Cookie headers of the reply, so session changes made
// by the provider (sign-in, sign-out, impersonation) reach the client.
func (r *Reply) Cookies() []*http.Cookie {
	if r == nil {
		return nil
	}
	return (&http.Response{Header: r.Header}).Cookies()
}

// Get issues a GET with the given query and decodes the JSON answer into out.
func (f *Forwarder) Get(ctx context.Context, path string, query url.Values, out any) (*Reply, error) {
	return f.call(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with body encoded as JSON and decodes the answer into out.
func (f *Forwarder) Post(ctx context.Context, path string, body any, out any) (*Reply, error) {
	if body == nil {
		body = struct{}{}
	}
	return f.call(ctx, http.MethodPost, path, nil, body, out)
}

func (f *Forwarder) call(ctx context.Context, method, path string, query url.Values, body any, out any) (*Reply, error) {
	start := time.Now()

	reply, err := f.client.do(ctx, method, path, query, body, f.headers, out)

	event := f.logger.Debug()
	if err != nil {
		event = f.logger.Warn().Err(err)
	}

	status := 0
	if reply != nil {
		status = reply.Status
	} else if perr, ok := err.(*Error); ok {
		status = perr.Status
	}

	event.
		Str("provider_method", method).
		Str("provider_path", path).
		Int("provider_status", status).
		Dur("provider_duration", time.Since(start)).
		Msg("provider call")

	return reply, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, headers http.Header, out any) (*Reply, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}

	forwardHeaders(req.Header, headers)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Method: method, Path: path, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(method, path, resp.StatusCode, raw)
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, &Error{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	return &Reply{Status: resp.StatusCode, Header: resp.Header}, nil
}

// forwardHeaders copies the inbound headers unchanged, minus those describing
// the inbound connection or body.
func forwardHeaders(dst, src http.Header) {
	for name, values := range src {
		dst[name] = append([]string(nil), values...)
	}
	for _, name := range strippedHeaders {
		dst.Del(name)
	}
}
