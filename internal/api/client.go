// Package api is the HTTP client for the remote template service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/deckfill/internal/logger"
)

// Client talks to the template service. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets a per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https: %q", baseURL)
	}
	c := &Client{baseURL: u, http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// call describes one request and how to report its failure.
type call struct {
	op       string
	method   string
	path     string
	query    url.Values
	body     io.Reader
	ctype    string
	fallback string
	// generic replaces server error text with fallback, for calls whose
	// server messages are not meant for users.
	generic bool
}

// do sends the request and returns the response on a 2xx status. The
// caller closes the body.
func (c *Client) do(ctx context.Context, cl call) (*http.Response, error) {
	u := *c.baseURL
	u.Path = u.Path + cl.path
	if cl.query != nil {
		u.RawQuery = cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), cl.body)
	if err != nil {
		return nil, &Error{Op: cl.op, Kind: KindNetwork, Message: cl.fallback, Err: err}
	}
	if cl.ctype != "" {
		req.Header.Set("Content-Type", cl.ctype)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug("api %s %s %s", cl.op, cl.method, u.Path)
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("api %s failed: %v", cl.op, err)
		return nil, &Error{Op: cl.op, Kind: KindNetwork, Message: cl.fallback, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &Error{Op: cl.op, Kind: KindServer, Status: resp.StatusCode, Message: cl.fallback}
	if resp.StatusCode == http.StatusGone {
		apiErr.Kind = KindGone
	}
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Err = errors.New(body.Error)
		if !cl.generic {
			apiErr.Message = body.Error
		}
	}
	logger.Warn("api %s: %s", cl.op, apiErr.Detail())
	return nil, apiErr
}

// doJSON sends cl and decodes a JSON response into out (if non-nil).
func (c *Client) doJSON(ctx context.Context, cl call, out any) error {
	resp, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: cl.op, Kind: KindNetwork, Status: resp.StatusCode, Message: cl.fallback, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// jsonBody encodes v for a request body.
func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	return bytes.NewReader(data), nil
}

// formFile is one file part of a multipart request.
type formFile struct {
	field    string
	filename string
	data     []byte
}

// multipartBody builds a multipart/form-data body with the given files
// and fields, in that order.
func multipartBody(files []formFile, fields [][2]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		if err != nil {
			return nil, "", fmt.Errorf("creating form file: %w", err)
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, "", fmt.Errorf("writing form file: %w", err)
		}
	}
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("writing form field %s: %w", kv[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
