// Package contextapi is a thin client for the Jean context API.
//
// A Client is bound to one base URL and one authentication scheme. It issues
// a single GET per call and hands back the response body untouched; it never
// retries, caches, or logs. Failures come back as one of ConfigurationError,
// TransportError, APIResponseError or DecodeError.
//
//	client, err := contextapi.New(contextapi.DefaultAPIBase, contextapi.BearerAuth{
//	    ClientID: clientID,
//	    Token:    token,
//	})
//	if err != nil {
//	    return err
//	}
//	doc, err := client.ContentStyle(ctx)
package contextapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/context-probe/pkg/httpclient"
)

// Default hosts for the two deployments of the API.
const (
	DefaultAPIBase    = "https://api.jean-technologies.com/v2"
	DefaultDeployBase = "https://jean-technologies.up.railway.app"
)

const defaultTimeout = 30 * time.Second

// Client performs authenticated GET requests against a fixed base URL.
type Client struct {
	baseURL string
	auth    Authenticator
	http    httpclient.Client
	timeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default resty transport.
func WithHTTPClient(c httpclient.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout sets the timeout of the default transport. It has no effect
// when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// New validates the configuration and returns a client bound to baseURL.
func New(baseURL string, auth Authenticator, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, &ConfigurationError{Field: "base_url", Reason: "base URL is required"}
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &ConfigurationError{Field: "base_url", Reason: "base URL must be absolute: " + baseURL}
	}
	if auth == nil {
		return nil, &ConfigurationError{Field: "auth", Reason: "authenticator is required"}
	}
	if err := auth.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: baseURL,
		auth:    auth,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(httpclient.Options{Timeout: c.timeout})
	}
	return c, nil
}

// BaseURL returns the host the client is bound to.
func (c *Client) BaseURL() string { return c.baseURL }

// Scheme returns the name of the configured authentication variant.
func (c *Client) Scheme() string { return c.auth.Scheme() }

// RequestURL returns the absolute URL Fetch would request for q.
func (c *Client) RequestURL(q Query) string {
	path := q.Path
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := c.baseURL + path
	if encoded := q.encode(); encoded != "" {
		target += "?" + encoded
	}
	return target
}

// Fetch issues one GET for q and returns the raw JSON body.
// A 2xx response with an empty body yields a nil document and no error.
func (c *Client) Fetch(ctx context.Context, q Query) (json.RawMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	target := c.RequestURL(q)

	headers := c.auth.Headers()
	headers["Accept"] = "application/json"

	resp, err := c.http.Get(ctx, target, headers)
	if err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}

	status := resp.StatusCode()
	body := resp.Body()
	if status < 200 || status > 299 {
		return nil, &APIResponseError{
			StatusCode:  status,
			Body:        body,
			ContentType: resp.Header("Content-Type"),
		}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, &DecodeError{StatusCode: status, Body: body, Err: errors.New("body is not valid JSON")}
	}
	return json.RawMessage(body), nil
}

// GeneralContext fetches the general context document.
func (c *Client) GeneralContext(ctx context.Context) (json.RawMessage, error) {
	return c.Fetch(ctx, Query{Path: PathContext})
}

// ContentStyle fetches the content-style variant of the context document.
func (c *Client) ContentStyle(ctx context.Context) (json.RawMessage, error) {
	return c.Fetch(ctx, Query{
		Path:   PathContext,
		Params: map[string]string{ParamType: TypeContentStyle},
	})
}

// UserContext fetches the context collected for a single username.
func (c *Client) UserContext(ctx context.Context, username string) (json.RawMessage, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &ConfigurationError{Field: "username", Reason: "username is required"}
	}
	return c.Fetch(ctx, Query{
		Path:   PathUserContext,
		Params: map[string]string{ParamUsername: username},
	})
}
