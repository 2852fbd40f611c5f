package contextapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxMessageBytes = 1024

// ConfigurationError reports a missing or invalid setting detected before any
// request is sent.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("contextapi: invalid configuration (%s): %s", e.Field, e.Reason)
}

// TransportError reports a request that never reached the server or never
// returned from it: DNS failures, refused connections, timeouts, cancellation.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("contextapi: request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIResponseError reports a non-2xx status. Body holds whatever the server sent.
type APIResponseError struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

func (e *APIResponseError) Error() string {
	msg := e.Message()
	if msg == "" {
		return fmt.Sprintf("contextapi: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("contextapi: unexpected status %d: %s", e.StatusCode, msg)
}

// NotFound reports whether the server answered 404.
func (e *APIResponseError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// JSONBody decodes the body when it is valid JSON.
func (e *APIResponseError) JSONBody() (any, bool) {
	if !json.Valid(e.Body) {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(e.Body, &v); err != nil {
		return nil, false
	}
	return v, true
}

// Message summarizes the body for humans. HTML error pages (typically from a
// proxy in front of the API) collapse to their <title>.
func (e *APIResponseError) Message() string {
	body := bytes.TrimSpace(e.Body)
	if len(body) == 0 {
		return ""
	}
	if looksLikeHTML(e.ContentType, body) {
		if title := htmlTitle(body); title != "" {
			return title
		}
	}
	if len(body) > maxMessageBytes {
		body = trimPartialRune(body[:maxMessageBytes])
	}
	return string(body)
}

// trimPartialRune drops a multi-byte character cut off at the end of b.
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax-1 && len(b) > 0; i++ {
		if r, size := utf8.DecodeLastRune(b); r != utf8.RuneError || size != 1 {
			break
		}
		b = b[:len(b)-1]
	}
	return b
}

// DecodeError reports a success status whose body is not valid JSON.
type DecodeError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("contextapi: decode response (status %d): %v", e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsNotFound reports whether err carries a 404 APIResponseError.
func IsNotFound(err error) bool {
	var apiErr *APIResponseError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}

func looksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	prefix := strings.ToLower(string(body[:min(len(body), 64)]))
	return strings.HasPrefix(prefix, "<!doctype html") || strings.HasPrefix(prefix, "<html")
}

func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
