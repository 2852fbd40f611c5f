package contextapi

import (
	"net/url"
	"strings"
)

// Well-known resource paths and parameters.
const (
	PathContext     = "/context"
	PathUserContext = "/api/context"

	ParamType     = "type"
	ParamUsername = "username"

	TypeContentStyle = "content_style"
)

// Query describes one request: the resource path plus optional URL parameters.
type Query struct {
	Path   string
	Params map[string]string
}

// encode returns the URL-encoded parameters, skipping blank keys.
func (q Query) encode() string {
	if len(q.Params) == 0 {
		return ""
	}
	values := make(url.Values, len(q.Params))
	for k, v := range q.Params {
		if strings.TrimSpace(k) == "" {
			continue
		}
		values.Set(k, v)
	}
	return values.Encode()
}
