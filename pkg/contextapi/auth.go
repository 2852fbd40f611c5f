package contextapi

import "strings"

// Header names used by the two authentication schemes.
const (
	HeaderAuthorization = "Authorization"
	HeaderClientID      = "X-Client-ID"
	HeaderAPIKey        = "x-api-key"
)

// Authenticator attaches credentials to an outbound request.
// The concrete variants are BearerAuth and APIKeyAuth.
type Authenticator interface {
	// Scheme names the variant, e.g. "bearer" or "api_key".
	Scheme() string
	// Headers returns the headers to attach to every request.
	Headers() map[string]string
	validate() error
}

// BearerAuth sends an access token as a bearer credential, optionally paired
// with a client identifier header.
type BearerAuth struct {
	ClientID string
	Token    string
}

func (BearerAuth) Scheme() string { return "bearer" }

func (b BearerAuth) Headers() map[string]string {
	h := map[string]string{
		HeaderAuthorization: "Bearer " + strings.TrimSpace(b.Token),
	}
	if id := strings.TrimSpace(b.ClientID); id != "" {
		h[HeaderClientID] = id
	}
	return h
}

func (b BearerAuth) validate() error {
	if strings.TrimSpace(b.Token) == "" {
		return &ConfigurationError{Field: "token", Reason: "bearer token is required"}
	}
	return nil
}

// APIKeyAuth sends a standalone API key header.
type APIKeyAuth struct {
	Key string
}

func (APIKeyAuth) Scheme() string { return "api_key" }

func (a APIKeyAuth) Headers() map[string]string {
	return map[string]string{HeaderAPIKey: strings.TrimSpace(a.Key)}
}

func (a APIKeyAuth) validate() error {
	if strings.TrimSpace(a.Key) == "" {
		return &ConfigurationError{Field: "api_key", Reason: "api key is required"}
	}
	return nil
}
