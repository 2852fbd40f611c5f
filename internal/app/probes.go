package app

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/samvad-hq/context-probe/pkg/contextapi"
)

// Probe names.
const (
	ProbeGeneral      = "general"
	ProbeContentStyle = "content-style"
	ProbeUser         = "user"
)

// Probe is one request to issue against a client. Query describes the request
// for logs and the journal; Fetch, when set, performs it through one of the
// client's named operations. Without Fetch the query is sent as-is.
type Probe struct {
	Name   string
	Client *contextapi.Client
	Query  contextapi.Query
	Fetch  func(ctx context.Context) (json.RawMessage, error)
}

func (p Probe) fetch(ctx context.Context) (json.RawMessage, error) {
	if p.Fetch != nil {
		return p.Fetch(ctx)
	}
	return p.Client.Fetch(ctx, p.Query)
}

// GeneralProbe fetches the general context.
func GeneralProbe(c *contextapi.Client) Probe {
	return Probe{
		Name:   ProbeGeneral,
		Client: c,
		Query:  contextapi.Query{Path: contextapi.PathContext},
		Fetch:  c.GeneralContext,
	}
}

// ContentStyleProbe fetches the content-style context.
func ContentStyleProbe(c *contextapi.Client) Probe {
	return Probe{
		Name:   ProbeContentStyle,
		Client: c,
		Query: contextapi.Query{
			Path:   contextapi.PathContext,
			Params: map[string]string{contextapi.ParamType: contextapi.TypeContentStyle},
		},
		Fetch: c.ContentStyle,
	}
}

// UserProbe fetches the context for a single username. A blank username fails
// without a request.
func UserProbe(c *contextapi.Client, username string) Probe {
	return Probe{
		Name:   ProbeUser,
		Client: c,
		Query: contextapi.Query{
			Path:   contextapi.PathUserContext,
			Params: map[string]string{contextapi.ParamUsername: strings.TrimSpace(username)},
		},
		Fetch: func(ctx context.Context) (json.RawMessage, error) {
			return c.UserContext(ctx, username)
		},
	}
}
