// Package sdk describes the command surface of the host platform's SDK that
// session setup depends on, independent of how commands reach the host.
package sdk

import (
	"context"

	"github.com/jrsteele09/activity-session/oauthmodel"
)

// Client is the capability set a session controller needs from the host.
// Implementations must be safe for use by one controller; they are not
// required to support concurrent commands.
type Client interface {
	// Ready blocks until the host is reachable and commands may be sent.
	Ready(ctx context.Context) error

	// Authorize asks the host to authorize the activity and returns a code
	// that the token endpoint can exchange.
	Authorize(ctx context.Context, req AuthorizeRequest) (AuthorizeResponse, error)

	// Authenticate hands an access token back to the host. A nil Session
	// with a nil error means the host accepted the command but returned no
	// session.
	Authenticate(ctx context.Context, req AuthenticateRequest) (*Session, error)
}

type AuthorizeRequest struct {
	ClientID     string                  `json:"client_id"`
	ResponseType oauthmodel.ResponseType `json:"response_type"`
	State        string                  `json:"state"`
	Prompt       oauthmodel.PromptType   `json:"prompt"`
	Scope        []oauthmodel.Scope      `json:"scope"`
}

type AuthorizeResponse struct {
	Code string `json:"code"`
}

type AuthenticateRequest struct {
	AccessToken string `json:"access_token"`
}
