// Package exchange runs the credential exchange that turns requested scopes
// into an access token and an authenticated session: authorize with the
// host, swap the code for a token through the token endpoint, then
// authenticate with the host using that token.
//
// Every step's error is returned as-is. Classifying failures is left to the
// caller.
package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/activity-session/internal/utils"
	"github.com/jrsteele09/activity-session/oauthmodel"
	"github.com/jrsteele09/activity-session/sdk"
)

// ErrAuthenticateFailed is returned when the host's authenticate command
// returns no session.
var ErrAuthenticateFailed = errors.New("Authenticate command failed")

// Result is the outcome of a successful exchange.
type Result struct {
	AccessToken string
	Session     *sdk.Session
}

// TokenExchanger swaps an authorization code for tokens.
type TokenExchanger interface {
	Exchange(ctx context.Context, code string) (oauthmodel.TokenResponse, error)
}

type Exchanger struct {
	client   sdk.Client
	tokens   TokenExchanger
	clientID string
}

func New(client sdk.Client, tokens TokenExchanger, clientID string) (*Exchanger, error) {
	if client == nil {
		return nil, fmt.Errorf("[exchange New] sdk client is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("[exchange New] token exchanger is required")
	}
	return &Exchanger{client: client, tokens: tokens, clientID: clientID}, nil
}

// Run performs the exchange for scopes, or oauthmodel.DefaultScopes when
// scopes is empty. The token endpoint is called at most once: a used code
// cannot be exchanged again.
func (e *Exchanger) Run(ctx context.Context, scopes []string) (*Result, error) {
	if err := e.client.Ready(ctx); err != nil {
		return nil, err
	}

	authorization, err := e.client.Authorize(ctx, sdk.AuthorizeRequest{
		ClientID:     e.clientID,
		ResponseType: oauthmodel.CodeResponseType,
		State:        "",
		Prompt:       oauthmodel.NonePrompt,
		Scope:        utils.OrDefault(scopes, oauthmodel.DefaultScopes),
	})
	if err != nil {
		return nil, err
	}

	token, err := e.tokens.Exchange(ctx, authorization.Code)
	if err != nil {
		return nil, err
	}

	session, err := e.client.Authenticate(ctx, sdk.AuthenticateRequest{AccessToken: token.AccessToken})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrAuthenticateFailed
	}

	return &Result{AccessToken: token.AccessToken, Session: session}, nil
}
