package exchange_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/activity-session/exchange"
	"github.com/jrsteele09/activity-session/oauthmodel"
	"github.com/jrsteele09/activity-session/sdk"
	"github.com/jrsteele09/activity-session/sdk/sdkfake"
	"github.com/stretchr/testify/require"
)

const testClientID = "client-1"

// tokenServer is a token endpoint double counting the codes it receives.
type tokenServer struct {
	*httptest.Server
	calls atomic.Int32
	codes chan string
}

func newTokenServer(t *testing.T, status int, body string) *tokenServer {
	t.Helper()
	ts := &tokenServer{codes: make(chan string, 10)}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.calls.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != oauthmodel.TokenPath || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		var req oauthmodel.TokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			ts.codes <- req.Code
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newExchanger(t *testing.T, client sdk.Client, baseURL string) *exchange.Exchanger {
	t.Helper()
	e, err := exchange.New(client, exchange.NewTokenClient(baseURL), testClientID)
	require.NoError(t, err)
	return e
}

func TestRunSuccess(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, `{"access_token":"exchanged","token_type":"Bearer"}`)
	fake := sdkfake.NewFakeSDK()
	fake.Session = &sdk.Session{AccessToken: "exchanged", User: sdk.User{ID: "42"}}

	result, err := newExchanger(t, fake, ts.URL).Run(context.Background(), []string{"identify", "rpc"})
	require.NoError(t, err)
	require.Equal(t, "exchanged", result.AccessToken)
	require.Same(t, fake.Session, result.Session)

	require.Equal(t, "fake-code", <-ts.codes)
	require.Len(t, fake.AuthorizeCalls, 1)
	require.Equal(t, sdk.AuthorizeRequest{
		ClientID:     testClientID,
		ResponseType: oauthmodel.CodeResponseType,
		State:        "",
		Prompt:       oauthmodel.NonePrompt,
		Scope:        []string{"identify", "rpc"},
	}, fake.AuthorizeCalls[0])
	require.Equal(t, []sdk.AuthenticateRequest{{AccessToken: "exchanged"}}, fake.AuthenticateCalls)
}

func TestRunDefaultScopes(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, `{"access_token":"t"}`)
	fake := sdkfake.NewFakeSDK()
	fake.Session = &sdk.Session{}

	_, err := newExchanger(t, fake, ts.URL).Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"identify", "guilds"}, fake.AuthorizeCalls[0].Scope)
}

func TestRunReadyFailure(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, `{"access_token":"t"}`)
	readyErr := errors.New("host unreachable")
	fake := sdkfake.NewFakeSDK()
	fake.ReadyErr = readyErr

	_, err := newExchanger(t, fake, ts.URL).Run(context.Background(), nil)
	require.Same(t, readyErr, err)

	_, authorize, authenticate := fake.Counts()
	require.Zero(t, authorize)
	require.Zero(t, authenticate)
	require.Zero(t, ts.calls.Load())
}

func TestRunAuthorizeDenied(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, `{"access_token":"t"}`)
	denied := errors.New("user denied authorization")
	fake := sdkfake.NewFakeSDK()
	fake.AuthorizeErr = denied

	_, err := newExchanger(t, fake, ts.URL).Run(context.Background(), nil)
	require.Same(t, denied, err)
	require.Zero(t, ts.calls.Load())
	require.Empty(t, fake.AuthenticateCalls)
}

func TestRunTokenEndpointFailureIsNotRetried(t *testing.T) {
	ts := newTokenServer(t, http.StatusInternalServerError, "upstream unavailable")
	fake := sdkfake.NewFakeSDK()
	fake.Session = &sdk.Session{}

	_, err := newExchanger(t, fake, ts.URL).Run(context.Background(), nil)

	var tokenErr *exchange.TokenError
	require.ErrorAs(t, err, &tokenErr)
	require.Equal(t, http.StatusInternalServerError, tokenErr.StatusCode)
	require.Equal(t, "upstream unavailable", tokenErr.Body)
	require.Equal(t, int32(1), ts.calls.Load())
	require.Empty(t, fake.AuthenticateCalls)
}

func TestRunMissingAccessToken(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, `{"token_type":"Bearer"}`)
	fake := sdkfake.NewFakeSDK()

	_, err := newExchanger(t, fake, ts.URL).Run(context.Background(), nil)
	require.ErrorIs(t, err, oauthmodel.ErrMissingAccessToken)
	require.Empty(t, fake.AuthenticateCalls)
}

func TestRunAuthenticateReturnsNoSession(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, `{"access_token":"t"}`)
	fake := sdkfake.NewFakeSDK()

	_, err := newExchanger(t, fake, ts.URL).Run(context.Background(), nil)
	require.ErrorIs(t, err, exchange.ErrAuthenticateFailed)
	require.EqualError(t, err, "Authenticate command failed")
}

func TestRunAuthenticateError(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, `{"access_token":"t"}`)
	rejected := errors.New("invalid token")
	fake := sdkfake.NewFakeSDK()
	fake.AuthenticateErr = rejected

	_, err := newExchanger(t, fake, ts.URL).Run(context.Background(), nil)
	require.Same(t, rejected, err)
}

func TestTokenClientTrimsTrailingSlash(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, `{"access_token":"t","expires_in":604800}`)

	token, err := exchange.NewTokenClient(ts.URL+"/", exchange.WithHTTPClient(ts.Client())).Exchange(context.Background(), "code")
	require.NoError(t, err)
	require.Equal(t, "t", token.AccessToken)
	require.Equal(t, 604800, token.ExpiresIn)
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := exchange.New(nil, exchange.NewTokenClient("http://localhost"), testClientID)
	require.Error(t, err)
	_, err = exchange.New(sdkfake.NewFakeSDK(), nil, testClientID)
	require.Error(t, err)
}
