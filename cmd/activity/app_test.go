package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/activity-session/internal/config"
	"github.com/jrsteele09/activity-session/oauthmodel"
	"github.com/jrsteele09/activity-session/session"
	"github.com/stretchr/testify/require"
)

func setupTokenServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != oauthmodel.TokenPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"access_token":"mock_token"}`))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func runActivity(t *testing.T, args ...string) (session.Snapshot, error) {
	t.Helper()
	t.Setenv("EMBEDDED", "false")
	t.Setenv("CLIENT_ID", "client-1")
	t.Setenv("REDIS_URL", "")

	var out bytes.Buffer
	err := run(context.Background(), args, &out)

	var snapshot session.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snapshot))
	return snapshot, err
}

func TestRunUnauthenticated(t *testing.T) {
	ts := setupTokenServer(t, http.StatusOK)

	snapshot, err := runActivity(t, "--server-url", ts.URL)
	require.NoError(t, err)
	require.Equal(t, session.StatusReady, snapshot.Status)
	require.False(t, snapshot.Authenticated)
}

func TestRunAuthenticatedWithOverride(t *testing.T) {
	ts := setupTokenServer(t, http.StatusOK)

	snapshot, err := runActivity(t, "--server-url", ts.URL, "--authenticate", "--scope", "identify,guilds", "--query", "user_id=cliuser1")
	require.NoError(t, err)
	require.Equal(t, session.StatusReady, snapshot.Status)
	require.Equal(t, "mock_token", snapshot.AccessToken)
	require.Equal(t, "cliuser1", snapshot.Session.User.Username)
}

func TestRunReportsSetupFailure(t *testing.T) {
	ts := setupTokenServer(t, http.StatusInternalServerError)

	snapshot, err := runActivity(t, "--server-url", ts.URL, "--authenticate")
	require.ErrorIs(t, err, errSetupFailed)
	require.Equal(t, session.StatusError, snapshot.Status)
	require.NotEmpty(t, snapshot.Error)
}

func TestRunSharesValuesThroughRedis(t *testing.T) {
	ts := setupTokenServer(t, http.StatusOK)
	mr := miniredis.RunT(t)

	first, err := runActivity(t, "--server-url", ts.URL, "--authenticate", "--redis-url", "redis://"+mr.Addr(), "--session", "tab-1")
	require.NoError(t, err)
	second, err := runActivity(t, "--server-url", ts.URL, "--authenticate", "--redis-url", "redis://"+mr.Addr(), "--session", "tab-1")
	require.NoError(t, err)

	require.Equal(t, first.Session.User.ID, second.Session.User.ID)
	stored, err := mr.Get("activity:session:tab-1:user_id")
	require.NoError(t, err)
	require.Equal(t, first.Session.User.ID, stored)
}

func TestParseFlagsDefaults(t *testing.T) {
	t.Setenv("TOKEN_SERVER_URL", "http://tokens.local")
	t.Setenv("EMBEDDED", "true")

	opts, err := parseFlags(nil, configForTest())
	require.NoError(t, err)
	require.Equal(t, "http://tokens.local", opts.serverURL)
	require.True(t, opts.embedded)
	require.False(t, opts.authenticate)
	require.Empty(t, opts.scopes)
}

func TestParseFlagsDetectsHostLaunch(t *testing.T) {
	tests := []struct {
		name     string
		embedded string
		args     []string
		want     bool
	}{
		{name: "frame_id in launch query", args: []string{"--query", "frame_id=f1&user_id=u1"}, want: true},
		{name: "no frame_id", args: []string{"--query", "user_id=u1"}, want: false},
		{name: "env var wins", embedded: "false", args: []string{"--query", "frame_id=f1"}, want: false},
		{name: "flag wins", args: []string{"--query", "frame_id=f1", "--embedded=false"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EMBEDDED", tt.embedded)

			opts, err := parseFlags(tt.args, configForTest())
			require.NoError(t, err)
			require.Equal(t, tt.want, opts.embedded)
		})
	}
}

func TestParseFlagsRejectsBadQuery(t *testing.T) {
	_, err := parseFlags([]string{"--query", "user_id=%zz"}, configForTest())
	require.Error(t, err)
}

func configForTest() config.Config {
	return config.New()
}
