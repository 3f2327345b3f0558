package session

import "github.com/jrsteele09/activity-session/sdk"

// Status is the position of a controller in its setup sequence.
type Status string

const (
	StatusPending        Status = "pending"
	StatusLoading        Status = "loading"
	StatusAuthenticating Status = "authenticating"
	StatusReady          Status = "ready"
	StatusError          Status = "error"
)

// Terminal reports whether no further transition can follow s.
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusError
}

// UnknownErrorMessage is published when a failure carries no message.
const UnknownErrorMessage = "An unknown error occurred"

// Snapshot is the externally observable state of a controller.
// Authenticated is true exactly when AccessToken is set. Empty strings and a
// nil Session mean absent.
type Snapshot struct {
	AccessToken   string       `json:"accessToken,omitempty"`
	Authenticated bool         `json:"authenticated"`
	Session       *sdk.Session `json:"session,omitempty"`
	Error         string       `json:"error,omitempty"`
	Status        Status       `json:"status"`
}

// Options select what an activation does. The zero value sets up an
// unauthenticated session.
type Options struct {
	Authenticate bool
	// Scope defaults to identify and guilds when empty.
	Scope []string
}

// Listener receives a snapshot after every status change.
type Listener func(Snapshot)
