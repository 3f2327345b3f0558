package oauthmodel

// ResponseType represents the OAuth 2.0 response type requested from the
// host's authorization command.
type ResponseType string

const (
	// CodeResponseType indicates the authorization code flow.
	// The host returns a short-lived code that the token endpoint exchanges,
	// server-side, for an access token.
	CodeResponseType ResponseType = "code"
)

// PromptType hints how the host should involve the user during authorization.
type PromptType string

const (
	// NonePrompt asks the host to authorize silently when the user has
	// already granted the requested scopes, and to show its consent modal otherwise.
	NonePrompt PromptType = "none"
)

// Scope is a named permission requested during authorization.
type Scope = string

const (
	// ScopeIdentify grants access to the user's id, username and avatar.
	ScopeIdentify Scope = "identify"

	// ScopeGuilds grants access to the guilds the user is a member of.
	ScopeGuilds Scope = "guilds"
)

// DefaultScopes are requested when the caller supplies none.
var DefaultScopes = []Scope{ScopeIdentify, ScopeGuilds}

// GrantType represents the OAuth 2.0 grant type used at the upstream token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: code, client_id, client_secret
	// Returns: access_token, refresh_token, expires_in, scope
	AuthorizationCodeGrant GrantType = "authorization_code"
)
