package oauthmodel

// TokenResponse is the JSON body returned by the token endpoint.
// Only AccessToken is required by the session setup; the remaining fields are
// passed through from the upstream exchange for hosts that want them.
type TokenResponse struct {
	// AccessToken is the bearer token handed to the host's authenticate command.
	// Example: "6qrZcUqja7812RVdnEKjpzOL4CvHBFG"
	// Lifespan: Short-lived (typically 7 days for this provider)
	AccessToken string `json:"access_token"`

	// TokenType indicates how to use the access token.
	// Example: "Bearer"
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Example: 604800
	ExpiresIn int `json:"expires_in,omitempty"`

	// RefreshToken is an opaque token used to obtain new access tokens.
	// Security: Returned to the activity only because the upstream issued it;
	// it is never logged.
	RefreshToken string `json:"refresh_token,omitempty"`

	// Scope is the space-separated list of granted scopes.
	// Example: "identify guilds"
	Scope string `json:"scope,omitempty"`
}

// ErrorResponse is the JSON body returned by the token endpoint on failure.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}
