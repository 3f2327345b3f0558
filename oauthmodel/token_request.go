package oauthmodel

// TokenPath is the path, relative to the activity's origin, that the
// authorization code is posted to. The host's proxy strips the /.proxy
// prefix before the request reaches the token server.
const (
	TokenPath      = "/.proxy/api/token"
	TokenProxyPath = "/api/token"
)

// TokenRequest is the JSON body posted to the token endpoint.
type TokenRequest struct {
	// Code is the authorization code returned by the host's authorize command.
	// Required: Yes
	// Example: "SplxlOBeZQQYbYS6WxSbIA"
	// Usage: Exchanged once for tokens, then becomes invalid. Never retried.
	Code string `json:"code"`
}
