package config

import (
	"os"
	"time"
)

const (
	clientIDEnvVar       = "CLIENT_ID"
	viteClientIDEnvVar   = "VITE_CLIENT_ID"
	clientSecretEnvVar   = "CLIENT_SECRET"
	tokenURLEnvVar       = "TOKEN_URL"
	tokenServerURLEnvVar = "TOKEN_SERVER_URL"
	embeddedEnvVar       = "EMBEDDED"
	sessionValueTTLVar   = "SESSION_VALUE_TTL"

	DefaultTokenURL = "https://discord.com/api/oauth2/token"
)

type Activity struct{}

var _ ActivityConfig = Activity{}

// GetClientID returns the OAuth2 client identifier of the activity. The Vite
// prefixed name is honoured so a frontend .env file can be shared.
func (Activity) GetClientID() string {
	return GetEnv(clientIDEnvVar, GetEnv(viteClientIDEnvVar, ""))
}

// GetClientSecret is only needed by the token proxy; never log it.
func (Activity) GetClientSecret() string {
	return GetEnv(clientSecretEnvVar, "")
}

func (Activity) GetTokenURL() string {
	return GetEnv(tokenURLEnvVar, DefaultTokenURL)
}

// GetTokenServerURL is the base URL the activity posts authorization codes to.
func (Activity) GetTokenServerURL() string {
	return GetEnv(tokenServerURLEnvVar, "http://localhost:3001")
}

// IsEmbedded reports whether the process runs inside the real host platform.
// When false the simulated SDK backend is used.
func (Activity) IsEmbedded() bool {
	return GetBool(embeddedEnvVar, false)
}

// EmbeddedConfigured reports whether EMBEDDED is set at all, so callers can
// fall back to detecting the host from launch parameters.
func (Activity) EmbeddedConfigured() bool {
	return os.Getenv(embeddedEnvVar) != ""
}

// GetSessionValueTTL bounds how long synthesised session values live in a
// shared store. Zero keeps them until the store is flushed.
func (Activity) GetSessionValueTTL() time.Duration {
	return GetDuration(sessionValueTTLVar, 24*time.Hour)
}
