package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	ActivityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetRedisURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// ActivityConfig holds the values the session setup consumes as opaque inputs.
type ActivityConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetTokenURL() string
	GetTokenServerURL() string
	IsEmbedded() bool
	EmbeddedConfigured() bool
	GetSessionValueTTL() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	Activity
}

func New() Config {
	return mainConfig{}
}

// Load reads a .env file from the working directory, if there is one, and
// returns the environment backed configuration. Variables already set in the
// process environment win over the file.
func Load(filenames ...string) Config {
	_ = godotenv.Load(filenames...)
	return New()
}
