package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/activity-session/internal/config"
	"github.com/jrsteele09/activity-session/internal/errors"
	"github.com/jrsteele09/activity-session/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Server is the activity's backend. It holds the client secret and performs
// the server-side half of the authorization code exchange.
type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	oauth2     *oauth2.Config
	httpClient *http.Client
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// Option defines a function type to modify the Server instance.
type Option func(*Server)

// WithHTTPClient sets the client used for the upstream token request.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Server) {
		s.httpClient = client
	}
}

// WithRegistry sets the registry the server's metrics are registered with
// and served from.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(cfg config.Config, options ...Option) (*Server, error) {
	if cfg.GetClientID() == "" {
		return nil, errors.Wrapf(errors.ErrMissingClientID, "[Server New]")
	}
	if cfg.GetClientSecret() == "" {
		return nil, errors.Wrapf(errors.ErrMissingClientSecret, "[Server New]")
	}

	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		oauth2: &oauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.GetTokenURL(),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		logger: log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = metrics.NewMetrics(s.registry)

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Metrics returns the collectors the server records into.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	s.logger.Info().Msgf("[%-19s] %s", displayMethod, path)
}
