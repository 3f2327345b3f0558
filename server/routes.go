package server

import (
	"net/http"

	"github.com/jrsteele09/activity-session/internal/metrics"
)

func (s *Server) initRoutes() {
	for _, route := range []string{RouteToken, RouteProxyToken} {
		s.RegisterRouteHandler("POST "+route, ChainMiddleware(s.Token(), s.APIMiddleware()...))
		s.RegisterRouteHandler("OPTIONS "+route, ChainMiddleware(s.Preflight(), s.APIMiddleware()...))
	}

	s.RegisterRouteFunc("GET "+RouteHealth, s.Health())
	s.RegisterRouteHandler("GET "+RouteMetrics, metrics.Handler(s.registry))
}

// Health reports liveness.
func (s *Server) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// Preflight answers CORS preflight requests; the CORS middleware sets the headers.
func (s *Server) Preflight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
