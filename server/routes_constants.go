package server

import "github.com/jrsteele09/activity-session/oauthmodel"

// Route path constants
const (
	// Token exchange. The host's proxy strips /.proxy before forwarding; the
	// prefixed path is served too so standalone runs can post to it directly.
	RouteToken      = oauthmodel.TokenProxyPath
	RouteProxyToken = oauthmodel.TokenPath

	// Operations
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
