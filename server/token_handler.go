package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/jrsteele09/activity-session/internal/errors"
	"github.com/jrsteele09/activity-session/internal/metrics"
	"github.com/jrsteele09/activity-session/oauthmodel"
	"golang.org/x/oauth2"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxTokenBody    = 4 << 10
)

// Token exchanges the posted authorization code for tokens with the upstream
// provider. The code is single use, so upstream failures are reported rather
// than retried.
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		var req oauthmodel.TokenRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxTokenBody)).Decode(&req); err != nil {
			s.metrics.RecordTokenExchange(metrics.OutcomeBadRequest, time.Since(started))
			writeJSONError(w, "invalid_request", "request body must be a JSON object", http.StatusBadRequest)
			return
		}
		if req.Code == "" {
			s.metrics.RecordTokenExchange(metrics.OutcomeBadRequest, time.Since(started))
			writeJSONError(w, "invalid_request", errors.ErrMissingCode.Error(), http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		if s.httpClient != nil {
			ctx = oauth2ClientContext(ctx, s.httpClient)
		}

		token, err := s.oauth2.Exchange(ctx, req.Code)
		if err != nil {
			s.metrics.RecordTokenExchange(metrics.OutcomeUpstreamFailed, time.Since(started))
			s.writeExchangeError(w, err)
			return
		}
		s.metrics.RecordTokenExchange(metrics.OutcomeSuccess, time.Since(started))

		resp := oauthmodel.TokenResponse{
			AccessToken:  token.AccessToken,
			TokenType:    token.TokenType,
			ExpiresIn:    int(token.ExpiresIn),
			RefreshToken: token.RefreshToken,
		}
		if scope, ok := token.Extra("scope").(string); ok {
			resp.Scope = scope
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// writeExchangeError maps an upstream failure onto the response. Rejections
// of the code itself are the caller's problem (400); anything else is a bad
// gateway.
func (s *Server) writeExchangeError(w http.ResponseWriter, err error) {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		status := retrieveErr.Response.StatusCode
		s.logger.Error().Err(errors.ErrExchangeRejected).Int("upstream_status", status).Str("error_code", retrieveErr.ErrorCode).Msg("Token exchange rejected")
		if status >= 400 && status < 500 {
			code := retrieveErr.ErrorCode
			if code == "" {
				code = "invalid_grant"
			}
			writeJSONError(w, code, retrieveErr.ErrorDescription, http.StatusBadRequest)
			return
		}
		writeJSONError(w, "exchange_failed", "upstream token endpoint failed", http.StatusBadGateway)
		return
	}

	s.logger.Error().Err(err).Msg("Token exchange failed")
	writeJSONError(w, "exchange_failed", "upstream token exchange failed", http.StatusBadGateway)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(oauthmodel.ErrorResponse{
		Error:            errorCode,
		ErrorDescription: description,
	})
}
