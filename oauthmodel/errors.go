package oauthmodel

import "errors"

var (
	ErrMissingAccessToken  = errors.New("token response has no access token")
	ErrInvalidResponseType = errors.New("unsupported response type")
)
