package server

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// oauth2ClientContext makes oauth2 use client for requests made with ctx.
func oauth2ClientContext(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}
