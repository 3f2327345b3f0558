package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/activity-session/oauthmodel"
)

const (
	contentTypeJSON  = "application/json"
	maxErrorBodySize = 4 << 10
)

// TokenError is returned when the token endpoint answers with a non-2xx status.
type TokenError struct {
	StatusCode int
	Body       string
}

func (e *TokenError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("token exchange failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Body)
}

// TokenClient posts authorization codes to the activity's token endpoint.
type TokenClient struct {
	endpoint   string
	httpClient *http.Client
}

var _ TokenExchanger = (*TokenClient)(nil)

// TokenClientOption defines a function type to modify the TokenClient instance.
type TokenClientOption func(*TokenClient)

func WithHTTPClient(client *http.Client) TokenClientOption {
	return func(c *TokenClient) {
		c.httpClient = client
	}
}

// NewTokenClient targets baseURL + oauthmodel.TokenPath.
func NewTokenClient(baseURL string, options ...TokenClientOption) *TokenClient {
	c := &TokenClient{
		endpoint:   strings.TrimSuffix(baseURL, "/") + oauthmodel.TokenPath,
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *TokenClient) Exchange(ctx context.Context, code string) (oauthmodel.TokenResponse, error) {
	body, err := json.Marshal(oauthmodel.TokenRequest{Code: code})
	if err != nil {
		return oauthmodel.TokenResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return oauthmodel.TokenResponse{}, err
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return oauthmodel.TokenResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return oauthmodel.TokenResponse{}, &TokenError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var token oauthmodel.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return oauthmodel.TokenResponse{}, fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return oauthmodel.TokenResponse{}, oauthmodel.ErrMissingAccessToken
	}
	return token, nil
}
