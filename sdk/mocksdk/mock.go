// Package mocksdk is the simulated host backend used when the activity runs
// outside the real host. Its identities come from a sessionvalue.Source so a
// browser tab, or a CLI session sharing a store, keeps the same mock user.
package mocksdk

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jrsteele09/activity-session/internal/utils"
	"github.com/jrsteele09/activity-session/oauthmodel"
	"github.com/jrsteele09/activity-session/sdk"
	"github.com/jrsteele09/activity-session/sessionvalue"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	MockCode        = "mock_code"
	MockAccessToken = "mock_token"

	mockAppID          = "mock_app_id"
	mockAppName        = "mock_app_name"
	mockAppIcon        = "mock_app_icon"
	mockAppDescription = "mock_app_description"
)

// mockExpiry is the far-future expiry the simulated session reports.
var mockExpiry = time.Date(2112, time.February, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC1123)

// AuthenticateFunc replaces the default authenticate behaviour.
type AuthenticateFunc func(ctx context.Context, req sdk.AuthenticateRequest) (*sdk.Session, error)

// AuthorizeFunc replaces the default authorize behaviour.
type AuthorizeFunc func(ctx context.Context, req sdk.AuthorizeRequest) (sdk.AuthorizeResponse, error)

// Frame is the simulated platform context the activity launched into.
type Frame struct {
	UserID    string
	GuildID   string
	ChannelID string
}

type MockSDK struct {
	clientID string
	values   *sessionvalue.Source
	logger   zerolog.Logger

	frameOnce sync.Once
	frame     Frame
	frameErr  error

	mu           sync.Mutex
	authorize    AuthorizeFunc
	authenticate AuthenticateFunc
}

var _ sdk.Client = (*MockSDK)(nil)

// Option defines a function type to modify the MockSDK instance.
type Option func(*MockSDK)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *MockSDK) {
		m.logger = logger
	}
}

func New(clientID string, values *sessionvalue.Source, options ...Option) (*MockSDK, error) {
	if values == nil {
		return nil, fmt.Errorf("[mocksdk New] session value source is required")
	}
	m := &MockSDK{
		clientID: clientID,
		values:   values,
		logger:   log.Logger,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Frame resolves the mock user, guild and channel ids once per MockSDK.
func (m *MockSDK) Frame(ctx context.Context) (Frame, error) {
	m.frameOnce.Do(func() {
		var f Frame
		for _, field := range []struct {
			key sessionvalue.Key
			dst *string
		}{
			{sessionvalue.UserID, &f.UserID},
			{sessionvalue.GuildID, &f.GuildID},
			{sessionvalue.ChannelID, &f.ChannelID},
		} {
			value, err := m.values.Value(ctx, field.key)
			if err != nil {
				m.frameErr = err
				return
			}
			*field.dst = value
		}
		m.frame = f
	})
	return m.frame, m.frameErr
}

// UpdateCommandMocks replaces command behaviour. Nil arguments keep the
// current behaviour.
func (m *MockSDK) UpdateCommandMocks(authorize AuthorizeFunc, authenticate AuthenticateFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if authorize != nil {
		m.authorize = authorize
	}
	if authenticate != nil {
		m.authenticate = authenticate
	}
}

// Ready resolves the simulated frame; there is no host to wait for.
func (m *MockSDK) Ready(ctx context.Context) error {
	frame, err := m.Frame(ctx)
	if err != nil {
		return err
	}
	m.logger.Debug().Str("client_id", m.clientID).Str("guild_id", frame.GuildID).Str("channel_id", frame.ChannelID).Msg("mock sdk ready")
	return nil
}

func (m *MockSDK) Authorize(ctx context.Context, req sdk.AuthorizeRequest) (sdk.AuthorizeResponse, error) {
	m.mu.Lock()
	override := m.authorize
	m.mu.Unlock()
	if override != nil {
		return override(ctx, req)
	}

	if req.ResponseType != oauthmodel.CodeResponseType {
		return sdk.AuthorizeResponse{}, oauthmodel.ErrInvalidResponseType
	}
	return sdk.AuthorizeResponse{Code: MockCode}, nil
}

// Authenticate returns a fixed session for the mock user regardless of the
// access token presented.
func (m *MockSDK) Authenticate(ctx context.Context, req sdk.AuthenticateRequest) (*sdk.Session, error) {
	m.mu.Lock()
	override := m.authenticate
	m.mu.Unlock()
	if override != nil {
		return override(ctx, req)
	}

	frame, err := m.Frame(ctx)
	if err != nil {
		return nil, err
	}
	return &sdk.Session{
		AccessToken: MockAccessToken,
		User: sdk.User{
			ID:            frame.UserID,
			Username:      frame.UserID,
			Discriminator: discriminator(frame.UserID),
			PublicFlags:   1,
		},
		Scopes:  []string{},
		Expires: mockExpiry,
		Application: sdk.Application{
			ID:          mockAppID,
			Name:        mockAppName,
			Icon:        utils.Ptr(mockAppIcon),
			Description: mockAppDescription,
		},
	}, nil
}

// discriminator derives the mock user's discriminator from the first byte of
// its id so it stays stable for a session.
func discriminator(userID string) string {
	if userID == "" {
		return "0"
	}
	return strconv.Itoa(int(userID[0]) % 5)
}
