// Package sessionvalue derives stable per-session identifiers for runs
// against the simulated SDK backend.
package sessionvalue

import (
	"context"
	"crypto/rand"
	"net/url"

	"github.com/jrsteele09/activity-session/internal/errors"
)

// Key names a session value.
type Key string

const (
	UserID    Key = "user_id"
	GuildID   Key = "guild_id"
	ChannelID Key = "channel_id"
)

func (k Key) Valid() bool {
	switch k {
	case UserID, GuildID, ChannelID:
		return true
	}
	return false
}

const (
	randomValueLength = 8
	randomAlphabet    = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Source resolves session values with three tiers of precedence: an explicit
// override, a previously stored value, and finally a freshly synthesised one
// which is stored for later calls.
type Source struct {
	store     Store
	overrides url.Values
	random    func() (string, error)
}

// SourceOption defines a function type to modify the Source instance.
type SourceOption func(*Source)

// WithOverrides sets the query parameters consulted before the store.
// Override values are returned as-is and never stored.
func WithOverrides(query url.Values) SourceOption {
	return func(s *Source) {
		s.overrides = query
	}
}

// WithRandom replaces the value generator (primarily for testing).
func WithRandom(fn func() (string, error)) SourceOption {
	return func(s *Source) {
		s.random = fn
	}
}

func NewSource(store Store, options ...SourceOption) (*Source, error) {
	if store == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewSource] store is required")
	}
	s := &Source{
		store:  store,
		random: RandomValue,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Value returns the session value for key.
// The read and the conditional write are not atomic: two sources sharing a
// store may race on first use of a key.
func (s *Source) Value(ctx context.Context, key Key) (string, error) {
	if !key.Valid() {
		return "", errors.Wrapf(errors.ErrUnknownValueKey, "[Value] %q", key)
	}

	if s.overrides != nil && s.overrides.Has(string(key)) {
		return s.overrides.Get(string(key)), nil
	}

	stored, ok, err := s.store.Get(ctx, string(key))
	if err != nil {
		return "", errors.Wrapf(err, "[Value] store get %s", key)
	}
	if ok {
		return stored, nil
	}

	value, err := s.random()
	if err != nil {
		return "", errors.Wrapf(err, "[Value] generate %s", key)
	}
	if err := s.store.Set(ctx, string(key), value); err != nil {
		return "", errors.Wrapf(err, "[Value] store set %s", key)
	}
	return value, nil
}

// RandomValue returns 8 random lowercase alphanumeric characters.
func RandomValue() (string, error) {
	out := make([]byte, 0, randomValueLength)
	buf := make([]byte, randomValueLength*2)
	for len(out) < randomValueLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			// reject 252..255 to avoid modulo bias
			if b >= 252 {
				continue
			}
			out = append(out, randomAlphabet[int(b)%len(randomAlphabet)])
			if len(out) == randomValueLength {
				break
			}
		}
	}
	return string(out), nil
}
