package sessionvalue_test

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"testing"

	apperrors "github.com/jrsteele09/activity-session/internal/errors"
	"github.com/jrsteele09/activity-session/sessionvalue"
	"github.com/stretchr/testify/require"
)

var valuePattern = regexp.MustCompile(`^[0-9a-z]{8}$`)

func newSource(t *testing.T, store sessionvalue.Store, options ...sessionvalue.SourceOption) *sessionvalue.Source {
	t.Helper()
	source, err := sessionvalue.NewSource(store, options...)
	require.NoError(t, err)
	return source
}

func TestValueIsStableWithinStore(t *testing.T) {
	ctx := context.Background()
	source := newSource(t, sessionvalue.NewMemoryStore())

	first, err := source.Value(ctx, sessionvalue.UserID)
	require.NoError(t, err)
	require.Regexp(t, valuePattern, first)

	second, err := source.Value(ctx, sessionvalue.UserID)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestValueSharedAcrossSourcesOnSameStore(t *testing.T) {
	ctx := context.Background()
	store := sessionvalue.NewMemoryStore()

	first, err := newSource(t, store).Value(ctx, sessionvalue.GuildID)
	require.NoError(t, err)
	second, err := newSource(t, store).Value(ctx, sessionvalue.GuildID)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	values := []string{"aaaaaaaa", "bbbbbbbb", "cccccccc"}
	next := 0
	source := newSource(t, sessionvalue.NewMemoryStore(), sessionvalue.WithRandom(func() (string, error) {
		v := values[next]
		next++
		return v, nil
	}))

	user, err := source.Value(ctx, sessionvalue.UserID)
	require.NoError(t, err)
	guild, err := source.Value(ctx, sessionvalue.GuildID)
	require.NoError(t, err)
	channel, err := source.Value(ctx, sessionvalue.ChannelID)
	require.NoError(t, err)

	require.Equal(t, []string{"aaaaaaaa", "bbbbbbbb", "cccccccc"}, []string{user, guild, channel})
}

func TestOverrideTakesPrecedenceAndIsNotStored(t *testing.T) {
	ctx := context.Background()
	store := sessionvalue.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "user_id", "stored01"))

	overridden := newSource(t, store, sessionvalue.WithOverrides(url.Values{"user_id": {"override"}}))
	value, err := overridden.Value(ctx, sessionvalue.UserID)
	require.NoError(t, err)
	require.Equal(t, "override", value)

	stored, ok, err := store.Get(ctx, "user_id")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "stored01", stored)

	// Without the override the stored value is back in effect.
	value, err = newSource(t, store).Value(ctx, sessionvalue.UserID)
	require.NoError(t, err)
	require.Equal(t, "stored01", value)
}

func TestOverrideOnEmptyStoreDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	store := sessionvalue.NewMemoryStore()

	value, err := newSource(t, store, sessionvalue.WithOverrides(url.Values{"channel_id": {"chan"}})).Value(ctx, sessionvalue.ChannelID)
	require.NoError(t, err)
	require.Equal(t, "chan", value)

	_, ok, err := store.Get(ctx, "channel_id")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUnknownKey(t *testing.T) {
	_, err := newSource(t, sessionvalue.NewMemoryStore()).Value(context.Background(), sessionvalue.Key("instance_id"))
	require.ErrorIs(t, err, apperrors.ErrUnknownValueKey)
}

func TestGeneratorFailureIsNotStored(t *testing.T) {
	ctx := context.Background()
	store := sessionvalue.NewMemoryStore()
	genErr := errors.New("entropy exhausted")

	_, err := newSource(t, store, sessionvalue.WithRandom(func() (string, error) { return "", genErr })).Value(ctx, sessionvalue.UserID)
	require.ErrorIs(t, err, genErr)

	_, ok, err := store.Get(ctx, "user_id")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewSourceRequiresStore(t *testing.T) {
	_, err := sessionvalue.NewSource(nil)
	require.Error(t, err)
}

func TestRandomValue(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		v, err := sessionvalue.RandomValue()
		require.NoError(t, err)
		require.Regexp(t, valuePattern, v)
		seen[v] = struct{}{}
	}
	require.Greater(t, len(seen), 90)
}
