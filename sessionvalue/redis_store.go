package sessionvalue

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/jrsteele09/activity-session/internal/errors"
	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "activity:session"

// RedisStore keeps session values in redis so several processes acting for
// the same client session agree on them. Keys are namespaced by scope.
type RedisStore struct {
	client redis.Cmdable
	scope  string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore returns a store writing under activity:session:<scope>:<key>.
// A zero ttl stores values without expiry.
func NewRedisStore(client redis.Cmdable, scope string, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewRedisStore] client is required")
	}
	if scope == "" {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewRedisStore] scope is required")
	}
	return &RedisStore{client: client, scope: scope, ttl: ttl}, nil
}

func (r *RedisStore) key(key string) string {
	return redisKeyPrefix + ":" + r.scope + ":" + key
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, pkgerrors.Wrap(stderrors.Join(errors.ErrStoreFailure, err), "RedisStore.Get")
	}
	return value, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return pkgerrors.Wrap(stderrors.Join(errors.ErrStoreFailure, err), "RedisStore.Set")
	}
	return nil
}

// ConnectRedis parses url and pings the server before returning a client.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, stderrors.Join(errors.ErrInvalidRedisURL, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, pkgerrors.Wrap(err, "ConnectRedis ping")
	}
	return client, nil
}
