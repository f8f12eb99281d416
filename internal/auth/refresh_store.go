package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshStore tracks issued refresh token ids (jti) so they can be used once
// and revoked on logout.
type RefreshStore interface {
	Save(ctx context.Context, jti, userID string, ttl time.Duration) error
	// Consume deletes the jti and reports whether it existed.
	Consume(ctx context.Context, jti string) (bool, error)
	Revoke(ctx context.Context, jti string) error
}

type RedisRefreshStore struct {
	rdb *redis.Client
}

func NewRedisRefreshStore(rdb *redis.Client) *RedisRefreshStore {
	return &RedisRefreshStore{rdb: rdb}
}

func refreshKey(jti string) string {
	return "refresh:" + jti
}

func (s *RedisRefreshStore) Save(ctx context.Context, jti, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, refreshKey(jti), userID, ttl).Err()
}

// GETDEL keeps the check-and-delete atomic so a token cannot be refreshed twice.
func (s *RedisRefreshStore) Consume(ctx context.Context, jti string) (bool, error) {
	_, err := s.rdb.GetDel(ctx, refreshKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisRefreshStore) Revoke(ctx context.Context, jti string) error {
	return s.rdb.Del(ctx, refreshKey(jti)).Err()
}
