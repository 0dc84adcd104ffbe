package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessionProvider resolves opaque session tokens, carried in a cookie,
// against session hashes stored in redis under "session:<token>". Expiry is
// the key's TTL.
type RedisSessionProvider struct {
	client     redis.Cmdable
	cookieName string
	ttl        time.Duration
}

func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func NewRedisSessionProvider(client redis.Cmdable, cookieName string, ttl time.Duration) *RedisSessionProvider {
	return &RedisSessionProvider{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
	}
}

func (p *RedisSessionProvider) Authenticate(r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(p.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoCredentials
	}

	fields, err := p.client.HGetAll(r.Context(), redisSessionKeyPrefix+cookie.Value).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: unknown or expired session", ErrInvalidToken)
	}

	accountID := fields[SessionKeyAccountID]
	if accountID == "" {
		return nil, fmt.Errorf("%w: session has no account", ErrMissingClaims)
	}

	return &Identity{
		AccountID: accountID,
		Email:     fields[SessionKeyEmail],
	}, nil
}

// Put stores a session for token with the provider's TTL.
func (p *RedisSessionProvider) Put(ctx context.Context, token string, identity *Identity) error {
	key := redisSessionKeyPrefix + token
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			SessionKeyAccountID: identity.AccountID,
			SessionKeyEmail:     identity.Email,
		})
		pipe.Expire(ctx, key, p.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (p *RedisSessionProvider) Delete(ctx context.Context, token string) error {
	return p.client.Del(ctx, redisSessionKeyPrefix+token).Err()
}
