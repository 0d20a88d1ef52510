package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/rueidis"
)

const profileKeyPrefix = "identity:profile:"

// ProfileCache stores profiles fetched from the provider.
type ProfileCache interface {
	Get(ctx context.Context, username string) (*Profile, bool, error)
	Set(ctx context.Context, username string, profile *Profile) error
}

// NewRedisClient connects to the redis server at addr.
func NewRedisClient(addr string) (rueidis.Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return client, nil
}

// RedisProfileCache is a ProfileCache backed by redis string keys with a TTL.
type RedisProfileCache struct {
	client rueidis.Client
	ttl    time.Duration
}

// NewRedisProfileCache creates a RedisProfileCache.
func NewRedisProfileCache(client rueidis.Client, ttl time.Duration) *RedisProfileCache {
	return &RedisProfileCache{client: client, ttl: ttl}
}

func (c *RedisProfileCache) Get(ctx context.Context, username string) (*Profile, bool, error) {
	cmd := c.client.B().Get().Key(profileKeyPrefix + username).Build()
	raw, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var profile Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, false, fmt.Errorf("decode cached profile: %w", err)
	}
	return &profile, true, nil
}

func (c *RedisProfileCache) Set(ctx context.Context, username string, profile *Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	seconds := int64(c.ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	cmd := c.client.B().Setex().Key(profileKeyPrefix + username).Seconds(seconds).Value(string(raw)).Build()
	return c.client.Do(ctx, cmd).Error()
}

// CachedGateway serves GetUser from a ProfileCache before asking the
// provider. Cache failures degrade to upstream calls.
type CachedGateway struct {
	Gateway
	cache  ProfileCache
	logger *slog.Logger
}

// NewCachedGateway wraps next with cache.
func NewCachedGateway(next Gateway, cache ProfileCache, logger *slog.Logger) *CachedGateway {
	return &CachedGateway{Gateway: next, cache: cache, logger: logger}
}

func (g *CachedGateway) GetUser(ctx context.Context, username string) (*Profile, error) {
	profile, ok, err := g.cache.Get(ctx, username)
	if err != nil {
		g.logger.WarnContext(ctx, "profile cache read failed", slog.String("username", username), slog.Any("error", err))
	} else if ok {
		return profile, nil
	}

	profile, err = g.Gateway.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := g.cache.Set(ctx, username, profile); err != nil {
		g.logger.WarnContext(ctx, "profile cache write failed", slog.String("username", username), slog.Any("error", err))
	}
	return profile, nil
}
