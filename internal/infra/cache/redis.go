package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"flynext/internal/pkg/config"
	"flynext/internal/pkg/errs"
	"flynext/internal/usecase/queries"

	"github.com/redis/go-redis/v9"
)

// SuggestionCache keeps supplier suggestion lists keyed by booking id and
// version. The version in the key makes invalidation implicit: any change
// to the booking produces a new key and the old entry just expires.
type SuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, errs.Wrap(err, "failed to ping redis")
	}

	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

func NewSuggestionCache(client *redis.Client, cfg config.RedisConfig) queries.SuggestionCache {
	return &SuggestionCache{
		client: client,
		ttl:    cfg.SuggestionTTL,
	}
}

func (c *SuggestionCache) Get(ctx context.Context, key string) ([]queries.Suggestion, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errs.Wrap(err, "suggestion cache get")
	}

	var suggestions []queries.Suggestion
	if err := json.Unmarshal(raw, &suggestions); err != nil {
		return nil, false, errs.Wrap(err, "decode cached suggestions")
	}
	return suggestions, true, nil
}

func (c *SuggestionCache) Set(ctx context.Context, key string, suggestions []queries.Suggestion) error {
	raw, err := json.Marshal(suggestions)
	if err != nil {
		return errs.Wrap(err, "encode suggestions")
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return errs.Wrap(err, "suggestion cache set")
	}
	return nil
}
