package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/ports"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
)

const (
	suggestionKeyPrefix  = "todbot:suggestion:"
	resolvedKeyPrefix    = "todbot:resolved:"
	correlationKeyPrefix = "todbot:correlation:"
)

// NewRedisClient connects to the Redis server at redisURL and checks that it answers.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// RedisSuggestionCache stores pending suggestions as Redis hashes and resolved
// handles as marker strings. Writes from this process are ordered by the guard;
// each key expires ttl after its last write.
type RedisSuggestionCache struct {
	rdb   *redis.Client
	guard ports.ExclusiveAccess
	ttl   time.Duration
}

// NewRedisSuggestionCache creates a new RedisSuggestionCache.
func NewRedisSuggestionCache(rdb *redis.Client, guard ports.ExclusiveAccess, ttl time.Duration) *RedisSuggestionCache {
	return &RedisSuggestionCache{rdb: rdb, guard: guard, ttl: ttl}
}

// Put stores the suggestion, replacing any entry with the same handle.
func (c *RedisSuggestionCache) Put(ctx context.Context, suggestion domain.PendingSuggestion) error {
	key := suggestionKeyPrefix + string(suggestion.Handle)

	return c.guard.WithExclusiveAccess(ctx, suggestionsKey, func(ctx context.Context) error {
		_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key, resolvedKeyPrefix+string(suggestion.Handle))
			pipe.HSet(ctx, key,
				"kind", string(suggestion.Kind),
				"text", suggestion.Text,
				"rating", string(suggestion.Rating),
				"submitter_id", suggestion.SubmitterID.String(),
				"created_at", strconv.FormatInt(suggestion.CreatedAt.UnixMilli(), 10),
			)
			if c.ttl > 0 {
				pipe.Expire(ctx, key, c.ttl)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("redis put suggestion failed: %w", err)
		}
		return nil
	})
}

// Take returns the suggestion without removing it.
func (c *RedisSuggestionCache) Take(ctx context.Context, handle domain.Handle) (domain.PendingSuggestion, error) {
	fields, err := c.rdb.HGetAll(ctx, suggestionKeyPrefix+string(handle)).Result()
	if err != nil {
		return domain.PendingSuggestion{}, fmt.Errorf("redis get suggestion failed: %w", err)
	}
	if len(fields) == 0 {
		return domain.PendingSuggestion{}, c.missing(ctx, handle)
	}

	suggestion := domain.PendingSuggestion{
		Handle: handle,
		Kind:   domain.Kind(fields["kind"]),
		Text:   fields["text"],
		Rating: domain.Rating(fields["rating"]),
	}
	if id, err := snowflake.Parse(fields["submitter_id"]); err == nil {
		suggestion.SubmitterID = id
	}
	if ms, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		suggestion.CreatedAt = time.UnixMilli(ms).UTC()
	}
	return suggestion, nil
}

// missing tells a resolved handle from an unknown one.
func (c *RedisSuggestionCache) missing(ctx context.Context, handle domain.Handle) error {
	n, err := c.rdb.Exists(ctx, resolvedKeyPrefix+string(handle)).Result()
	if err != nil {
		return fmt.Errorf("redis get suggestion failed: %w", err)
	}
	if n > 0 {
		return domain.ErrSuggestionResolved
	}
	return domain.ErrSuggestionNotFound
}

// Remove replaces the suggestion with a resolved marker.
func (c *RedisSuggestionCache) Remove(ctx context.Context, handle domain.Handle) error {
	return c.guard.WithExclusiveAccess(ctx, suggestionsKey, func(ctx context.Context) error {
		_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, suggestionKeyPrefix+string(handle))
			pipe.Set(ctx, resolvedKeyPrefix+string(handle), "1", c.ttl)
			return nil
		})
		if err != nil {
			return fmt.Errorf("redis remove suggestion failed: %w", err)
		}
		return nil
	})
}

// Ping checks that Redis is reachable.
func (c *RedisSuggestionCache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// RedisCorrelationCache stores interaction tokens as expiring Redis strings.
type RedisCorrelationCache struct {
	rdb *redis.Client
}

// NewRedisCorrelationCache creates a new RedisCorrelationCache.
func NewRedisCorrelationCache(rdb *redis.Client) *RedisCorrelationCache {
	return &RedisCorrelationCache{rdb: rdb}
}

// Remember stores token for interactionID until ttl elapses.
func (c *RedisCorrelationCache) Remember(ctx context.Context, interactionID, token string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, correlationKeyPrefix+interactionID, token, ttl).Err(); err != nil {
		return fmt.Errorf("redis remember correlation failed: %w", err)
	}
	return nil
}

// Recall returns and forgets the token for interactionID.
func (c *RedisCorrelationCache) Recall(ctx context.Context, interactionID string) (string, bool, error) {
	token, err := c.rdb.GetDel(ctx, correlationKeyPrefix+interactionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis recall correlation failed: %w", err)
	}
	return token, true, nil
}

// Compile-time checks.
var (
	_ domain.SuggestionCache  = (*RedisSuggestionCache)(nil)
	_ domain.CorrelationCache = (*RedisCorrelationCache)(nil)
)
