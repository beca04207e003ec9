package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix namespaces snapshot keys.
const DefaultRedisKeyPrefix = "discipline"

// RedisGateway stores the JSON document under discipline:user:{user_id}:snapshot.
type RedisGateway struct {
	client *redis.Client
	key    string
}

// NewRedisGateway creates a gateway for the given user. An empty prefix
// selects DefaultRedisKeyPrefix.
func NewRedisGateway(client *redis.Client, prefix string, userID uuid.UUID) *RedisGateway {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisGateway{
		client: client,
		key:    fmt.Sprintf("%s:user:%s:snapshot", prefix, userID),
	}
}

// Key returns the namespaced key.
func (g *RedisGateway) Key() string {
	return g.key
}

func (g *RedisGateway) Load(ctx context.Context) (*domain.Snapshot, error) {
	data, err := g.client.Get(ctx, g.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", g.key, err)
	}
	return Decode(FormatJSON, data)
}

func (g *RedisGateway) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	data, err := Encode(FormatJSON, snapshot)
	if err != nil {
		return err
	}
	if err := g.client.Set(ctx, g.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", g.key, err)
	}
	return nil
}

func (g *RedisGateway) Clear(ctx context.Context) error {
	if err := g.client.Del(ctx, g.key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", g.key, err)
	}
	return nil
}
