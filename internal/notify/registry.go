package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ConnectionRegistry publishes a payload to a recipient's live channel.
// Delivery is best-effort: no guarantee, and no error surfaced to the
// transition that triggered the publish.
type ConnectionRegistry interface {
	Publish(ctx context.Context, userID string, payload any) error
}

// RedisRegistry pushes payloads over per-user Redis pub/sub channels, which
// the websocket gateway subscribes to.
type RedisRegistry struct {
	client *redis.Client
}

// NewRedisRegistry builds a registry on an existing client.
func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

// Publish marshals the payload and publishes it to the user's channel.
func (r *RedisRegistry) Publish(ctx context.Context, userID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, userChannel(userID), body).Err()
}

func userChannel(userID string) string {
	return fmt.Sprintf("notify:user:%s", userID)
}
