package adapter

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"pulsechat/internal/infrastructure/presence/port"
)

// RedisTracker implements port.Tracker on Redis sets, one set per user.
// Disconnect runs SREM and SCARD inside MULTI/EXEC so the emptiness check is
// atomic; BatchIsOnline pipelines the per-user SCARD calls into one round trip.
type RedisTracker struct {
	client *redis.Client
}

// NewRedisTracker connects to the given Redis URL and verifies it with a ping.
func NewRedisTracker(url string) (*RedisTracker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("presence: parse redis url: %w", err)
	}
	c := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("presence: ping: %w", err)
	}
	return &RedisTracker{client: c}, nil
}

var _ port.Tracker = (*RedisTracker)(nil)

func (t *RedisTracker) Connect(ctx context.Context, userID, connID string) error {
	return t.client.SAdd(ctx, presenceKey(userID), connID).Err()
}

func (t *RedisTracker) Disconnect(ctx context.Context, userID, connID string) (bool, error) {
	var card *redis.IntCmd
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, presenceKey(userID), connID)
		card = pipe.SCard(ctx, presenceKey(userID))
		return nil
	})
	if err != nil {
		return false, err
	}
	return card.Val() == 0, nil
}

func (t *RedisTracker) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := t.client.SCard(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *RedisTracker) BatchIsOnline(ctx context.Context, userIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	cmds := make([]*redis.IntCmd, len(userIDs))
	_, err := t.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range userIDs {
			cmds[i] = pipe.SCard(ctx, presenceKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, id := range userIDs {
		result[id] = cmds[i].Val() > 0
	}
	return result, nil
}

func (t *RedisTracker) Close() error {
	return t.client.Close()
}

func presenceKey(userID string) string {
	return "presence:user:" + userID
}
