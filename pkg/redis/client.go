package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// Client wraps the go-redis client used by the media cleanup queue.
type Client struct {
	*redis.Client
	logger *zap.Logger
}

// NewClient creates a Redis client and verifies connectivity.
func NewClient(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	logger.Info("redis connected", zap.String("addr", addr), zap.Int("db", db))
	return &Client{Client: rdb, logger: logger}, nil
}

// Backlog returns the number of pending entries in each list, keyed by list name.
func (c *Client) Backlog(ctx context.Context, lists ...string) (map[string]int64, error) {
	pipe := c.Pipeline()
	cmds := make(map[string]*redis.IntCmd, len(lists))
	for _, l := range lists {
		cmds[l] = pipe.LLen(ctx, l)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis backlog: %w", err)
	}
	out := make(map[string]int64, len(lists))
	for l, cmd := range cmds {
		out[l] = cmd.Val()
	}
	return out, nil
}
