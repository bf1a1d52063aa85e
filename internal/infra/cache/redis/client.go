package redis

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Options mirror the REDIS_* settings. Addr may also be a redis:// URL.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Open connects and pings the server.
func Open(ctx context.Context, o Options) (*redis.Client, error) {
	addr := strings.TrimSpace(o.Addr)
	if addr == "" {
		return nil, errors.New("redis: addr is required")
	}
	opts := &redis.Options{Addr: addr, Password: o.Password, DB: o.DB}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func prefixed(prefix, fallback string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return fallback
	}
	return prefix
}
