// Package redis implements repository.FavoriteRepository on Redis.
//
// LAYOUT:
//
//	<ns>:favorites:user:<user_id>  LIST of JSON-encoded favorites, RPUSH order
//
// A list per user keeps listing in insertion order and lets Delete drop a
// single element with LREM count=1, even when duplicates exist.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Store is a favorites repository backed by a Redis client.
type Store struct {
	client *redis.Client
	keys   Keys
	logger *slog.Logger
}

// New wraps an existing client. The caller still owns the client, but
// Store.Close will close it.
func New(client *redis.Client, namespace string, logger *slog.Logger) *Store {
	return &Store{
		client: client,
		keys:   NewKeys(namespace),
		logger: logger,
	}
}

// Open parses a redis:// or rediss:// URL, connects and pings.
func Open(ctx context.Context, url, namespace string, logger *slog.Logger) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parsing url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: pinging %s: %w", opts.Addr, err)
	}

	logger.Info("connected to redis",
		slog.String("addr", opts.Addr),
		slog.Int("db", opts.DB),
		slog.String("namespace", namespace),
	)
	return New(client, namespace, logger), nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
