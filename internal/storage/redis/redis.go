// Package redis provides a Redis-backed implementation of the storage.Backend
// interface. Each collection is one string key.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mmynk/wattcount/internal/storage"
)

// Ensure Store implements storage.Backend
var _ storage.Backend = (*Store)(nil)

// Store implements storage.Backend using a Redis client.
type Store struct {
	c *goredis.Client
}

// New connects with opts and pings the server.
func New(ctx context.Context, opts *goredis.Options) (*Store, error) {
	c := goredis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return &Store{c: c}, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(c *goredis.Client) *Store { return &Store{c: c} }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrMiss
		}
		return nil, err
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.c.Set(ctx, key, value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.c.Del(ctx, key).Err()
}

func (s *Store) Close() error {
	return s.c.Close()
}
