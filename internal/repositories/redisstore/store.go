// Package redisstore persists the device-local POS state in redis as
// namespaced JSON records, one whole value per key.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Store struct {
	client    *redis.Client
	namespace string
}

// NewStore connects to redis and verifies the connection.
func NewStore(addr, password, namespace string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &Store{client: client, namespace: namespace}, nil
}

// NewStoreWithClient wraps an existing client; used by tests.
func NewStoreWithClient(client *redis.Client, namespace string) *Store {
	return &Store{client: client, namespace: namespace}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(parts ...string) string {
	key := s.namespace
	for _, p := range parts {
		key += ":" + p
	}
	return key
}
