// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/olegiv/staydesk/internal/store"
)

// Storage persists the admin token across restarts.
// Get returns ErrNoToken when the key holds nothing.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStorage keeps values in process memory. Nothing survives a restart.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get implements Storage.
func (m *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNoToken
	}
	return v, nil
}

// Set implements Storage.
func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

// Delete implements Storage.
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

// SQLStorage stores values in the local kv table.
type SQLStorage struct {
	queries *store.Queries
}

// NewSQLStorage creates a storage backed by the local database.
func NewSQLStorage(q *store.Queries) *SQLStorage {
	return &SQLStorage{queries: q}
}

// Get implements Storage.
func (s *SQLStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := s.queries.GetValue(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNoToken
	}
	return v, err
}

// Set implements Storage.
func (s *SQLStorage) Set(ctx context.Context, key, value string) error {
	return s.queries.SetValue(ctx, key, value)
}

// Delete implements Storage.
func (s *SQLStorage) Delete(ctx context.Context, key string) error {
	return s.queries.DeleteValue(ctx, key)
}

// RedisOptions configures RedisStorage.
type RedisOptions struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Prefix is prepended to all keys (e.g., "staydesk:")
	Prefix string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// DefaultRedisOptions returns sensible defaults.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Prefix:         "staydesk:",
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    3 * time.Second,
		WriteTimeout:   3 * time.Second,
	}
}

// RedisStorage shares the admin token between console replicas.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage connects to Redis and verifies the connection.
func NewRedisStorage(opts RedisOptions) (*RedisStorage, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, err
	}
	if opts.ConnectTimeout > 0 {
		redisOpts.DialTimeout = opts.ConnectTimeout
	}
	if opts.ReadTimeout > 0 {
		redisOpts.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		redisOpts.WriteTimeout = opts.WriteTimeout
	}

	client := redis.NewClient(redisOpts)

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisStorage{client: client, prefix: opts.Prefix}, nil
}

func (r *RedisStorage) key(k string) string {
	return r.prefix + k
}

// Get implements Storage.
func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoToken
	}
	return v, err
}

// Set implements Storage. Values never expire; logout or a rejected
// token removes them.
func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

// Delete implements Storage.
func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Close closes the Redis connection.
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
