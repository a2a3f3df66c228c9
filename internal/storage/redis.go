package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps entries in Redis under a common key prefix, so one
// session can be shared by several shells or hosts.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage wraps an existing client. Keys are stored as prefix+key.
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

func (r *RedisStorage) key(k Key) string {
	return r.prefix + string(k)
}

// Get implements Storage
func (r *RedisStorage) Get(ctx context.Context, key Key) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, readError(key, err)
	}
	return v, true, nil
}

// Set implements Storage. Entries never expire on their own.
func (r *RedisStorage) Set(ctx context.Context, key Key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return writeError(key, err)
	}
	return nil
}

// Delete implements Storage
func (r *RedisStorage) Delete(ctx context.Context, key Key) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return writeError(key, err)
	}
	return nil
}

// Close implements Storage
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
