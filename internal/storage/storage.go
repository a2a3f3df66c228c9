// Package storage provides durable client-side key/value storage for the
// session token and the pending post-login redirect.
//
// Every driver stores plain opaque strings under string keys. A missing
// key is not an error: Get reports it through its ok result and Delete
// succeeds silently.
package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/postify/internal/config"
	"github.com/felixgeelhaar/postify/internal/errors"
)

// Key names a storage entry
type Key string

const (
	// KeyAuthToken holds the current bearer token
	KeyAuthToken Key = "authToken"
	// KeyRedirectAfterLogin holds the route to resume after login
	KeyRedirectAfterLogin Key = "redirectAfterLogin"
)

// Storage is a durable string key/value store
type Storage interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key Key) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key Key, value string) error

	// Delete removes key. Deleting an absent key succeeds.
	Delete(ctx context.Context, key Key) error

	// Close releases the underlying resources.
	Close() error
}

// Open builds the storage driver selected by cfg
func Open(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverFile, "":
		return NewFileStorage(cfg.StoragePath()), nil
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.StoragePath())
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Storage.RedisAddr,
			DB:   cfg.Storage.RedisDB,
		})
		return NewRedisStorage(client, cfg.Storage.RedisPrefix), nil
	case config.DriverMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, errors.New(errors.ErrCodeStorageDriver,
			fmt.Sprintf("unknown storage driver: %s", cfg.Storage.Driver)).
			WithSuggestion("Use one of: file, sqlite, redis, memory")
	}
}

func readError(key Key, err error) error {
	return errors.Wrap(errors.ErrCodeStorageRead, fmt.Sprintf("failed to read %s", key), err)
}

func writeError(key Key, err error) error {
	return errors.Wrap(errors.ErrCodeStorageWrite, fmt.Sprintf("failed to write %s", key), err)
}
