package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jaki95/mixplayer/config"
)

var ErrNotFound = errors.New("key not found")

// Storage persists the small pieces of client state that survive restarts,
// such as the theme preference and the per-mix progress map.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte) error

	Keys(ctx context.Context) ([]string, error)

	Close() error
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

// New builds the backend selected in cfg.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalFileStorage(cfg.Dir)
	case "gcs":
		if cfg.Bucket == "" {
			return nil, errors.New("gcs storage requires a bucket")
		}
		return NewGCSStorage(ctx, cfg.Bucket, cfg.Prefix, cfg.CredentialsFile)
	case "redis":
		return NewRedisStorage(ctx, cfg.RedisURL, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
