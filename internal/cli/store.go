package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pacscope/pacscope/pkg/errors"
	"github.com/pacscope/pacscope/pkg/store"
)

// Store backend names accepted in config and flags.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendMongo = "mongo"
)

// defaultSnapshotDir returns the file backend's default directory,
// ~/.local/share/pacscope/snapshots on Linux.
func defaultSnapshotDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "pacscope", "snapshots"), nil
}

// openStore constructs the snapshot store selected by cfg.Store.
func openStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case backendFile, "":
		dir := cfg.Dir
		if dir == "" {
			d, err := defaultSnapshotDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return store.NewFileStore(dir)
	case backendRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "redis backend requires store.redis_url")
		}
		return store.NewRedisStore(ctx, cfg.RedisURL)
	case backendMongo:
		if cfg.MongoURI == "" {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "mongo backend requires store.mongo_uri")
		}
		return store.NewMongoStore(ctx, cfg.MongoURI)
	default:
		return nil, errors.New(errors.ErrCodeInvalidArgument, "unknown store backend: %s", cfg.Backend)
	}
}
