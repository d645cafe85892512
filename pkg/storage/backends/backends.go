// Package backends opens the draft store selected by configuration.
package backends

import (
	"context"
	"fmt"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/config"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage/file"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage/memory"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage/mongo"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage/redis"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage/remote"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage/sqlite"
)

// Open connects to the configured backend. The caller closes the store.
func Open(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Backend {
	case config.StorageMemory:
		return memory.NewStore(), nil
	case config.StorageFile, "":
		return opened(file.NewStore(cfg.Path))
	case config.StorageSQLite:
		return opened(sqlite.Open(cfg.Path))
	case config.StorageRedis:
		return opened(redis.NewStore(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}))
	case config.StorageMongo:
		return opened(mongo.NewStore(ctx, mongo.Config{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		}))
	case config.StorageRemote:
		var opts []remote.Option
		if cfg.RemoteToken != "" {
			opts = append(opts, remote.WithToken(cfg.RemoteToken))
		}
		return opened(remote.NewStore(cfg.RemoteURL, opts...))
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// opened keeps a failed constructor from returning a typed nil Store.
func opened[S storage.Store](s S, err error) (storage.Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
