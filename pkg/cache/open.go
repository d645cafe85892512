package cache

import (
	"context"
	"fmt"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/config"
)

// Open creates the configured cache backend.
func Open(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case config.CacheNone:
		return NewNullCache(), nil
	case config.CacheFile, "":
		c, err := NewFileCache(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.CacheRedis:
		c, err := NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}
