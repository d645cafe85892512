// Package config loads sitebuilder settings from a TOML file.
//
// Every field has a default, so an empty or missing file is a valid
// configuration. CLI flags override file values after loading.
//
//	[server]
//	addr = ":8080"
//	read_timeout = "15s"
//
//	[storage]
//	backend = "sqlite"
//	path = "drafts.db"
//
//	[cache]
//	backend = "file"
//	ttl = "24h"
//
//	[thumbnail]
//	max_top_level = 12
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/thumbnail"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMongo  = "mongo"
	StorageRemote = "remote"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// StorageBackends lists the accepted storage.backend values.
var StorageBackends = []string{StorageMemory, StorageFile, StorageSQLite, StorageRedis, StorageMongo, StorageRemote}

// CacheBackends lists the accepted cache.backend values.
var CacheBackends = []string{CacheNone, CacheFile, CacheRedis}

// Duration is a time.Duration written as a string ("30s", "24h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the full configuration.
type Config struct {
	Server    ServerConfig     `toml:"server"`
	Storage   StorageConfig    `toml:"storage"`
	Cache     CacheConfig      `toml:"cache"`
	Render    RenderConfig     `toml:"render"`
	Thumbnail thumbnail.Limits `toml:"thumbnail"`
}

// ServerConfig configures `sitebuilder serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	// ThumbnailWorkers bounds concurrent thumbnail builds per batch request.
	ThumbnailWorkers int `toml:"thumbnail_workers"`
}

// StorageConfig selects and configures the draft store.
type StorageConfig struct {
	Backend string `toml:"backend"`
	// Path is the draft directory (file) or database file (sqlite).
	Path string `toml:"path"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`

	RemoteURL   string `toml:"remote_url"`
	RemoteToken string `toml:"remote_token"`
}

// CacheConfig configures the rendered artifact cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	TTL       Duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
}

// RenderConfig holds page renderer defaults.
type RenderConfig struct {
	MaxDepth int `toml:"max_depth"`
	// Title is used for the HTML document shell when a project has none.
	Title string `toml:"title"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// Load reads path and applies defaults. Unknown keys are an error so typos
// do not pass silently.
func Load(path string) (*Config, error) {
	c := &Config{}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file %s not found", path)
		}
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// SetDefaults fills zero fields. It is idempotent.
func (c *Config) SetDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 15 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 30 * time.Second
	}
	if c.Server.ThumbnailWorkers == 0 {
		c.Server.ThumbnailWorkers = 8
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = StorageFile
	}
	if c.Storage.Backend == StorageSQLite && c.Storage.Path == "" {
		c.Storage.Path = "sitebuilder.db"
	}
	if c.Storage.RedisAddr == "" {
		c.Storage.RedisAddr = "localhost:6379"
	}
	if c.Storage.MongoURI == "" {
		c.Storage.MongoURI = "mongodb://localhost:27017"
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheFile
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 24 * time.Hour
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = c.Storage.RedisAddr
	}

	if c.Render.Title == "" {
		c.Render.Title = "Site"
	}
	if c.Thumbnail.MaxTopLevel == 0 {
		c.Thumbnail.MaxTopLevel = thumbnail.DefaultLimits.MaxTopLevel
	}
	if c.Thumbnail.MaxChildren == 0 {
		c.Thumbnail.MaxChildren = thumbnail.DefaultLimits.MaxChildren
	}
	if c.Thumbnail.MaxDepth == 0 {
		c.Thumbnail.MaxDepth = thumbnail.DefaultLimits.MaxDepth
	}
	if c.Thumbnail.TextLimit == 0 {
		c.Thumbnail.TextLimit = thumbnail.DefaultLimits.TextLimit
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error
	if !slices.Contains(StorageBackends, c.Storage.Backend) {
		err = multierr.Append(err, fmt.Errorf("storage.backend %q is not one of %s", c.Storage.Backend, strings.Join(StorageBackends, ", ")))
	}
	if c.Storage.Backend == StorageRemote && c.Storage.RemoteURL == "" {
		err = multierr.Append(err, fmt.Errorf("storage.remote_url is required for the remote backend"))
	}
	if !slices.Contains(CacheBackends, c.Cache.Backend) {
		err = multierr.Append(err, fmt.Errorf("cache.backend %q is not one of %s", c.Cache.Backend, strings.Join(CacheBackends, ", ")))
	}
	if c.Cache.TTL.Duration < 0 {
		err = multierr.Append(err, fmt.Errorf("cache.ttl must not be negative"))
	}
	if c.Server.ThumbnailWorkers < 0 {
		err = multierr.Append(err, fmt.Errorf("server.thumbnail_workers must not be negative"))
	}
	if c.Render.MaxDepth < 0 {
		err = multierr.Append(err, fmt.Errorf("render.max_depth must not be negative"))
	}
	for _, f := range []struct {
		name string
		v    int
	}{
		{"thumbnail.max_top_level", c.Thumbnail.MaxTopLevel},
		{"thumbnail.max_children", c.Thumbnail.MaxChildren},
		{"thumbnail.max_depth", c.Thumbnail.MaxDepth},
		{"thumbnail.text_limit", c.Thumbnail.TextLimit},
	} {
		if f.v < 0 {
			err = multierr.Append(err, fmt.Errorf("%s must not be negative", f.name))
		}
	}
	return err
}

// Write encodes c as TOML to path.
func (c *Config) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
