// Package redis stores drafts in Redis for multi-instance servers.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage"
)

// DefaultPrefix namespaces draft keys.
const DefaultPrefix = "sitebuilder:draft:"

// Config configures the Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to project ids. Default: DefaultPrefix.
	Prefix string
}

// Store keeps each draft under <prefix><projectID> as a storage.DraftData
// JSON value.
type Store struct {
	client *goredis.Client
	prefix string
}

// NewStore connects to Redis and verifies the connection.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", cfg.Addr, err)
	}
	return NewStoreWithClient(client, cfg.Prefix), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client *goredis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(projectID string) string { return s.prefix + projectID }

func (s *Store) GetDraft(ctx context.Context, projectID string) (*storage.Response, error) {
	if err := storage.ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(projectID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, storage.NotFound(projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var d storage.DraftData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse draft: %w", err)
	}
	return storage.Found(d.Content, d.UpdatedAt), nil
}

func (s *Store) SaveDraft(ctx context.Context, projectID string, content json.RawMessage) error {
	if err := storage.CheckSave(projectID, content); err != nil {
		return err
	}
	data, err := json.Marshal(storage.DraftData{Content: content, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := s.client.Set(ctx, s.key(projectID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) DeleteDraft(ctx context.Context, projectID string) error {
	if err := s.client.Del(ctx, s.key(projectID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// ListProjects scans the key space under the prefix.
func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

var (
	_ storage.Store   = (*Store)(nil)
	_ storage.Lister  = (*Store)(nil)
	_ storage.Deleter = (*Store)(nil)
)
