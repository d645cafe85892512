// Package file stores drafts as one JSON file per project.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage"
)

// Store is a file-based draft store for CLI use. Each draft is written to
// <baseDir>/<projectID>.json as a storage.DraftData object.
type Store struct {
	mu      sync.RWMutex
	baseDir string
}

// NewStore creates a store rooted at baseDir.
// If baseDir is empty, defaults to ~/.config/sitebuilder/drafts/
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "sitebuilder", "drafts")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create draft dir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

func (s *Store) draftPath(projectID string) string {
	return filepath.Join(s.baseDir, projectID+".json")
}

func (s *Store) GetDraft(ctx context.Context, projectID string) (*storage.Response, error) {
	if err := storage.ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.draftPath(projectID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.NotFound(projectID)
		}
		return nil, fmt.Errorf("read draft file: %w", err)
	}

	var d storage.DraftData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse draft file: %w", err)
	}
	return storage.Found(d.Content, d.UpdatedAt), nil
}

func (s *Store) SaveDraft(ctx context.Context, projectID string, content json.RawMessage) error {
	if err := storage.CheckSave(projectID, content); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(storage.DraftData{Content: content, UpdatedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	// Write to a temp file and rename so readers never see a partial draft.
	path := s.draftPath(projectID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write draft file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write draft file: %w", err)
	}
	return nil
}

func (s *Store) DeleteDraft(ctx context.Context, projectID string) error {
	if err := storage.ValidateProjectID(projectID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.draftPath(projectID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove draft file: %w", err)
	}
	return nil
}

// ListProjects returns the ids with a draft file, sorted.
func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read draft dir: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Store) Close() error { return nil }

// Path returns the base directory for draft files.
func (s *Store) Path() string {
	return s.baseDir
}

var (
	_ storage.Store   = (*Store)(nil)
	_ storage.Lister  = (*Store)(nil)
	_ storage.Deleter = (*Store)(nil)
)
