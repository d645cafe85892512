// Package memory provides an in-process draft store for tests and
// development.
package memory

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage"
)

type entry struct {
	content json.RawMessage
	updated time.Time
}

// Store keeps drafts in a map. Content is copied on the way in and out.
type Store struct {
	mu     sync.RWMutex
	drafts map[string]entry
	now    func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{drafts: make(map[string]entry), now: time.Now}
}

func (s *Store) GetDraft(ctx context.Context, projectID string) (*storage.Response, error) {
	if err := storage.ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.drafts[projectID]
	if !ok {
		return nil, storage.NotFound(projectID)
	}
	return storage.Found(slices.Clone(e.content), e.updated), nil
}

func (s *Store) SaveDraft(ctx context.Context, projectID string, content json.RawMessage) error {
	if err := storage.CheckSave(projectID, content); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[projectID] = entry{content: slices.Clone(content), updated: s.now().UTC()}
	return nil
}

func (s *Store) DeleteDraft(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, projectID)
	return nil
}

// ListProjects returns the ids with a draft, sorted.
func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.drafts))
	for id := range s.drafts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Store) Close() error { return nil }

var (
	_ storage.Store   = (*Store)(nil)
	_ storage.Lister  = (*Store)(nil)
	_ storage.Deleter = (*Store)(nil)
)
