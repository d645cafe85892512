// Package storagetest holds a conformance suite every draft store passes.
package storagetest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	apperrors "github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage"
)

// Doc is a small valid document used as draft content.
const Doc = `{"version":1,"pages":[{"id":"p1","children":["c1"]}],"nodes":{"c1":{"type":"Text","props":{"text":"Hello"},"children":[]}}}`

// Run exercises a store. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing draft", func(t *testing.T) {
		s := newStore(t)
		resp, err := s.GetDraft(ctx, "nope")
		if !errors.Is(err, storage.ErrNotFound) || !apperrors.Is(err, apperrors.ErrCodeNotFound) {
			t.Errorf("GetDraft(missing) = %v, %v; want ErrNotFound", resp, err)
		}
	})

	t.Run("save and get", func(t *testing.T) {
		s := newStore(t)
		if err := s.SaveDraft(ctx, "shop-1", json.RawMessage(Doc)); err != nil {
			t.Fatalf("SaveDraft() error = %v", err)
		}
		resp, err := s.GetDraft(ctx, "shop-1")
		if err != nil {
			t.Fatalf("GetDraft() error = %v", err)
		}
		content, err := resp.Content()
		if err != nil {
			t.Fatalf("Content() error = %v", err)
		}
		AssertJSONEqual(t, content, []byte(Doc))
	})

	t.Run("string content kept as is", func(t *testing.T) {
		s := newStore(t)
		wrapped, _ := json.Marshal(Doc)
		if err := s.SaveDraft(ctx, "legacy", wrapped); err != nil {
			t.Fatalf("SaveDraft() error = %v", err)
		}
		resp, err := s.GetDraft(ctx, "legacy")
		if err != nil {
			t.Fatal(err)
		}
		var got string
		if err := json.Unmarshal(resp.Data.Content, &got); err != nil || got != Doc {
			t.Errorf("string content = %s, %v", resp.Data.Content, err)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		s := newStore(t)
		_ = s.SaveDraft(ctx, "p", json.RawMessage(`{"version":1}`))
		if err := s.SaveDraft(ctx, "p", json.RawMessage(Doc)); err != nil {
			t.Fatal(err)
		}
		resp, err := s.GetDraft(ctx, "p")
		if err != nil {
			t.Fatal(err)
		}
		AssertJSONEqual(t, resp.Data.Content, []byte(Doc))
		if resp.Data.UpdatedAt.IsZero() {
			t.Error("UpdatedAt not set")
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		s := newStore(t)
		if err := s.SaveDraft(ctx, "../etc/passwd", json.RawMessage(Doc)); !apperrors.Is(err, apperrors.ErrCodeInvalidProjectID) {
			t.Errorf("SaveDraft(bad id) = %v", err)
		}
		if err := s.SaveDraft(ctx, "p", nil); !errors.Is(err, storage.ErrEmptyContent) {
			t.Errorf("SaveDraft(empty) = %v", err)
		}
		if err := s.SaveDraft(ctx, "p", json.RawMessage(`{oops`)); !apperrors.Is(err, apperrors.ErrCodeInvalidFormat) {
			t.Errorf("SaveDraft(invalid json) = %v", err)
		}
		if _, err := s.GetDraft(ctx, ""); !apperrors.Is(err, apperrors.ErrCodeInvalidProjectID) {
			t.Errorf("GetDraft(empty id) = %v", err)
		}
	})

	t.Run("list and delete", func(t *testing.T) {
		s := newStore(t)
		lister, ok := s.(storage.Lister)
		if !ok {
			t.Skip("store does not list projects")
		}
		for _, id := range []string{"b", "a", "c"} {
			if err := s.SaveDraft(ctx, id, json.RawMessage(Doc)); err != nil {
				t.Fatal(err)
			}
		}
		ids, err := lister.ListProjects(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(ids, []string{"a", "b", "c"}) {
			t.Errorf("ListProjects() = %v", ids)
		}

		deleter, ok := s.(storage.Deleter)
		if !ok {
			return
		}
		if err := deleter.DeleteDraft(ctx, "b"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.GetDraft(ctx, "b"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetDraft(deleted) = %v", err)
		}
	})
}

// AssertJSONEqual compares two JSON values ignoring formatting.
func AssertJSONEqual(t *testing.T, got, want []byte) {
	t.Helper()
	var g, w bytes.Buffer
	if err := json.Compact(&g, got); err != nil {
		t.Fatalf("got is not JSON: %v: %s", err, got)
	}
	if err := json.Compact(&w, want); err != nil {
		t.Fatalf("want is not JSON: %v", err)
	}
	if g.String() != w.String() {
		t.Errorf("JSON mismatch:\n got %s\nwant %s", g.String(), w.String())
	}
}
