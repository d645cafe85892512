package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/cache"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/editorgraph"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/page"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/thumbnail"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/observability"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage/memory"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage/storagetest"
)

const rawGraph = `{
  "ROOT":  {"type": {"resolvedName": "Container"}, "nodes": ["page1"]},
  "page1": {"type": {"resolvedName": "Page"}, "nodes": ["n1"], "parent": "ROOT"},
  "n1":    {"type": {"resolvedName": "Text"}, "props": {"text": "Saved"}, "nodes": [], "parent": "page1"}
}`

const cyclicGraph = `{
  "ROOT":  {"type": "Container", "nodes": ["page1"]},
  "page1": {"type": "Page", "nodes": ["a"]},
  "a":     {"type": "Container", "nodes": ["b"]},
  "b":     {"type": "Container", "nodes": ["a"]}
}`

const helloHTML = `<main class="site-page" data-page-id="p1"><p class="block block-text">Hello</p></main>`

// countingCache records Set calls on top of a real cache.
type countingCache struct {
	cache.Cache
	mu   sync.Mutex
	sets int
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.Cache.Set(ctx, key, data, ttl)
}

func newRunner(t *testing.T, drafts map[string]string) (*Runner, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	for id, content := range drafts {
		if err := store.SaveDraft(context.Background(), id, json.RawMessage(content)); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	return NewRunner(store, nil, nil, log.New(&bytes.Buffer{})), store
}

func quoted(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestLoad(t *testing.T) {
	r, _ := newRunner(t, map[string]string{
		"doc":     storagetest.Doc,
		"encoded": quoted(storagetest.Doc),
		"raw":     rawGraph,
		"junk":    `{"foo":1}`,
	})
	ctx := context.Background()

	tests := []struct {
		id       string
		wantPage string
		code     errors.Code
	}{
		{"doc", "p1", ""},
		{"encoded", "p1", ""},
		{"raw", "page1", ""},
		{"junk", "", errors.ErrCodeInvalidFormat},
		{"missing", "", errors.ErrCodeNotFound},
		{"../etc", "", errors.ErrCodeInvalidProjectID},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			doc, draft, err := r.Load(ctx, tt.id)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("Load() error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if doc.Pages[0].ID != tt.wantPage {
				t.Errorf("page id = %q, want %q", doc.Pages[0].ID, tt.wantPage)
			}
			if draft.Hash == "" || draft.ProjectID != tt.id {
				t.Errorf("draft = %+v", draft)
			}
		})
	}
}

func TestRenderPage(t *testing.T) {
	r, _ := newRunner(t, map[string]string{"shop": storagetest.Doc})
	counting := &countingCache{Cache: mustFileCache(t)}
	r.Cache = counting
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := r.RenderPage(ctx, "shop", PageOptions{})
		if err != nil {
			t.Fatalf("RenderPage() error = %v", err)
		}
		if string(got) != helloHTML {
			t.Fatalf("RenderPage() = %s", got)
		}
	}
	if counting.sets != 1 {
		t.Errorf("cache sets = %d, want 1", counting.sets)
	}

	full, err := r.RenderPage(ctx, "shop", PageOptions{Shell: true, Title: "Shop"})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(full, []byte("<!DOCTYPE html>")) || !bytes.Contains(full, []byte("<title>Shop</title>")) {
		t.Errorf("shell output = %.80s", full)
	}

	embedded, err := r.RenderPage(ctx, "shop", PageOptions{Mode: page.ModeEmbedded})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(embedded, []byte(`data-node-id="c1"`)) {
		t.Errorf("embedded output = %s", embedded)
	}

	if _, err := r.RenderPage(ctx, "shop", PageOptions{Page: 4}); !errors.Is(err, errors.ErrCodePageNotFound) {
		t.Errorf("RenderPage(page 4) error = %v", err)
	}
	if _, err := r.RenderPage(ctx, "nope", PageOptions{}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("RenderPage(missing) error = %v", err)
	}
}

func TestRenderPageInvalidatedBySave(t *testing.T) {
	r, store := newRunner(t, map[string]string{"shop": storagetest.Doc})
	r.Cache = mustFileCache(t)
	ctx := context.Background()

	if _, err := r.RenderPage(ctx, "shop", PageOptions{}); err != nil {
		t.Fatal(err)
	}
	updated := strings.Replace(storagetest.Doc, "Hello", "Bye", 1)
	if err := store.SaveDraft(ctx, "shop", json.RawMessage(updated)); err != nil {
		t.Fatal(err)
	}
	got, err := r.RenderPage(ctx, "shop", PageOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(got, []byte(">Bye<")) {
		t.Errorf("stale render after save: %s", got)
	}
}

func mustFileCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSaveNewProject(t *testing.T) {
	r, store := newRunner(t, nil)
	ctx := context.Background()

	doc, err := r.Save(ctx, "fresh", []byte(rawGraph), 0)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(doc.Pages) != 1 || doc.Pages[0].ID != "page1" {
		t.Fatalf("pages = %+v", doc.Pages)
	}

	resp, err := store.GetDraft(ctx, "fresh")
	if err != nil {
		t.Fatal(err)
	}
	stored, err := document.Unmarshal(resp.Data.Content)
	if err != nil {
		t.Fatalf("stored content is not a document: %v", err)
	}
	if n, ok := stored.Node("n1"); !ok || n.Type != "Text" {
		t.Errorf("stored node n1 = %+v, %v", n, ok)
	}

	// Reopening in the editor gives back an equivalent graph.
	raw, err := r.Editor(ctx, "fresh", 0)
	if err != nil {
		t.Fatalf("Editor() error = %v", err)
	}
	g, err := editorgraph.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if pageID, ok := g.PageID(); !ok || pageID != "page1" {
		t.Errorf("editor page = %q, %v", pageID, ok)
	}
	if got := g.Children("page1"); len(got) != 1 || got[0] != "n1" {
		t.Errorf("editor children = %v", got)
	}
}

func TestSaveAppendsPage(t *testing.T) {
	r, _ := newRunner(t, map[string]string{"shop": storagetest.Doc})
	second := strings.NewReplacer("page1", "about", `"n1"`, `"n2"`).Replace(rawGraph)

	doc, err := r.Save(context.Background(), "shop", []byte(second), 1)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(doc.Pages) != 2 || doc.Pages[0].ID != "p1" || doc.Pages[1].ID != "about" {
		t.Errorf("pages = %+v", doc.Pages)
	}

	html, err := r.RenderPage(context.Background(), "shop", PageOptions{Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(html, []byte(">Saved<")) {
		t.Errorf("page 1 = %s", html)
	}
}

func TestSaveOverUnreadableDraft(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong shape", `{"foo":1}`},
		{"future version", `{"version":99,"pages":[],"nodes":{}}`},
		{"plain string", quoted("not a page")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store := newRunner(t, map[string]string{"p1": tt.content})
			ctx := context.Background()

			doc, err := r.Save(ctx, "p1", []byte(rawGraph), 0)
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if len(doc.Pages) != 1 || doc.Pages[0].ID != "page1" {
				t.Errorf("pages = %+v", doc.Pages)
			}

			resp, err := store.GetDraft(ctx, "p1")
			if err != nil {
				t.Fatal(err)
			}
			if _, err := document.Unmarshal(resp.Data.Content); err != nil {
				t.Errorf("stored content is not a document: %v", err)
			}
		})
	}
}

func TestSaveRejectsCorruptGraph(t *testing.T) {
	r, store := newRunner(t, map[string]string{"shop": storagetest.Doc})
	ctx := context.Background()

	tests := []struct {
		name  string
		graph string
		page  int
		code  errors.Code
	}{
		{"cycle", cyclicGraph, 0, errors.ErrCodeCorruptGraph},
		{"not json", `{`, 0, errors.ErrCodeInvalidFormat},
		{"page gap", rawGraph, 5, errors.ErrCodePageNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Save(ctx, "shop", []byte(tt.graph), tt.page); !errors.Is(err, tt.code) {
				t.Errorf("Save() error = %v, want %s", err, tt.code)
			}
		})
	}

	resp, _ := store.GetDraft(ctx, "shop")
	storagetest.AssertJSONEqual(t, resp.Data.Content, []byte(storagetest.Doc))
}

func TestPutDocument(t *testing.T) {
	r, _ := newRunner(t, nil)
	ctx := context.Background()

	if _, err := r.PutDocument(ctx, "shop", []byte(storagetest.Doc)); err != nil {
		t.Fatalf("PutDocument() error = %v", err)
	}

	dangling := `{"version":1,"pages":[{"id":"p1","children":["x"]}],"nodes":{}}`
	_, err := r.PutDocument(ctx, "shop", []byte(dangling))
	if !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("PutDocument(dangling) error = %v", err)
	}
	if len(document.Problems(err)) != 1 {
		t.Errorf("problems = %v", document.Problems(err))
	}

	if _, err := r.PutDocument(ctx, "shop", []byte(`{"version":2,"pages":[],"nodes":{}}`)); !errors.Is(err, errors.ErrCodeUnsupportedVersion) {
		t.Errorf("PutDocument(v2) error = %v", err)
	}
}

func TestThumbnail(t *testing.T) {
	r, _ := newRunner(t, map[string]string{
		"shop": storagetest.Doc,
		"junk": `{"foo":1}`,
	})
	ctx := context.Background()

	data, err := r.Thumbnail(ctx, "shop", ThumbnailOptions{Format: FormatJSON})
	if err != nil {
		t.Fatalf("Thumbnail(json) error = %v", err)
	}
	var p thumbnail.Preview
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatal(err)
	}
	if p.Placeholder || len(p.Items) != 1 || p.Items[0].Text != "Hello" {
		t.Errorf("preview = %+v", p)
	}

	svg, err := r.Thumbnail(ctx, "shop", ThumbnailOptions{Width: 160, Height: 100})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(svg, []byte("<svg")) || !bytes.Contains(svg, []byte(`width="160"`)) {
		t.Errorf("svg = %.120s", svg)
	}

	junk, err := r.Thumbnail(ctx, "junk", ThumbnailOptions{})
	if err != nil {
		t.Fatalf("unreadable content should not fail: %v", err)
	}
	if !bytes.Contains(junk, []byte(thumbnail.PlaceholderText)) {
		t.Errorf("junk thumbnail = %s", junk)
	}

	if _, err := r.Thumbnail(ctx, "missing", ThumbnailOptions{}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Thumbnail(missing) error = %v", err)
	}
}

func TestThumbnails(t *testing.T) {
	r, _ := newRunner(t, map[string]string{
		"shop": storagetest.Doc,
		"junk": `{"foo":1}`,
	})
	r.Workers = 2

	ids := []string{"shop", "missing", "junk", "shop"}
	results, err := r.Thumbnails(context.Background(), ids, ThumbnailOptions{})
	if err != nil {
		t.Fatalf("Thumbnails() error = %v", err)
	}
	if len(results) != len(ids) {
		t.Fatalf("got %d results", len(results))
	}
	for i, res := range results {
		if res.ProjectID != ids[i] {
			t.Errorf("result %d is for %q, want %q", i, res.ProjectID, ids[i])
		}
	}
	if results[0].Preview.Placeholder || results[0].Error != "" {
		t.Errorf("shop = %+v", results[0])
	}
	if r := results[1]; r.Code != errors.ErrCodeNotFound || r.Preview.Reason != thumbnail.ReasonNotFound {
		t.Errorf("missing = %+v", r)
	}
	if r := results[2]; r.Error != "" || r.Preview.Reason != thumbnail.ReasonUnreadable {
		t.Errorf("junk = %+v", r)
	}
}

func TestThumbnailsLimits(t *testing.T) {
	r, _ := newRunner(t, nil)
	ids := make([]string, MaxBatch+1)
	if _, err := r.Thumbnails(context.Background(), ids, ThumbnailOptions{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("oversized batch error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Thumbnails(ctx, []string{"a", "b"}, ThumbnailOptions{}); err == nil {
		t.Error("cancelled batch should fail")
	}
}

func TestOutlineDOT(t *testing.T) {
	r, _ := newRunner(t, map[string]string{"shop": storagetest.Doc})
	dot, err := r.Outline(context.Background(), "shop", OutlineOptions{Format: FormatDOT})
	if err != nil {
		t.Fatalf("Outline() error = %v", err)
	}
	for _, want := range []string{"digraph", `"page:p1"`, `"node:c1"`} {
		if !bytes.Contains(dot, []byte(want)) {
			t.Errorf("DOT missing %s:\n%s", want, dot)
		}
	}
	if _, err := r.Outline(context.Background(), "shop", OutlineOptions{Format: "gif"}); !errors.Is(err, errors.ErrCodeInvalidRenderOption) {
		t.Errorf("Outline(gif) error = %v", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	loads   int
	saves   int
	renders []string
	lastErr error
}

func (h *recordingHooks) OnLoadComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loads++
}

func (h *recordingHooks) OnSaveComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.saves++
	h.lastErr = err
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, artifact string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders = append(h.renders, artifact)
}

func TestPipelineHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r, _ := newRunner(t, map[string]string{"shop": storagetest.Doc})
	ctx := context.Background()
	if _, err := r.RenderPage(ctx, "shop", PageOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Outline(ctx, "shop", OutlineOptions{Format: FormatDOT}); err != nil {
		t.Fatal(err)
	}
	_, _ = r.Save(ctx, "shop", []byte(cyclicGraph), 0)

	// Save loads the current document before merging the page.
	if hooks.loads != 3 {
		t.Errorf("loads = %d, want 3", hooks.loads)
	}
	if hooks.saves != 1 || !errors.IsStructural(hooks.lastErr) {
		t.Errorf("saves = %d, last err = %v", hooks.saves, hooks.lastErr)
	}
	if strings.Join(hooks.renders, ",") != "page,outline" {
		t.Errorf("renders = %v", hooks.renders)
	}
}
