package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/cache"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/editorgraph"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/thumbnail"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/serialize"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/observability"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage"
)

// Runner loads drafts from a store and renders them with caching.
//
// A Runner holds no per-request state. Multiple goroutines can safely share
// one, and the exported fields must not be changed after first use.
type Runner struct {
	Store  storage.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Limits bound thumbnails whose options leave them zero.
	Limits thumbnail.Limits
	// Workers bounds concurrent renders in Thumbnails.
	Workers int
	// TTL is the lifetime of cached artifacts.
	TTL time.Duration
	// Title and MaxDepth are page render defaults.
	Title    string
	MaxDepth int
}

// NewRunner creates a runner over store.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(store storage.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:   store,
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Limits:  thumbnail.DefaultLimits,
		Workers: DefaultWorkers,
		TTL:     DefaultTTL,
		Title:   DefaultTitle,
	}
}

// Draft is a loaded project.
type Draft struct {
	ProjectID string
	// Content is the stored JSON, as returned by the store.
	Content json.RawMessage
	// Hash identifies Content in cache keys.
	Hash string
	// UpdatedAt is zero when the store does not track it.
	UpdatedAt time.Time
}

// Fetch reads the raw draft of a project without interpreting it.
func (r *Runner) Fetch(ctx context.Context, projectID string) (*Draft, error) {
	if err := storage.ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	resp, err := r.Store.GetDraft(ctx, projectID)
	if err != nil {
		return nil, err
	}
	content, err := resp.Content()
	if err != nil {
		return nil, storage.NotFound(projectID)
	}
	return &Draft{
		ProjectID: projectID,
		Content:   content,
		Hash:      cache.Hash(content),
		UpdatedAt: resp.Data.UpdatedAt,
	}, nil
}

// Load fetches a draft and normalizes it to a Document. Raw editor graphs
// and JSON-string content are accepted.
func (r *Runner) Load(ctx context.Context, projectID string) (*document.Document, *Draft, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, projectID)
	start := time.Now()

	draft, err := r.Fetch(ctx, projectID)
	if err != nil {
		hooks.OnLoadComplete(ctx, projectID, 0, time.Since(start), err)
		return nil, nil, err
	}
	doc, err := serialize.Normalize(draft.Content, serialize.WithLogger(r.Logger))
	hooks.OnLoadComplete(ctx, projectID, nodeCount(doc), time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}

	r.Logger.Debug("loaded draft",
		"project", projectID,
		"pages", len(doc.Pages),
		"nodes", doc.NodeCount(),
		"duration", time.Since(start))
	return doc, draft, nil
}

// loadOrNew is Load, with a missing or unreadable draft treated as a new
// empty document. Unreadable content is overwritten by the next save.
func (r *Runner) loadOrNew(ctx context.Context, projectID string) (*document.Document, error) {
	doc, _, err := r.Load(ctx, projectID)
	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, errors.ErrCodeNotFound):
		return document.New(), nil
	case errors.IsUnusableContent(err):
		r.Logger.Warn("stored draft is unreadable, starting a new document",
			"project", projectID,
			"code", errors.GetCode(err),
			"error", err)
		return document.New(), nil
	}
	return nil, err
}

// Save strictly serializes a raw editor graph into page pageIndex of the
// stored document and writes the result back. pageIndex may equal the page
// count to append a page. Structural corruption fails with CORRUPT_GRAPH and
// nothing is written.
func (r *Runner) Save(ctx context.Context, projectID string, rawGraph []byte, pageIndex int) (*document.Document, error) {
	if err := storage.ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnSaveStart(ctx, projectID)
	start := time.Now()

	doc, err := r.save(ctx, projectID, rawGraph, pageIndex)
	hooks.OnSaveComplete(ctx, projectID, nodeCount(doc), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("saved draft",
		"project", projectID,
		"page", pageIndex,
		"nodes", doc.NodeCount(),
		"duration", time.Since(start))
	return doc, nil
}

func (r *Runner) save(ctx context.Context, projectID string, rawGraph []byte, pageIndex int) (*document.Document, error) {
	g, err := editorgraph.Parse(rawGraph)
	if err != nil {
		return nil, err
	}
	current, err := r.loadOrNew(ctx, projectID)
	if err != nil {
		return nil, err
	}
	doc, err := serialize.ReplacePage(current, pageIndex, g, serialize.WithLogger(r.Logger))
	if err != nil {
		return nil, err
	}
	if err := r.store(ctx, projectID, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// PutDocument validates a Document and stores it as the project's draft.
// Every invariant violation is reported; see document.Problems.
func (r *Runner) PutDocument(ctx context.Context, projectID string, data []byte) (*document.Document, error) {
	if err := storage.ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	doc, err := document.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if err := document.Validate(doc); err != nil {
		return nil, err
	}
	if err := r.store(ctx, projectID, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *Runner) store(ctx context.Context, projectID string, doc *document.Document) error {
	data, err := document.Marshal(doc)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	return r.Store.SaveDraft(ctx, projectID, data)
}

// Editor rebuilds the editor graph of one page, in the editor's raw JSON
// shape, so a saved draft can be reopened.
func (r *Runner) Editor(ctx context.Context, projectID string, pageIndex int) ([]byte, error) {
	doc, _, err := r.Load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	g, err := serialize.ToGraph(doc, pageIndex, serialize.WithLogger(r.Logger))
	if err != nil {
		return nil, err
	}
	return editorgraph.Marshal(g)
}

// Close releases the cache and the store.
func (r *Runner) Close() error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Store != nil {
		if serr := r.Store.Close(); err == nil {
			err = serr
		}
	}
	return err
}

func nodeCount(doc *document.Document) int {
	if doc == nil {
		return 0
	}
	return doc.NodeCount()
}
