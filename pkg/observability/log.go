package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger. Completions with an error log at
// warn level; everything else logs at debug.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks creates hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{Logger: l}
}

// Register installs h as the pipeline, cache and HTTP hooks.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) done(msg string, err error, kv ...any) {
	if err != nil {
		h.Logger.Warn(msg, append(kv, "err", err)...)
		return
	}
	h.Logger.Debug(msg, kv...)
}

func (h *LogHooks) OnLoadStart(_ context.Context, projectID string) {
	h.Logger.Debug("load draft", "project", projectID)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, projectID string, nodeCount int, d time.Duration, err error) {
	h.done("draft loaded", err, "project", projectID, "nodes", nodeCount, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, artifact string) {
	h.Logger.Debug("render", "artifact", artifact)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, artifact string, size int, d time.Duration, err error) {
	h.done("rendered", err, "artifact", artifact, "bytes", size, "took", d)
}

func (h *LogHooks) OnSaveStart(_ context.Context, projectID string) {
	h.Logger.Debug("save draft", "project", projectID)
}

func (h *LogHooks) OnSaveComplete(_ context.Context, projectID string, nodeCount int, d time.Duration, err error) {
	h.done("draft saved", err, "project", projectID, "nodes", nodeCount, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("draft server request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("draft server response", "method", method, "path", path, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Warn("draft server error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
