package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/buildinfo"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/page"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/thumbnail"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/pipeline"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage"
)

// =============================================================================
// API
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	lister, ok := s.runner.Store.(storage.Lister)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "storage backend cannot list projects"))
		return
	}
	ids, err := lister.ListProjects(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": ids})
}

// handleCreateProject stores an editor graph as the first page of a new
// project with a generated id.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}

	id := uuid.NewString()
	doc, err := s.runner.Save(r.Context(), id, raw, 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/projects/"+id+"/draft")
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"projectId": id,
		"data":      map[string]any{"content": doc},
	})
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := s.runner.Fetch(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			writeJSON(w, http.StatusNotFound, storage.Response{Error: errors.UserMessage(err)})
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, storage.Found(draft.Content, draft.UpdatedAt))
}

// handlePutDraft stores a Document sent as {"content": ...}. The content may
// be the document object or a JSON string holding it.
func (s *Server) handlePutDraft(w http.ResponseWriter, r *http.Request) {
	var body storage.DraftData
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode draft body"))
		return
	}
	content := bytes.TrimSpace(body.Content)
	if len(content) > 0 && content[0] == '"' {
		var inner string
		if err := json.Unmarshal(content, &inner); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode draft content"))
			return
		}
		content = []byte(inner)
	}
	if len(content) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeEmptyContent, "draft content is empty"))
		return
	}

	if _, err := s.runner.PutDocument(r.Context(), chi.URLParam(r, "projectID"), content); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, storage.Response{Success: true})
}

// handleSave serializes a raw editor graph into the project's draft.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	pageIndex, err := pageParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}

	doc, err := s.runner.Save(r.Context(), chi.URLParam(r, "projectID"), raw, pageIndex)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"content": doc},
	})
}

func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	pageIndex, err := pageParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	raw, err := s.runner.Editor(r.Context(), chi.URLParam(r, "projectID"), pageIndex)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, http.StatusOK, pipeline.ContentType(pipeline.FormatJSON), raw)
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	pageIndex, err := pageParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	svg, err := s.runner.Outline(r.Context(), chi.URLParam(r, "projectID"), pipeline.OutlineOptions{
		Page:     pageIndex,
		Detailed: boolParam(r, "detailed"),
		Format:   pipeline.FormatSVG,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, http.StatusOK, pipeline.ContentType(pipeline.FormatSVG), svg)
}

func (s *Server) handleThumbnailBatch(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "ids is required"))
		return
	}
	pageIndex, err := pageParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	results, err := s.runner.Thumbnails(r.Context(), ids, pipeline.ThumbnailOptions{Page: pageIndex})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// =============================================================================
// Storefront
// =============================================================================

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	pageIndex, err := parsePage(chi.URLParam(r, "page"))
	if err != nil {
		writeFriendly(w, http.StatusNotFound, notFoundTitle, "We could not find the page you are looking for.")
		return
	}
	s.servePage(w, r, projectID, pipeline.PageOptions{Page: pageIndex, Mode: page.ModePublic, Shell: true})
}

// handlePreview renders the editor canvas markup of a page.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	pageIndex, err := pageParam(r)
	if err != nil {
		writeFriendly(w, http.StatusNotFound, notFoundTitle, "We could not find the page you are looking for.")
		return
	}
	s.servePage(w, r, projectID, pipeline.PageOptions{Page: pageIndex, Mode: page.ModeEmbedded, Shell: true})
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request, projectID string, opts pipeline.PageOptions) {
	out, err := s.runner.RenderPage(r.Context(), projectID, opts)
	if err != nil {
		s.writeStorefrontError(w, r, projectID, err)
		return
	}
	writeBytes(w, http.StatusOK, pipeline.ContentType(pipeline.FormatHTML), out)
}

// handleThumbnail serves /thumbnails/{projectID}.{format}. Failures to load
// the draft still answer with a placeholder image so <img> tags never break.
func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	ext := path.Ext(file)
	projectID := strings.TrimSuffix(file, ext)
	opts := pipeline.ThumbnailOptions{Format: strings.TrimPrefix(ext, ".")}
	if err := pipeline.ValidateThumbnailFormat(opts.Format); err != nil {
		s.writeError(w, r, err)
		return
	}
	pageIndex, err := pageParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Page = pageIndex

	data, err := s.runner.Thumbnail(r.Context(), projectID, opts)
	if err == nil {
		writeBytes(w, http.StatusOK, pipeline.ContentType(opts.Format), data)
		return
	}

	status := http.StatusBadGateway
	reason := thumbnail.ReasonLoadFailed
	if errors.Is(err, errors.ErrCodeNotFound) || errors.Is(err, errors.ErrCodeInvalidProjectID) {
		status, reason = http.StatusNotFound, thumbnail.ReasonNotFound
	}
	s.logger.Debug("thumbnail placeholder", "project", projectID, "err", err)

	data, encErr := pipeline.EncodePreview(thumbnail.Placeholder(reason), opts)
	if encErr != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, status, pipeline.ContentType(opts.Format), data)
}
