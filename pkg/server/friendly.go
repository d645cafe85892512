package server

import (
	"net/http"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/page"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

const (
	notFoundTitle   = "Page not found"
	loadFailedTitle = "This page failed to load"
)

// friendlyDoc is the storefront error page, built from ordinary blocks so it
// goes through the same renderer as real pages.
func friendlyDoc(title, message string) *document.Document {
	doc := document.New()
	doc.Pages = []document.Page{{ID: "error", Children: []string{"box"}}}
	doc.Nodes["box"] = document.Node{
		Type: "Section",
		Props: document.Props{
			"padding":       64.0,
			"alignItems":    "center",
			"flexDirection": "column",
			"gap":           16.0,
		},
		Children: []string{"title", "message"},
	}
	doc.Nodes["title"] = document.Node{Type: "Text", Props: document.Props{"text": title, "tag": "h1", "textAlign": "center"}}
	doc.Nodes["message"] = document.Node{Type: "Text", Props: document.Props{"text": message, "textAlign": "center", "color": "#6b7280"}}
	return doc
}

func writeFriendly(w http.ResponseWriter, status int, title, message string) {
	out, err := page.Render(friendlyDoc(title, message), 0, page.WithDocumentShell(title))
	if err != nil {
		http.Error(w, title, status)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeBytes(w, status, "text/html; charset=utf-8", out)
}

// writeStorefrontError renders the friendly page matching err.
func (s *Server) writeStorefrontError(w http.ResponseWriter, r *http.Request, projectID string, err error) {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodePageNotFound, errors.ErrCodeInvalidProjectID:
		s.logger.Debug("storefront not found", "project", projectID, "err", err)
		writeFriendly(w, http.StatusNotFound, notFoundTitle, "We could not find the page you are looking for.")
	default:
		s.logger.Warn("storefront failed", "project", projectID, "path", r.URL.Path, "err", err)
		writeFriendly(w, http.StatusBadGateway, loadFailedTitle, "Please try again in a moment.")
	}
}
