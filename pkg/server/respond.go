package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

// apiError is the JSON body of a failed API call. It keeps the
// storage.Response shape and adds the error code.
type apiError struct {
	Success  bool        `json:"success"`
	Error    string      `json:"error"`
	Code     errors.Code `json:"code,omitempty"`
	Problems []string    `json:"problems,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBytes(w http.ResponseWriter, status int, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	body := apiError{Error: errors.UserMessage(err), Code: errors.GetCode(err)}
	if body.Code == errors.ErrCodeInvalidDocument {
		for _, p := range document.Problems(err) {
			body.Problems = append(body.Problems, errors.UserMessage(p))
		}
	}
	if status == http.StatusInternalServerError {
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeCorruptGraph, errors.ErrCodeInvalidDocument:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidProjectID,
		errors.ErrCodeUnsupportedVersion, errors.ErrCodeEmptyContent, errors.ErrCodeInvalidRenderOption:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodePageNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// pageParam reads a page index from the query, defaulting to 0.
func pageParam(r *http.Request) (int, error) {
	return parsePage(r.URL.Query().Get("page"))
}

func parsePage(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid page %q", s)
	}
	return n, nil
}

func boolParam(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}
