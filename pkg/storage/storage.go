// Package storage defines the draft store the engine loads documents from
// and saves documents to.
//
// A draft is the stored content of one project, keyed by project id. The
// engine only knows the request/response contract; implementations live in
// subpackages:
//   - memory: in-process map for tests and development
//   - file: one JSON file per project, for the CLI
//   - sqlite: a single SQLite database
//   - redis: Redis, for multi-instance servers
//   - mongo: a MongoDB collection
//   - remote: another server speaking the draft HTTP API
//
// # Content
//
// Draft content is opaque JSON. Callers normally store a serialized
// document, but a store must hand back whatever it was given, including
// legacy editor graphs and JSON strings wrapping documents. Normalizing is
// the caller's job (see serialize.Normalize).
//
// # Usage
//
//	resp, err := store.GetDraft(ctx, projectID)
//	if errors.Is(err, storage.ErrNotFound) {
//	    // show "not found"
//	}
//	content, err := resp.Content()
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"time"

	apperrors "github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

// Sentinel errors for draft operations.
var (
	// ErrNotFound is returned when a project has no stored draft.
	ErrNotFound = errors.New("draft not found")

	// ErrEmptyContent is returned by SaveDraft for empty content.
	ErrEmptyContent = errors.New("empty draft content")
)

// DraftData is the payload of a successful GetDraft.
type DraftData struct {
	// Content is the stored JSON: a document object, or a JSON string that
	// encodes one.
	Content   json.RawMessage `json:"content"`
	UpdatedAt time.Time       `json:"updatedAt,omitzero"`
}

// Response is the draft envelope returned by stores and by the HTTP API.
type Response struct {
	Success bool       `json:"success"`
	Data    *DraftData `json:"data,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Content returns the draft content, or ErrNotFound when the response is not
// a success or carries no content.
func (r *Response) Content() (json.RawMessage, error) {
	if r == nil || !r.Success || r.Data == nil || len(r.Data.Content) == 0 {
		return nil, NotFound("")
	}
	return r.Data.Content, nil
}

// Found builds a success response.
func Found(content json.RawMessage, updated time.Time) *Response {
	return &Response{Success: true, Data: &DraftData{Content: content, UpdatedAt: updated}}
}

// Store is the interface for draft storage backends.
type Store interface {
	// GetDraft retrieves the draft of a project. It returns an error
	// matching ErrNotFound when the project has none.
	GetDraft(ctx context.Context, projectID string) (*Response, error)

	// SaveDraft stores content as the draft of a project, replacing any
	// previous draft.
	SaveDraft(ctx context.Context, projectID string, content json.RawMessage) error

	// Close releases backend resources.
	Close() error
}

// Lister is implemented by stores that can enumerate projects.
type Lister interface {
	ListProjects(ctx context.Context) ([]string, error)
}

// Deleter is implemented by stores that can remove a draft.
type Deleter interface {
	DeleteDraft(ctx context.Context, projectID string) error
}

const maxProjectIDLen = 128

var projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidateProjectID rejects ids that are empty, too long, or unsafe as file
// names and keys.
func ValidateProjectID(id string) error {
	if id == "" || len(id) > maxProjectIDLen || !projectIDPattern.MatchString(id) {
		return apperrors.New(apperrors.ErrCodeInvalidProjectID, "invalid project id %q", id)
	}
	return nil
}

// NotFound wraps ErrNotFound with the NOT_FOUND code.
func NotFound(projectID string) error {
	if projectID == "" {
		return apperrors.Wrap(apperrors.ErrCodeNotFound, ErrNotFound, "no draft")
	}
	return apperrors.Wrap(apperrors.ErrCodeNotFound, ErrNotFound, "no draft for project %q", projectID)
}

// CheckSave validates the arguments of SaveDraft. Backends call it first.
func CheckSave(projectID string, content json.RawMessage) error {
	if err := ValidateProjectID(projectID); err != nil {
		return err
	}
	if len(content) == 0 {
		return apperrors.Wrap(apperrors.ErrCodeEmptyContent, ErrEmptyContent, "project %q", projectID)
	}
	if !json.Valid(content) {
		return apperrors.New(apperrors.ErrCodeInvalidFormat, "draft content for project %q is not valid JSON", projectID)
	}
	return nil
}
