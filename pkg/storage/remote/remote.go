// Package remote is a draft store backed by another server's draft HTTP API
// (GET and PUT /api/projects/{id}/draft).
//
// Transient failures (network errors and 5xx responses) are retried with
// exponential backoff. A 404 maps to storage.ErrNotFound.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/httputil"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/observability"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/storage"
)

// ErrNetwork marks failures talking to the remote server.
var ErrNetwork = errors.New("draft server request failed")

// maxBody bounds the response size read from the server.
const maxBody = 32 << 20

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.http = c }
}

// WithToken sends an Authorization: Bearer header.
func WithToken(token string) Option {
	return func(s *Store) { s.token = token }
}

// WithRetry sets the attempt count and initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(s *Store) {
		s.attempts = attempts
		s.delay = delay
	}
}

// Store talks to a remote draft API.
type Store struct {
	base     *url.URL
	http     *http.Client
	token    string
	attempts int
	delay    time.Duration
}

// NewStore creates a client for the server at baseURL.
func NewStore(baseURL string, opts ...Option) (*Store, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid draft server URL %q", baseURL)
	}
	s := &Store{
		base:     u,
		http:     &http.Client{Timeout: 30 * time.Second},
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) draftURL(projectID string) string {
	return s.base.String() + "/api/projects/" + url.PathEscape(projectID) + "/draft"
}

func (s *Store) GetDraft(ctx context.Context, projectID string) (*storage.Response, error) {
	if err := storage.ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	var resp storage.Response
	err := httputil.Retry(ctx, s.attempts, s.delay, func() error {
		body, err := s.do(ctx, http.MethodGet, s.draftURL(projectID), nil)
		if err != nil {
			return err
		}
		resp = storage.Response{}
		if err := json.Unmarshal(body, &resp); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode draft response")
		}
		return nil
	})
	if err != nil {
		return nil, s.mapError(projectID, err)
	}
	if !resp.Success {
		return nil, storage.NotFound(projectID)
	}
	return &resp, nil
}

func (s *Store) SaveDraft(ctx context.Context, projectID string, content json.RawMessage) error {
	if err := storage.CheckSave(projectID, content); err != nil {
		return err
	}
	payload, err := json.Marshal(storage.DraftData{Content: content})
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	err = httputil.Retry(ctx, s.attempts, s.delay, func() error {
		_, err := s.do(ctx, http.MethodPut, s.draftURL(projectID), payload)
		return err
	})
	return s.mapError(projectID, err)
}

func (s *Store) Close() error {
	s.http.CloseIdleConnections()
	return nil
}

func (s *Store) do(ctx context.Context, method, rawURL string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := s.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, req.URL.Host, req.URL.Path, err)
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, httputil.Retryable(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
	}
	return data, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return storage.ErrNotFound
	case httputil.TransientStatus(code):
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// mapError attaches error codes: NOT_FOUND, TIMEOUT or NETWORK_ERROR.
func (s *Store) mapError(projectID string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return storage.NotFound(projectID)
	case apperrors.GetCode(err) != "":
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrCodeTimeout, err, "draft server timed out")
	}
	return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "draft server %s", s.base.Host)
}

var _ storage.Store = (*Store)(nil)
