package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/thumbnail"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

// ThumbnailResult is one entry of a Thumbnails batch. A project that could
// not be loaded gets a placeholder preview and an Error.
type ThumbnailResult struct {
	ProjectID string            `json:"project_id"`
	Preview   thumbnail.Preview `json:"preview"`
	Error     string            `json:"error,omitempty"`
	Code      errors.Code       `json:"code,omitempty"`
}

// Thumbnails builds previews for many projects concurrently, at most
// r.Workers at a time. Results are in the order of projectIDs. Per-project
// failures are reported in the results; the returned error is only set for
// an oversized batch or a cancelled ctx.
func (r *Runner) Thumbnails(ctx context.Context, projectIDs []string, opts ThumbnailOptions) ([]ThumbnailResult, error) {
	if len(projectIDs) > MaxBatch {
		return nil, errors.New(errors.ErrCodeInvalidInput, "too many projects: %d (max %d)", len(projectIDs), MaxBatch)
	}
	if err := opts.setDefaults(r); err != nil {
		return nil, err
	}

	results := make([]ThumbnailResult, len(projectIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Workers, 1))

	for i, id := range projectIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := ThumbnailResult{ProjectID: id}
			p, err := r.Preview(gctx, id, opts)
			if err != nil {
				res.Preview = thumbnail.Placeholder(failureReason(err))
				res.Error = errors.UserMessage(err)
				res.Code = errors.GetCode(err)
				r.Logger.Debug("thumbnail failed", "project", id, "err", err)
			} else {
				res.Preview = p
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func failureReason(err error) string {
	if errors.Is(err, errors.ErrCodeNotFound) {
		return thumbnail.ReasonNotFound
	}
	return thumbnail.ReasonLoadFailed
}
