package pipeline

import (
	"context"
	"time"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/cache"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/outline"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/page"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/thumbnail"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/observability"
)

// RenderPage renders one page of a project as HTML.
func (r *Runner) RenderPage(ctx context.Context, projectID string, opts PageOptions) ([]byte, error) {
	if err := validatePage(opts.Page); err != nil {
		return nil, err
	}
	opts.setDefaults(r)

	doc, draft, err := r.Load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.PageKey(draft.Hash, opts.keyOpts())
	if opts.Refresh {
		_ = r.Cache.Delete(ctx, key)
	}

	return cache.GetOrCompute(ctx, r.Cache, cache.KeyTypePage, key, r.TTL, func() ([]byte, error) {
		return r.rendered(ctx, cache.KeyTypePage, func() ([]byte, error) {
			renderOpts := []page.Option{
				page.WithMode(opts.Mode),
				page.WithLogger(r.Logger),
			}
			if opts.MaxDepth > 0 {
				renderOpts = append(renderOpts, page.WithMaxDepth(opts.MaxDepth))
			}
			if opts.Shell {
				renderOpts = append(renderOpts, page.WithDocumentShell(opts.Title))
			}
			return page.Render(doc, opts.Page, renderOpts...)
		})
	})
}

// Preview builds the thumbnail model of a project. Unusable content yields a
// placeholder preview, not an error; only storage failures are returned.
func (r *Runner) Preview(ctx context.Context, projectID string, opts ThumbnailOptions) (thumbnail.Preview, error) {
	if err := opts.setDefaults(r); err != nil {
		return thumbnail.Preview{}, err
	}
	draft, err := r.Fetch(ctx, projectID)
	if err != nil {
		return thumbnail.Preview{}, err
	}
	return r.preview(draft, opts), nil
}

func (r *Runner) preview(draft *Draft, opts ThumbnailOptions) thumbnail.Preview {
	return thumbnail.Build(draft.Content,
		thumbnail.WithLimits(opts.Limits),
		thumbnail.WithPage(opts.Page),
		thumbnail.WithLogger(r.Logger))
}

// Thumbnail renders the dashboard preview of a project in opts.Format.
func (r *Runner) Thumbnail(ctx context.Context, projectID string, opts ThumbnailOptions) ([]byte, error) {
	if err := opts.setDefaults(r); err != nil {
		return nil, err
	}
	draft, err := r.Fetch(ctx, projectID)
	if err != nil {
		return nil, err
	}

	key := r.Keyer.ThumbnailKey(draft.Hash, opts.keyOpts())
	return cache.GetOrCompute(ctx, r.Cache, cache.KeyTypeThumbnail, key, r.TTL, func() ([]byte, error) {
		return r.rendered(ctx, cache.KeyTypeThumbnail, func() ([]byte, error) {
			return EncodePreview(r.preview(draft, opts), opts)
		})
	})
}

// EncodePreview writes p in opts.Format.
func EncodePreview(p thumbnail.Preview, opts ThumbnailOptions) ([]byte, error) {
	var svgOpts []thumbnail.SVGOption
	if opts.Width > 0 && opts.Height > 0 {
		svgOpts = append(svgOpts, thumbnail.WithSize(opts.Width, opts.Height))
	}
	switch opts.Format {
	case FormatJSON:
		return thumbnail.RenderJSON(p)
	case FormatPNG:
		return render.ToPNG(thumbnail.RenderSVG(p, svgOpts...), 2)
	case FormatSVG, "":
		return thumbnail.RenderSVG(p, svgOpts...), nil
	}
	return nil, ValidateThumbnailFormat(opts.Format)
}

// Outline renders the page tree of a project as a diagram.
func (r *Runner) Outline(ctx context.Context, projectID string, opts OutlineOptions) ([]byte, error) {
	if err := opts.setDefaults(); err != nil {
		return nil, err
	}
	doc, draft, err := r.Load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	key := r.Keyer.OutlineKey(draft.Hash, opts.keyOpts())
	return cache.GetOrCompute(ctx, r.Cache, cache.KeyTypeOutline, key, r.TTL, func() ([]byte, error) {
		return r.rendered(ctx, cache.KeyTypeOutline, func() ([]byte, error) {
			dot, err := outline.ToDOT(doc, opts.Page, outline.Options{Detailed: opts.Detailed})
			if err != nil {
				return nil, err
			}
			switch opts.Format {
			case FormatDOT:
				return []byte(dot), nil
			case FormatPNG:
				return outline.RenderPNG(dot, 2)
			}
			svg, err := outline.RenderSVG(dot)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "render outline")
			}
			return svg, nil
		})
	})
}

// rendered runs fn between render hooks and logs its duration.
func (r *Runner) rendered(ctx context.Context, artifact string, fn func() ([]byte, error)) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, artifact)
	start := time.Now()

	data, err := fn()
	hooks.OnRenderComplete(ctx, artifact, len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("rendered", "artifact", artifact, "bytes", len(data), "duration", time.Since(start))
	return data, nil
}
