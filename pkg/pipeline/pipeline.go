// Package pipeline ties storage, the serializer and the renderers together.
//
// The HTTP server and the CLI both go through a [Runner] so that drafts are
// loaded, normalized, rendered and cached the same way everywhere.
//
// # Flow
//
// Reading a draft:
//
//  1. Load: fetch the draft from the configured [storage.Store]
//  2. Normalize: accept a Document, a JSON string or a raw editor graph
//  3. Render: page HTML, thumbnail (SVG, PNG, JSON) or outline diagram
//
// Saving goes the other way: a raw editor graph is strictly serialized,
// merged into the stored document with serialize.ReplacePage and written
// back.
//
// # Usage
//
//	runner := pipeline.NewRunner(store, cache, nil, logger)
//	html, err := runner.RenderPage(ctx, "shop", pipeline.PageOptions{Shell: true})
//
// Rendered artifacts are cached by a hash of the stored content, so a new
// save invalidates them implicitly.
package pipeline

import (
	"fmt"
	"time"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/cache"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/page"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/thumbnail"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWorkers bounds concurrent thumbnail renders in a batch.
	DefaultWorkers = 8

	// DefaultTTL is how long rendered artifacts stay cached.
	DefaultTTL = 24 * time.Hour

	// DefaultTitle is the <title> of full-page output.
	DefaultTitle = "Site"

	// MaxBatch is the largest number of projects one Thumbnails call accepts.
	MaxBatch = 100
)

// Format constants for rendered artifacts.
const (
	FormatHTML = "html"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ThumbnailFormats are the formats Thumbnail can produce.
var ThumbnailFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// OutlineFormats are the formats Outline can produce.
var OutlineFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
}

// =============================================================================
// Options
// =============================================================================

// PageOptions configures RenderPage.
type PageOptions struct {
	Page     int       `json:"page"`
	Mode     page.Mode `json:"-"`
	Shell    bool      `json:"shell,omitempty"`
	Title    string    `json:"title,omitempty"`
	MaxDepth int       `json:"max_depth,omitempty"`
	Refresh  bool      `json:"-"`
}

// ThumbnailOptions configures Thumbnail and Thumbnails.
type ThumbnailOptions struct {
	Page   int              `json:"page"`
	Format string           `json:"format,omitempty"`
	Width  float64          `json:"width,omitempty"`
	Height float64          `json:"height,omitempty"`
	Limits thumbnail.Limits `json:"limits"`
}

// OutlineOptions configures Outline.
type OutlineOptions struct {
	Page     int    `json:"page"`
	Detailed bool   `json:"detailed,omitempty"`
	Format   string `json:"format,omitempty"`
}

// =============================================================================
// Validation
// =============================================================================

// ValidateThumbnailFormat checks that format is one of [ThumbnailFormats].
func ValidateThumbnailFormat(format string) error {
	if !ThumbnailFormats[format] {
		return errors.New(errors.ErrCodeInvalidRenderOption, "invalid thumbnail format: %q (must be one of: svg, png, json)", format)
	}
	return nil
}

// ValidateOutlineFormat checks that format is one of [OutlineFormats].
func ValidateOutlineFormat(format string) error {
	if !OutlineFormats[format] {
		return errors.New(errors.ErrCodeInvalidRenderOption, "invalid outline format: %q (must be one of: dot, svg, png)", format)
	}
	return nil
}

func validatePage(i int) error {
	if i < 0 {
		return errors.New(errors.ErrCodePageNotFound, "page %d not found", i)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

func (o *PageOptions) setDefaults(r *Runner) {
	if o.Title == "" {
		o.Title = r.Title
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = r.MaxDepth
	}
}

func (o PageOptions) keyOpts() cache.PageKeyOpts {
	return cache.PageKeyOpts{
		Page:     o.Page,
		Mode:     o.Mode.String(),
		Shell:    o.Shell,
		Title:    o.Title,
		MaxDepth: o.MaxDepth,
	}
}

func (o *ThumbnailOptions) setDefaults(r *Runner) error {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	if o.Limits == (thumbnail.Limits{}) {
		o.Limits = r.Limits
	}
	if err := validatePage(o.Page); err != nil {
		return err
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidRenderOption, "invalid thumbnail size %gx%g", o.Width, o.Height)
	}
	return ValidateThumbnailFormat(o.Format)
}

func (o ThumbnailOptions) keyOpts() cache.ThumbnailKeyOpts {
	return cache.ThumbnailKeyOpts{
		Page:        o.Page,
		Format:      o.Format,
		Width:       o.Width,
		Height:      o.Height,
		MaxTopLevel: o.Limits.MaxTopLevel,
		MaxChildren: o.Limits.MaxChildren,
		MaxDepth:    o.Limits.MaxDepth,
		TextLimit:   o.Limits.TextLimit,
	}
}

func (o *OutlineOptions) setDefaults() error {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	if err := validatePage(o.Page); err != nil {
		return err
	}
	return ValidateOutlineFormat(o.Format)
}

func (o OutlineOptions) keyOpts() cache.OutlineKeyOpts {
	return cache.OutlineKeyOpts{Page: o.Page, Detailed: o.Detailed, Format: o.Format}
}

// ContentType returns the MIME type of an artifact format.
func ContentType(format string) string {
	switch format {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	}
	return fmt.Sprintf("application/x-%s", format)
}
