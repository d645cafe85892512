package page

import (
	"bytes"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

// DefaultMaxDepth caps recursion below the page. It is far deeper than any
// real layout and only matters for malformed documents.
const DefaultMaxDepth = 256

// Mode selects the rendering context.
type Mode int

const (
	// ModePublic renders storefront markup. Hidden blocks are omitted.
	ModePublic Mode = iota
	// ModeEmbedded renders for the editor canvas: every block carries
	// data-node-id and data-node-type attributes and hidden blocks are kept
	// with the hidden attribute.
	ModeEmbedded
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeEmbedded {
		return "embedded"
	}
	return "public"
}

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "public":
		return ModePublic, nil
	case "embedded":
		return ModeEmbedded, nil
	}
	return ModePublic, errors.New(errors.ErrCodeInvalidRenderOption, "unknown render mode %q (want public or embedded)", s)
}

// Option configures rendering.
type Option func(*options)

type options struct {
	mode     Mode
	shell    bool
	title    string
	maxDepth int
	logger   *log.Logger
}

// WithMode sets the rendering context. Default: ModePublic.
func WithMode(m Mode) Option {
	return func(o *options) { o.mode = m }
}

// WithDocumentShell wraps the page in a complete HTML document with the base
// stylesheet and the given title.
func WithDocumentShell(title string) Option {
	return func(o *options) {
		o.shell = true
		o.title = title
	}
}

// WithMaxDepth overrides DefaultMaxDepth. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithLogger sets the logger for unknown types and truncation (debug level).
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Stats describes what a render did.
type Stats struct {
	Rendered  int  // blocks emitted
	Unknown   int  // blocks rendered with the fallback rule
	Skipped   int  // missing, repeated or hidden children skipped
	Truncated bool // MaxDepth was reached
}

// Build renders page pageIndex of doc into an HTML node tree. The root is a
// <main> element, or a document node when WithDocumentShell is set.
func Build(doc *document.Document, pageIndex int, opts ...Option) (*html.Node, error) {
	n, _, err := BuildStats(doc, pageIndex, opts...)
	return n, err
}

// BuildStats is Build that also reports render statistics.
func BuildStats(doc *document.Document, pageIndex int, opts ...Option) (*html.Node, Stats, error) {
	o := &options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	if doc == nil {
		return nil, Stats{}, errors.New(errors.ErrCodeInvalidDocument, "nil document")
	}
	if err := document.CheckVersion(doc.Version); err != nil {
		return nil, Stats{}, err
	}
	pg, ok := doc.Page(pageIndex)
	if !ok {
		return nil, Stats{}, errors.New(errors.ErrCodePageNotFound, "page %d not found (document has %d)", pageIndex, len(doc.Pages))
	}

	b := &builder{doc: doc, opts: o, seen: make(map[string]bool)}
	root := b.pageElement(pg)
	b.appendChildren(root, pg.Children, 1)

	if b.stats.Truncated {
		o.logger.Debug("render truncated", "page", pg.ID, "max_depth", o.maxDepth)
	}

	if o.shell {
		return shell(o.title, root), b.stats, nil
	}
	return root, b.stats, nil
}

// Render renders page pageIndex of doc to HTML bytes.
func Render(doc *document.Document, pageIndex int, opts ...Option) ([]byte, error) {
	n, err := Build(doc, pageIndex, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

type builder struct {
	doc   *document.Document
	opts  *options
	seen  map[string]bool
	stats Stats
}

func (b *builder) pageElement(pg document.Page) *html.Node {
	class := "site-page"
	if b.opts.mode == ModeEmbedded {
		class += " site-page--embedded"
	}
	attrs := []html.Attribute{attr("class", class), attr("data-page-id", pg.ID)}
	if css := DecodeBox(pg.Props).CSS(false); css != "" {
		attrs = append(attrs, attr("style", css))
	}
	return element(atom.Main, attrs...)
}

func (b *builder) appendChildren(parent *html.Node, ids []string, depth int) {
	if depth > b.opts.maxDepth {
		if len(ids) > 0 {
			b.stats.Truncated = true
		}
		return
	}
	for _, id := range ids {
		n, ok := b.doc.Nodes[id]
		if !ok || b.seen[id] {
			b.stats.Skipped++
			continue
		}
		b.seen[id] = true

		hidden := n.Hidden
		if hidden && b.opts.mode == ModePublic {
			b.stats.Skipped++
			continue
		}

		r, known := lookup(n.Type)
		if !known {
			b.stats.Unknown++
			b.opts.logger.Debug("unknown block type, rendering as container", "id", id, "type", n.Type)
		}
		el, slot := r(n.Props)
		b.annotate(el, id, n.Type, hidden)
		parent.AppendChild(el)
		b.stats.Rendered++

		if slot != nil {
			b.appendChildren(slot, n.Children, depth+1)
		}
	}
}

// annotate adds the editor canvas attributes.
func (b *builder) annotate(el *html.Node, id, typ string, hidden bool) {
	if b.opts.mode != ModeEmbedded {
		return
	}
	el.Attr = append(el.Attr, attr("data-node-id", id), attr("data-node-type", typ))
	if hidden {
		el.Attr = append(el.Attr, attr("hidden", ""))
	}
}

// =============================================================================
// Node construction helpers
// =============================================================================

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// withStyle appends a style attribute when css is not empty.
func withStyle(attrs []html.Attribute, css string) []html.Attribute {
	if css == "" {
		return attrs
	}
	return append(attrs, attr("style", css))
}
