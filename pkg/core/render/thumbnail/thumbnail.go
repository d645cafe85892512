package thumbnail

import (
	"hash/fnv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/microcosm-cc/bluemonday"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/blocks"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/serialize"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

// Limits bounds the size of a preview.
type Limits struct {
	MaxTopLevel int `json:"max_top_level" toml:"max_top_level"`
	MaxChildren int `json:"max_children" toml:"max_children"`
	MaxDepth    int `json:"max_depth" toml:"max_depth"`
	TextLimit   int `json:"text_limit" toml:"text_limit"`
}

// DefaultLimits are used for zero fields of the configured Limits.
var DefaultLimits = Limits{
	MaxTopLevel: 16,
	MaxChildren: 8,
	MaxDepth:    2,
	TextLimit:   40,
}

func (l Limits) withDefaults() Limits {
	if l.MaxTopLevel <= 0 {
		l.MaxTopLevel = DefaultLimits.MaxTopLevel
	}
	if l.MaxChildren <= 0 {
		l.MaxChildren = DefaultLimits.MaxChildren
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultLimits.MaxDepth
	}
	if l.TextLimit <= 0 {
		l.TextLimit = DefaultLimits.TextLimit
	}
	return l
}

// Placeholder reasons.
const (
	ReasonUnreadable         = "unreadable"
	ReasonEmpty              = "empty"
	ReasonUnsupportedVersion = "unsupported_version"
	ReasonPageNotFound       = "page_not_found"
	ReasonNoBlocks           = "no_blocks"

	// Set by callers when the draft itself could not be fetched.
	ReasonNotFound   = "not_found"
	ReasonLoadFailed = "load_failed"
)

// Kind is how an item is drawn.
type Kind string

const (
	KindBox     Kind = "box"
	KindText    Kind = "text"
	KindImage   Kind = "image"
	KindButton  Kind = "button"
	KindDivider Kind = "divider"
	KindSpacer  Kind = "spacer"
)

// Item is one drawn block.
type Item struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Kind      Kind   `json:"kind"`
	Text      string `json:"text,omitempty"`
	Color     string `json:"color,omitempty"`
	Direction string `json:"direction,omitempty"`
	Children  []Item `json:"children,omitempty"`
	// More counts children left out by the breadth or depth caps.
	More int `json:"more,omitempty"`
}

// Preview is the result of Build.
type Preview struct {
	Placeholder bool   `json:"placeholder"`
	Reason      string `json:"reason,omitempty"`
	PageID      string `json:"page_id,omitempty"`
	Items       []Item `json:"items,omitempty"`
	More        int    `json:"more,omitempty"`
}

// Option configures Build.
type Option func(*options)

type options struct {
	limits Limits
	page   int
	logger *log.Logger
}

// WithLimits overrides DefaultLimits. Zero fields keep their default.
func WithLimits(l Limits) Option {
	return func(o *options) { o.limits = l }
}

// WithPage selects the page to preview. Default: 0.
func WithPage(i int) Option {
	return func(o *options) { o.page = i }
}

// WithLogger sets the logger used for placeholder reasons (debug level).
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Build produces a preview of content. It never fails; see Preview.Reason.
func Build(content any, opts ...Option) Preview {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	o.limits = o.limits.withDefaults()
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	doc, err := serialize.Normalize(content, serialize.WithLogger(o.logger))
	if err != nil {
		reason := reasonFor(err)
		o.logger.Debug("thumbnail placeholder", "reason", reason, "err", err)
		return Placeholder(reason)
	}
	pg, ok := doc.Page(o.page)
	if !ok {
		return Placeholder(ReasonPageNotFound)
	}

	b := &builder{doc: doc, limits: o.limits, seen: make(map[string]bool)}
	items, more := b.items(pg.Children, 1, o.limits.MaxTopLevel)
	if len(items) == 0 {
		return Placeholder(ReasonNoBlocks)
	}
	return Preview{PageID: pg.ID, Items: items, More: more}
}

// Placeholder returns the "no preview available" state.
func Placeholder(reason string) Preview {
	return Preview{Placeholder: true, Reason: reason}
}

func reasonFor(err error) string {
	switch errors.GetCode(err) {
	case errors.ErrCodeEmptyContent:
		return ReasonEmpty
	case errors.ErrCodeUnsupportedVersion:
		return ReasonUnsupportedVersion
	}
	return ReasonUnreadable
}

type builder struct {
	doc    *document.Document
	limits Limits
	seen   map[string]bool
}

// items converts up to limit of ids at the given depth. It returns the number
// of usable ids that did not fit.
func (b *builder) items(ids []string, depth, limit int) ([]Item, int) {
	var out []Item
	more := 0
	for _, id := range ids {
		n, ok := b.doc.Nodes[id]
		if !ok || b.seen[id] || n.Hidden {
			continue
		}
		if len(out) == limit {
			more++
			continue
		}
		b.seen[id] = true
		out = append(out, b.item(id, n, depth))
	}
	return out, more
}

func (b *builder) item(id string, n document.Node, depth int) Item {
	spec, _ := blocks.Resolve(n.Type)
	it := Item{ID: id, Type: n.Type, Kind: KindBox}

	switch spec.Name {
	case blocks.Text.Name:
		it.Kind = KindText
		it.Text = b.line(n.Props.StringOr("text", n.Props.StringOr("content", "")))
		it.Color = color(n.Props, "color")
	case blocks.Image.Name:
		it.Kind = KindImage
		it.Color = swatch(n.Props.StringOr("src", n.Props.StringOr("url", id)))
	case blocks.Button.Name:
		it.Kind = KindButton
		it.Text = b.line(n.Props.StringOr("label", n.Props.StringOr("text", "Button")))
		it.Color = color(n.Props, "background", "backgroundColor")
	case blocks.Divider.Name:
		it.Kind = KindDivider
	case blocks.Spacer.Name:
		it.Kind = KindSpacer
	default:
		it.Color = color(n.Props, "background", "backgroundColor")
		it.Direction = direction(spec, n.Props)
		it.Text = b.line(label(spec, n.Props))
	}

	if it.Kind != KindBox || len(n.Children) == 0 {
		return it
	}
	if depth >= b.limits.MaxDepth {
		it.More = b.countUsable(n.Children)
		return it
	}
	it.Children, it.More = b.items(n.Children, depth+1, b.limits.MaxChildren)
	return it
}

func (b *builder) countUsable(ids []string) int {
	c := 0
	for _, id := range ids {
		if n, ok := b.doc.Nodes[id]; ok && !b.seen[id] && !n.Hidden {
			c++
		}
	}
	return c
}

// strip removes all markup from rich text.
var strip = bluemonday.StrictPolicy()

// line collapses s to a single line of at most TextLimit runes.
func (b *builder) line(s string) string {
	if strings.ContainsAny(s, "<&") {
		s = unescape(strip.Sanitize(s))
	}
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= b.limits.TextLimit {
		return s
	}
	r := []rune(s)
	return strings.TrimRight(string(r[:b.limits.TextLimit-1]), " ") + "…"
}

var entities = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&#34;", `"`, "&#39;", "'", "&quot;", `"`, "&nbsp;", " ")

func unescape(s string) string {
	return entities.Replace(s)
}

// label picks a caption for template blocks.
func label(spec *blocks.Spec, p document.Props) string {
	switch spec.Name {
	case blocks.Hero.Name:
		return p.StringOr("heading", "")
	case blocks.Navbar.Name:
		return p.StringOr("brand", "")
	case blocks.Footer.Name:
		return p.StringOr("text", "")
	}
	return ""
}

func direction(spec *blocks.Spec, p document.Props) string {
	d := p.StringOr("flexDirection", p.StringOr("direction", ""))
	switch {
	case strings.HasPrefix(d, "row"):
		return "row"
	case strings.HasPrefix(d, "column"):
		return "column"
	case spec.Name == blocks.Row.Name, spec.Name == blocks.Navbar.Name, spec.Name == blocks.FeatureGrid.Name:
		return "row"
	}
	return "column"
}

// color returns the first prop that is a plain color value.
func color(p document.Props, keys ...string) string {
	for _, k := range keys {
		if s, ok := p.String(k); ok && isColor(s) {
			return s
		}
	}
	return ""
}

func isColor(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 64 {
		return false
	}
	if s[0] == '#' {
		if n := len(s) - 1; n != 3 && n != 4 && n != 6 && n != 8 {
			return false
		}
		for _, c := range s[1:] {
			if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
				return false
			}
		}
		return true
	}
	if i := strings.IndexByte(s, '('); i >= 0 {
		switch strings.ToLower(s[:i]) {
		case "rgb", "rgba", "hsl", "hsla":
		default:
			return false
		}
	}
	for _, c := range s {
		if !strings.ContainsRune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789(),.% ", c) {
			return false
		}
	}
	return true
}

var swatches = []string{"#cbd5e1", "#bfdbfe", "#c7d2fe", "#fbcfe8", "#fde68a", "#bbf7d0", "#fed7aa", "#ddd6fe"}

// swatch picks a stable flat color for an image.
func swatch(key string) string {
	h := fnv.New32a()
	h.Write([]byte(key))
	return swatches[h.Sum32()%uint32(len(swatches))]
}
