// Package blocks is the fixed lookup table of known block types.
//
// Documents store a node's type as a plain string tag. The editor and the
// renderers need more than a string: whether the block accepts children,
// which family it belongs to, how it should degrade. A [Spec] is that
// resolvable handle, and [Resolve] is the only way tags become handles.
//
// Unknown tags resolve to [Container] so that documents written by a newer
// editor still open and render, losing only their type-specific behavior.
//
// Usage:
//
//	spec, known := blocks.Resolve(node.Type)
//	if !known {
//	    logger.Debug("unknown block type", "type", node.Type)
//	}
package blocks

import "slices"

// Kind groups block types by role.
type Kind int

const (
	// KindLayout blocks arrange their children (Container, Section, Row, Column).
	KindLayout Kind = iota
	// KindContent blocks display a value from their props (Text, Image, Button).
	KindContent
	// KindTemplate blocks are composite, prebuilt sections.
	KindTemplate
	// KindPage is the page node that sits directly under ROOT.
	KindPage
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindLayout:
		return "layout"
	case KindContent:
		return "content"
	case KindTemplate:
		return "template"
	case KindPage:
		return "page"
	default:
		return "unknown"
	}
}

// Spec describes one block type.
type Spec struct {
	// Name is the tag written to documents and the editor's resolvedName.
	Name string
	// Kind is the block family.
	Kind Kind
	// Canvas reports whether the block accepts dropped children in the editor.
	Canvas bool
	// Description is a one-line summary for CLI listings.
	Description string
}

// Known block types.
var (
	Page      = &Spec{Name: "Page", Kind: KindPage, Canvas: true, Description: "page root"}
	Container = &Spec{Name: "Container", Kind: KindLayout, Canvas: true, Description: "generic box, also the fallback for unknown types"}
	Section   = &Spec{Name: "Section", Kind: KindLayout, Canvas: true, Description: "full-width page band"}
	Row       = &Spec{Name: "Row", Kind: KindLayout, Canvas: true, Description: "horizontal flex row"}
	Column    = &Spec{Name: "Column", Kind: KindLayout, Canvas: true, Description: "vertical flex column"}
	Text      = &Spec{Name: "Text", Kind: KindContent, Description: "paragraph or heading"}
	Image     = &Spec{Name: "Image", Kind: KindContent, Description: "image with alt text"}
	Button    = &Spec{Name: "Button", Kind: KindContent, Description: "link styled as a button"}
	Divider   = &Spec{Name: "Divider", Kind: KindContent, Description: "horizontal rule"}
	Spacer    = &Spec{Name: "Spacer", Kind: KindContent, Description: "fixed vertical gap"}

	Hero        = &Spec{Name: "HeroTemplate", Kind: KindTemplate, Canvas: true, Description: "headline banner with call to action"}
	Navbar      = &Spec{Name: "NavbarTemplate", Kind: KindTemplate, Canvas: true, Description: "site navigation bar"}
	Footer      = &Spec{Name: "FooterTemplate", Kind: KindTemplate, Canvas: true, Description: "site footer"}
	FeatureGrid = &Spec{Name: "FeatureGridTemplate", Kind: KindTemplate, Canvas: true, Description: "grid of feature cards"}
)

// All is the canonical list of known block types, in palette order.
var All = []*Spec{
	Page,
	Container, Section, Row, Column,
	Text, Image, Button, Divider, Spacer,
	Hero, Navbar, Footer, FeatureGrid,
}

var byName = func() map[string]*Spec {
	m := make(map[string]*Spec, len(All))
	for _, s := range All {
		m[s.Name] = s
	}
	return m
}()

// Find returns the Spec with the given name, or nil if the tag is unknown.
func Find(name string) *Spec {
	return byName[name]
}

// Resolve maps a type tag to its Spec. Unknown tags resolve to [Container]
// and known is false.
func Resolve(name string) (spec *Spec, known bool) {
	if s, ok := byName[name]; ok {
		return s, true
	}
	return Container, false
}

// IsKnown reports whether name is a registered block type.
func IsKnown(name string) bool {
	_, ok := byName[name]
	return ok
}

// Names returns the registered type names, sorted.
func Names() []string {
	names := make([]string, 0, len(All))
	for _, s := range All {
		names = append(names, s.Name)
	}
	slices.Sort(names)
	return names
}
