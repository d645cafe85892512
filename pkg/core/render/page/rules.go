package page

import (
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/blocks"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
)

// rule renders one block. It returns the element to insert and the element
// children go into, or a nil slot when the block does not render children.
type rule func(p document.Props) (el, slot *html.Node)

// rules is the closed dispatch table. Keys are block registry names.
var rules = map[string]rule{
	blocks.Container.Name: layoutRule(atom.Div, "block-container", ""),
	blocks.Section.Name:   layoutRule(atom.Section, "block-section", ""),
	blocks.Row.Name:       layoutRule(atom.Div, "block-row", "row"),
	blocks.Column.Name:    layoutRule(atom.Div, "block-column", "column"),
	blocks.Text.Name:      textRule,
	blocks.Image.Name:     imageRule,
	blocks.Button.Name:    buttonRule,
	blocks.Divider.Name:   dividerRule,
	blocks.Spacer.Name:    spacerRule,

	blocks.Hero.Name:        heroRule,
	blocks.Navbar.Name:      navbarRule,
	blocks.Footer.Name:      footerRule,
	blocks.FeatureGrid.Name: featureGridRule,
}

// lookup returns the rule for a type tag, or the neutral fallback.
func lookup(typ string) (rule, bool) {
	if r, ok := rules[typ]; ok {
		return r, true
	}
	return unknownRule, false
}

// richText cleans HTML authored in Text blocks. Policies are safe for
// concurrent use once built.
var richText = bluemonday.UGCPolicy()

func classes(names ...string) html.Attribute {
	return attr("class", "block "+strings.Join(names, " "))
}

// layoutRule renders a box. defaultDirection makes the block a flex container
// even when props do not set a direction.
func layoutRule(a atom.Atom, class, defaultDirection string) rule {
	return func(p document.Props) (*html.Node, *html.Node) {
		s := DecodeBox(p)
		if s.Direction == "" {
			s.Direction = defaultDirection
		}
		el := element(a, withStyle([]html.Attribute{classes(class)}, s.CSS(s.Direction != ""))...)
		return el, el
	}
}

func unknownRule(p document.Props) (*html.Node, *html.Node) {
	el := element(atom.Div, withStyle([]html.Attribute{classes("block-unknown")}, DecodeBox(p).CSS(false))...)
	return el, el
}

func textRule(p document.Props) (*html.Node, *html.Node) {
	t := DecodeText(p)
	a := atom.Lookup([]byte(t.Tag))
	if a == 0 {
		a = atom.P
	}
	el := element(a, withStyle([]html.Attribute{classes("block-text")}, DecodeBox(p).CSS(false))...)
	for _, n := range textContent(t.Text) {
		el.AppendChild(n)
	}
	return el, nil
}

// textContent returns plain text as a single text node. Strings that look
// like markup are sanitized and parsed as a fragment.
func textContent(s string) []*html.Node {
	if s == "" {
		return nil
	}
	if !strings.ContainsAny(s, "<&") {
		return []*html.Node{textNode(s)}
	}
	clean := richText.Sanitize(s)
	nodes, err := html.ParseFragment(strings.NewReader(clean), element(atom.Div))
	if err != nil {
		return []*html.Node{textNode(s)}
	}
	return nodes
}

func imageRule(p document.Props) (*html.Node, *html.Node) {
	img := DecodeImage(p)
	box := DecodeBox(p)
	if img.Src == "" {
		attrs := []html.Attribute{classes("block-image", "block-image--empty"), attr("role", "img")}
		if img.Alt != "" {
			attrs = append(attrs, attr("aria-label", img.Alt))
		}
		return element(atom.Div, withStyle(attrs, box.CSS(false))...), nil
	}

	css := box.CSS(false)
	if img.Fit != "" {
		if css != "" {
			css += ";"
		}
		css += "object-fit:" + img.Fit
	}
	attrs := []html.Attribute{
		classes("block-image"),
		attr("src", img.Src),
		attr("alt", img.Alt),
		attr("loading", "lazy"),
	}
	return element(atom.Img, withStyle(attrs, css)...), nil
}

func buttonRule(p document.Props) (*html.Node, *html.Node) {
	btn := DecodeButton(p)
	attrs := []html.Attribute{
		classes("block-button", "block-button--"+btn.Variant),
		attr("href", btn.Href),
	}
	if btn.NewTab {
		attrs = append(attrs, attr("target", "_blank"), attr("rel", "noopener noreferrer"))
	}
	el := element(atom.A, withStyle(attrs, DecodeBox(p).CSS(false))...)
	el.AppendChild(textNode(btn.Label))
	return el, nil
}

func dividerRule(p document.Props) (*html.Node, *html.Node) {
	return element(atom.Hr, withStyle([]html.Attribute{classes("block-divider")}, DecodeBox(p).CSS(false))...), nil
}

func spacerRule(p document.Props) (*html.Node, *html.Node) {
	s := DecodeBox(p)
	if s.Height == "" {
		s.Height = "24px"
	}
	attrs := []html.Attribute{classes("block-spacer"), attr("aria-hidden", "true")}
	return element(atom.Div, withStyle(attrs, s.CSS(false))...), nil
}

// =============================================================================
// Templates
// =============================================================================

func heroRule(p document.Props) (*html.Node, *html.Node) {
	s := DecodeBox(p)
	el := element(atom.Section, withStyle([]html.Attribute{classes("block-template", "block-hero")}, s.CSS(s.Direction != ""))...)
	if h, ok := p.String("heading"); ok {
		el.AppendChild(withText(element(atom.H1, attr("class", "block-hero__heading")), h))
	}
	if sub, ok := p.String("subheading"); ok {
		el.AppendChild(withText(element(atom.P, attr("class", "block-hero__subheading")), sub))
	}
	if label, ok := p.String("ctaLabel"); ok {
		href, ok := linkHref(p.StringOr("ctaHref", ""))
		if !ok {
			href = "#"
		}
		el.AppendChild(withText(element(atom.A, attr("class", "block-button block-button--primary"), attr("href", href)), label))
	}
	return el, el
}

func navbarRule(p document.Props) (*html.Node, *html.Node) {
	el := element(atom.Nav, withStyle([]html.Attribute{classes("block-template", "block-navbar")}, DecodeBox(p).CSS(true))...)
	if brand, ok := p.String("brand"); ok {
		el.AppendChild(withText(element(atom.Span, attr("class", "block-navbar__brand")), brand))
	}
	if links, ok := p["links"].([]any); ok && len(links) > 0 {
		ul := element(atom.Ul, attr("class", "block-navbar__links"))
		for _, l := range links {
			m, ok := l.(map[string]any)
			if !ok {
				continue
			}
			lp := document.Props(m)
			label, ok := lp.String("label")
			if !ok {
				continue
			}
			href, ok := linkHref(lp.StringOr("href", ""))
			if !ok {
				href = "#"
			}
			li := element(atom.Li)
			li.AppendChild(withText(element(atom.A, attr("href", href)), label))
			ul.AppendChild(li)
		}
		if ul.FirstChild != nil {
			el.AppendChild(ul)
		}
	}
	return el, el
}

func footerRule(p document.Props) (*html.Node, *html.Node) {
	el := element(atom.Footer, withStyle([]html.Attribute{classes("block-template", "block-footer")}, DecodeBox(p).CSS(false))...)
	if text, ok := p.String("text"); ok {
		el.AppendChild(withText(element(atom.Small, attr("class", "block-footer__text")), text))
	}
	return el, el
}

// featureGridRule lays children out in 1 to 6 equal columns (default 3).
func featureGridRule(p document.Props) (*html.Node, *html.Node) {
	cols := 3
	if n, ok := p.Float("columns"); ok && n >= 1 && n <= 6 {
		cols = int(n)
	}
	s := DecodeBox(p)
	var d declarations
	d.add("display", "grid")
	d.add("grid-template-columns", "repeat("+strconv.Itoa(cols)+",minmax(0,1fr))")
	d.add("gap", s.Gap)
	css := d.String()
	if rest := s.CSS(false); rest != "" {
		css += ";" + rest
	}
	el := element(atom.Section, classes("block-template", "block-feature-grid"), attr("style", css))
	return el, el
}

func withText(el *html.Node, s string) *html.Node {
	el.AppendChild(textNode(s))
	return el
}
