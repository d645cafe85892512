package page

import (
	"strconv"
	"strings"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
)

// BoxStyle is the layout and decoration subset of props shared by every block.
// Empty fields are not emitted.
type BoxStyle struct {
	Background   string
	Color        string
	Padding      string
	Margin       string
	Gap          string
	Direction    string
	Align        string
	Justify      string
	Wrap         bool
	Width        string
	Height       string
	MinHeight    string
	BorderRadius string
	BorderColor  string
	BorderWidth  string
	FontSize     string
	FontWeight   string
	TextAlign    string
}

// DecodeBox reads the box props of a node. Unknown or unsafe values are
// dropped.
func DecodeBox(p document.Props) BoxStyle {
	var s BoxStyle
	s.Background = firstString(p, "background", "backgroundColor")
	s.Color = firstString(p, "color")
	s.Padding = firstLength(p, "padding")
	s.Margin = firstLength(p, "margin")
	s.Gap = firstLength(p, "gap")
	s.Width = firstLength(p, "width")
	s.Height = firstLength(p, "height")
	s.MinHeight = firstLength(p, "minHeight")
	s.BorderRadius = firstLength(p, "borderRadius", "radius")
	s.BorderColor = firstString(p, "borderColor")
	s.BorderWidth = firstLength(p, "borderWidth")
	s.FontSize = firstLength(p, "fontSize")
	s.FontWeight = keyword(fontWeight(p), "normal", "bold", "lighter", "bolder",
		"100", "200", "300", "400", "500", "600", "700", "800", "900")
	s.TextAlign = keyword(firstString(p, "textAlign"), "left", "center", "right", "justify")
	s.Direction = keyword(firstString(p, "flexDirection", "direction"), "row", "column", "row-reverse", "column-reverse")
	s.Align = keyword(firstString(p, "alignItems"), "flex-start", "flex-end", "center", "stretch", "baseline", "start", "end")
	s.Justify = keyword(firstString(p, "justifyContent"),
		"flex-start", "flex-end", "center", "space-between", "space-around", "space-evenly", "start", "end")
	s.Wrap, _ = p.Bool("flexWrap")
	if w, ok := p["flexWrap"].(string); ok && w == "wrap" {
		s.Wrap = true
	}
	return s
}

// CSS renders the style as declarations in a fixed order. Flex properties are
// only emitted when the block is a flex container.
func (s BoxStyle) CSS(flex bool) string {
	var d declarations
	if flex {
		d.add("display", "flex")
		d.add("flex-direction", s.Direction)
		if s.Wrap {
			d.add("flex-wrap", "wrap")
		}
		d.add("align-items", s.Align)
		d.add("justify-content", s.Justify)
		d.add("gap", s.Gap)
	}
	d.add("background", s.Background)
	d.add("color", s.Color)
	d.add("padding", s.Padding)
	d.add("margin", s.Margin)
	d.add("width", s.Width)
	d.add("height", s.Height)
	d.add("min-height", s.MinHeight)
	d.add("border-radius", s.BorderRadius)
	if s.BorderColor != "" || s.BorderWidth != "" {
		width := s.BorderWidth
		if width == "" {
			width = "1px"
		}
		color := s.BorderColor
		if color == "" {
			color = "currentColor"
		}
		d.add("border", width+" solid "+color)
	}
	d.add("font-size", s.FontSize)
	d.add("font-weight", s.FontWeight)
	d.add("text-align", s.TextAlign)
	return d.String()
}

// TextProps configures a Text block.
type TextProps struct {
	Text string
	// Tag is the element used: p (default), span, blockquote or h1-h6.
	Tag string
}

// DecodeText reads Text props. "content" is accepted for "text".
func DecodeText(p document.Props) TextProps {
	t := TextProps{
		Text: p.StringOr("text", p.StringOr("content", "")),
		Tag:  "p",
	}
	switch tag := strings.ToLower(p.StringOr("tag", p.StringOr("variant", ""))); tag {
	case "h1", "h2", "h3", "h4", "h5", "h6", "span", "blockquote", "p":
		t.Tag = tag
	}
	return t
}

// ImageProps configures an Image block.
type ImageProps struct {
	Src string
	Alt string
	Fit string
}

// DecodeImage reads Image props. An unsafe src is dropped.
func DecodeImage(p document.Props) ImageProps {
	img := ImageProps{
		Alt: p.StringOr("alt", ""),
		Fit: keyword(firstString(p, "objectFit", "fit"), "cover", "contain", "fill", "none", "scale-down"),
	}
	if src, ok := imageSrc(p.StringOr("src", p.StringOr("url", ""))); ok {
		img.Src = src
	}
	return img
}

// ButtonProps configures a Button block.
type ButtonProps struct {
	Label   string
	Href    string
	Variant string
	NewTab  bool
}

// DecodeButton reads Button props with defaults: label "Button", href "#",
// variant "primary".
func DecodeButton(p document.Props) ButtonProps {
	b := ButtonProps{
		Label:   p.StringOr("label", p.StringOr("text", "Button")),
		Href:    "#",
		Variant: keyword(p.StringOr("variant", ""), "primary", "secondary", "outline", "link"),
	}
	if b.Variant == "" {
		b.Variant = "primary"
	}
	if href, ok := linkHref(p.StringOr("href", p.StringOr("link", ""))); ok {
		b.Href = href
	}
	b.NewTab, _ = p.Bool("newTab")
	return b
}

func firstString(p document.Props, keys ...string) string {
	for _, k := range keys {
		if s, ok := cssString(p[k]); ok {
			return s
		}
	}
	return ""
}

func firstLength(p document.Props, keys ...string) string {
	for _, k := range keys {
		if s, ok := cssLength(p[k]); ok {
			return s
		}
	}
	return ""
}

func fontWeight(p document.Props) string {
	if f, ok := p.Float("fontWeight"); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return firstString(p, "fontWeight")
}

// keyword returns v when it is one of allowed.
func keyword(v string, allowed ...string) string {
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return ""
}
