package thumbnail

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"math"
)

const (
	defaultWidth  = 320.0
	defaultHeight = 200.0
	pad           = 4.0
	boxFill       = "#f3f4f6"
	boxStroke     = "#d1d5db"
	inkColor      = "#374151"
	buttonFill    = "#111827"

	// PlaceholderText is drawn when a preview has no content.
	PlaceholderText = "No preview available"
)

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width, height float64
}

// WithSize sets the canvas size in pixels. Default 320x200.
func WithSize(w, h float64) SVGOption {
	return func(r *svgRenderer) {
		if w > 0 && h > 0 {
			r.width, r.height = w, h
		}
	}
}

// RenderSVG draws p as a fixed-size SVG. Top-level items are stacked
// vertically; box children follow the box direction.
func RenderSVG(p Preview, opts ...SVGOption) []byte {
	r := svgRenderer{width: defaultWidth, height: defaultHeight}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f">`+"\n",
		r.width, r.height, r.width, r.height)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.0f" height="%.0f" fill="#ffffff"/>`+"\n", r.width, r.height)

	if p.Placeholder || len(p.Items) == 0 {
		renderPlaceholder(&buf, r.width, r.height)
	} else {
		layoutItems(&buf, p.Items, "column", rect{pad, pad, r.width - 2*pad, r.height - 2*pad})
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// RenderJSON encodes p for clients that draw their own preview.
func RenderJSON(p Preview) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return append(data, '\n'), nil
}

type rect struct{ x, y, w, h float64 }

func renderPlaceholder(buf *bytes.Buffer, w, h float64) {
	fmt.Fprintf(buf, `  <rect class="placeholder" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="%s" stroke="%s" stroke-dasharray="4 3"/>`+"\n",
		pad, pad, w-2*pad, h-2*pad, boxFill, boxStroke)
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="12" fill="#6b7280">%s</text>`+"\n",
		w/2, h/2, PlaceholderText)
}

// layoutItems splits area evenly among items along dir.
func layoutItems(buf *bytes.Buffer, items []Item, dir string, area rect) {
	if len(items) == 0 || area.w <= 0 || area.h <= 0 {
		return
	}
	n := float64(len(items))
	for i, it := range items {
		cell := area
		if dir == "row" {
			cell.w = area.w / n
			cell.x = area.x + float64(i)*cell.w
		} else {
			cell.h = area.h / n
			cell.y = area.y + float64(i)*cell.h
		}
		renderItem(buf, it, inset(cell, 1))
	}
}

func inset(r rect, d float64) rect {
	return rect{r.x + d, r.y + d, math.Max(r.w-2*d, 0), math.Max(r.h-2*d, 0)}
}

func renderItem(buf *bytes.Buffer, it Item, r rect) {
	switch it.Kind {
	case KindSpacer:
		return
	case KindDivider:
		y := r.y + r.h/2
		fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`+"\n", r.x, y, r.x+r.w, y, boxStroke)
	case KindText:
		renderLine(buf, it.Text, r, orDefault(it.Color, inkColor), "start")
	case KindImage:
		fmt.Fprintf(buf, `  <rect class="image" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			r.x, r.y, r.w, r.h, escapeXML(it.Color))
	case KindButton:
		h := math.Min(r.h, 18)
		w := math.Min(r.w, math.Max(40, float64(len([]rune(it.Text)))*6+16))
		pill := rect{r.x, r.y + (r.h-h)/2, w, h}
		fmt.Fprintf(buf, `  <rect class="button" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s"/>`+"\n",
			pill.x, pill.y, pill.w, pill.h, h/2, escapeXML(orDefault(it.Color, buttonFill)))
		renderLine(buf, it.Text, pill, "#ffffff", "middle")
	default:
		fmt.Fprintf(buf, `  <rect class="box" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="3" fill="%s" stroke="%s"/>`+"\n",
			r.x, r.y, r.w, r.h, escapeXML(orDefault(it.Color, boxFill)), boxStroke)
		inner := inset(r, pad)
		if it.Text != "" {
			renderLine(buf, it.Text, rect{inner.x, inner.y, inner.w, math.Min(inner.h, 14)}, inkColor, "start")
			inner.y += 14
			inner.h -= 14
		}
		layoutItems(buf, it.Children, it.Direction, inner)
	}
}

func renderLine(buf *bytes.Buffer, s string, r rect, fill, anchor string) {
	if s == "" || r.h < 4 {
		return
	}
	size := math.Min(12, r.h*0.7)
	x := r.x
	if anchor == "middle" {
		x = r.x + r.w/2
	}
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="%s" dominant-baseline="middle" font-family="sans-serif" font-size="%.1f" fill="%s">%s</text>`+"\n",
		x, r.y+r.h/2, anchor, size, escapeXML(fill), escapeXML(s))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
