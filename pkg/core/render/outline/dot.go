package outline

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/blocks"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

// maxPropValue bounds prop values shown in detailed labels.
const maxPropValue = 32

// Options configures diagram rendering.
type Options struct {
	// Detailed adds the node id and scalar props to labels. When false, only
	// the block type is shown.
	Detailed bool
}

// ToDOT converts page pageIndex of doc to Graphviz DOT. Output is
// deterministic: nodes appear in depth-first child order.
func ToDOT(doc *document.Document, pageIndex int, opts Options) (string, error) {
	if doc == nil {
		return "", errors.New(errors.ErrCodeInvalidDocument, "nil document")
	}
	pg, ok := doc.Page(pageIndex)
	if !ok {
		return "", errors.New(errors.ErrCodePageNotFound, "page %d not found (document has %d)", pageIndex, len(doc.Pages))
	}

	w := &dotWriter{doc: doc, opts: opts, drawn: make(map[string]bool)}
	w.nodes.WriteString("digraph G {\n")
	w.nodes.WriteString("  rankdir=TB;\n")
	w.nodes.WriteString("  bgcolor=\"transparent\";\n")
	w.nodes.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	w.nodes.WriteString("  ranksep=0.4;\n")
	w.nodes.WriteString("  nodesep=0.3;\n")
	w.nodes.WriteString("\n")

	root := pageKey(pg.ID)
	label := "Page"
	if opts.Detailed {
		label += "\n" + pg.ID
	}
	fmt.Fprintf(&w.nodes, "  %q [label=%q, shape=ellipse, style=filled, fillcolor=\"#e0e7ff\"];\n", root, label)
	w.walk(root, pg.Children)

	var buf bytes.Buffer
	buf.Write(w.nodes.Bytes())
	buf.WriteString("\n")
	buf.Write(w.edges.Bytes())
	buf.WriteString("}\n")
	return buf.String(), nil
}

type dotWriter struct {
	doc   *document.Document
	opts  Options
	drawn map[string]bool
	nodes bytes.Buffer
	edges bytes.Buffer
}

func (w *dotWriter) walk(parent string, ids []string) {
	for _, id := range ids {
		n, ok := w.doc.Nodes[id]
		if !ok {
			missing := missingKey(id)
			if !w.drawn[missing] {
				w.drawn[missing] = true
				fmt.Fprintf(&w.nodes, "  %q [label=%q, color=red, fontcolor=red, style=\"rounded,dashed\"];\n", missing, "missing\n"+id)
			}
			fmt.Fprintf(&w.edges, "  %q -> %q [color=red];\n", parent, missing)
			continue
		}
		key := nodeKey(id)
		if w.drawn[key] {
			fmt.Fprintf(&w.edges, "  %q -> %q [color=orange, style=dashed];\n", parent, key)
			continue
		}
		w.drawn[key] = true
		attrs := fmtAttrs(n, fmtLabel(id, n, w.opts.Detailed))
		fmt.Fprintf(&w.nodes, "  %q [%s];\n", key, strings.Join(attrs, ", "))
		fmt.Fprintf(&w.edges, "  %q -> %q;\n", parent, key)
		w.walk(key, n.Children)
	}
}

// DOT keys are namespaced by what they draw so a node id can never collide
// with the page or a missing-reference marker.
func pageKey(id string) string    { return "page:" + id }
func nodeKey(id string) string    { return "node:" + id }
func missingKey(id string) string { return "missing:" + id }

func fmtLabel(id string, n document.Node, detailed bool) string {
	typ := n.Type
	if typ == "" {
		typ = "(no type)"
	}
	if !detailed {
		return typ
	}

	parts := []string{typ, id}
	for _, k := range slices.Sorted(maps.Keys(n.Props)) {
		if document.IsInternalKey(k) {
			continue
		}
		switch v := n.Props[k].(type) {
		case string:
			parts = append(parts, fmt.Sprintf("%s: %s", k, clip(v)))
		case float64, bool:
			parts = append(parts, fmt.Sprintf("%s: %v", k, v))
		}
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n document.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case !blocks.IsKnown(n.Type):
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case blocks.Find(n.Type).Kind == blocks.KindTemplate:
		attrs = append(attrs, "fillcolor=\"#fef3c7\"")
	}
	if n.Hidden {
		attrs = append(attrs, "fontcolor=grey")
	}
	return attrs
}

func clip(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxPropValue {
		return string(r[:maxPropValue-1]) + "…"
	}
	return s
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz <svg> tag (pt units, transforms)
// with a plain pixel viewBox so the diagram scales inside an <img>.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// Requires rsvg-convert.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
