package page

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/blocks"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

func docWith(children []string, nodes map[string]document.Node) *document.Document {
	return &document.Document{
		Version: document.Version,
		Pages:   []document.Page{{ID: "p1", Children: children}},
		Nodes:   nodes,
	}
}

func render(t *testing.T, doc *document.Document, opts ...Option) string {
	t.Helper()
	out, err := Render(doc, 0, opts...)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return string(out)
}

func TestRenderScenarios(t *testing.T) {
	tests := []struct {
		name string
		doc  *document.Document
		want string
	}{
		{
			name: "hello text",
			doc: docWith([]string{"c1"}, map[string]document.Node{
				"c1": {Type: "Text", Props: document.Props{"text": "Hello"}},
			}),
			want: `<main class="site-page" data-page-id="p1"><p class="block block-text">Hello</p></main>`,
		},
		{
			name: "missing child renders empty page",
			doc:  docWith([]string{"missing"}, map[string]document.Node{}),
			want: `<main class="site-page" data-page-id="p1"></main>`,
		},
		{
			name: "dangling sibling is skipped",
			doc: docWith([]string{"a", "gone", "b"}, map[string]document.Node{
				"a": {Type: "Text", Props: document.Props{"text": "A"}},
				"b": {Type: "Text", Props: document.Props{"text": "B"}},
			}),
			want: `<main class="site-page" data-page-id="p1"><p class="block block-text">A</p><p class="block block-text">B</p></main>`,
		},
		{
			name: "unknown type renders as neutral container",
			doc: docWith([]string{"f"}, map[string]document.Node{
				"f": {Type: "FutureBlock", Props: document.Props{"sparkle": true}, Children: []string{"t"}},
				"t": {Type: "Text", Props: document.Props{"text": "inside"}},
			}),
			want: `<main class="site-page" data-page-id="p1"><div class="block block-unknown"><p class="block block-text">inside</p></div></main>`,
		},
		{
			name: "row is a flex container",
			doc: docWith([]string{"r"}, map[string]document.Node{
				"r": {Type: "Row", Props: document.Props{"gap": float64(12), "background": "#fff"}},
			}),
			want: `<main class="site-page" data-page-id="p1"><div class="block block-row" style="display:flex;flex-direction:row;gap:12px;background:#fff"></div></main>`,
		},
		{
			name: "cycle is rendered once",
			doc: docWith([]string{"a"}, map[string]document.Node{
				"a": {Type: "Container", Children: []string{"a"}},
			}),
			want: `<main class="site-page" data-page-id="p1"><div class="block block-container"></div></main>`,
		},
		{
			name: "hidden block is omitted",
			doc: docWith([]string{"a", "b"}, map[string]document.Node{
				"a": {Type: "Text", Props: document.Props{"text": "shown"}},
				"b": {Type: "Text", Props: document.Props{"text": "secret"}, Hidden: true},
			}),
			want: `<main class="site-page" data-page-id="p1"><p class="block block-text">shown</p></main>`,
		},
		{
			name: "hidden prop is not the editor flag",
			doc: docWith([]string{"a"}, map[string]document.Node{
				"a": {Type: "Text", Props: document.Props{"text": "shown", "hidden": true}},
			}),
			want: `<main class="site-page" data-page-id="p1"><p class="block block-text">shown</p></main>`,
		},
		{
			name: "button with defaults",
			doc: docWith([]string{"b"}, map[string]document.Node{
				"b": {Type: "Button"},
			}),
			want: `<main class="site-page" data-page-id="p1"><a class="block block-button block-button--primary" href="#">Button</a></main>`,
		},
		{
			name: "heading text",
			doc: docWith([]string{"h"}, map[string]document.Node{
				"h": {Type: "Text", Props: document.Props{"text": "Title", "tag": "h2", "textAlign": "center"}},
			}),
			want: `<main class="site-page" data-page-id="p1"><h2 class="block block-text" style="text-align:center">Title</h2></main>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, tt.doc); got != tt.want {
				t.Errorf("Render() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRenderEmbedded(t *testing.T) {
	doc := docWith([]string{"c1", "h"}, map[string]document.Node{
		"c1": {Type: "Text", Props: document.Props{"text": "Hello"}},
		"h":  {Type: "FutureBlock", Hidden: true},
	})
	got := render(t, doc, WithMode(ModeEmbedded))
	for _, want := range []string{
		`class="site-page site-page--embedded"`,
		`<p class="block block-text" data-node-id="c1" data-node-type="Text">Hello</p>`,
		`data-node-type="FutureBlock" hidden=""`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("embedded output missing %q:\n%s", want, got)
		}
	}
}

func TestRenderSanitizes(t *testing.T) {
	doc := docWith([]string{"t", "i", "b", "c"}, map[string]document.Node{
		"t": {Type: "Text", Props: document.Props{"text": `<b>Hi</b><script>alert(1)</script>`}},
		"i": {Type: "Image", Props: document.Props{"src": "javascript:alert(1)", "alt": "logo"}},
		"b": {Type: "Button", Props: document.Props{"label": "Go", "href": "javascript:alert(1)"}},
		"c": {Type: "Container", Props: document.Props{
			"background": "url(http://evil/x.png)",
			"color":      "red;position:fixed",
			"padding":    "8px 16px",
		}},
	})
	got := render(t, doc)

	for _, bad := range []string{"<script", "javascript:", "url(", "position:fixed"} {
		if strings.Contains(got, bad) {
			t.Errorf("output contains %q:\n%s", bad, got)
		}
	}
	for _, want := range []string{
		"<b>Hi</b>",
		`class="block block-image block-image--empty" role="img" aria-label="logo"`,
		`href="#">Go</a>`,
		`style="padding:8px 16px"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRenderEscapesPlainText(t *testing.T) {
	doc := docWith([]string{"t"}, map[string]document.Node{
		"t": {Type: "Text", Props: document.Props{"text": `"quoted" & <i>`}},
	})
	got := render(t, doc)
	if strings.Contains(got, "<i>") && !strings.Contains(got, "<i></i>") {
		t.Errorf("unbalanced markup leaked: %s", got)
	}
	if strings.Contains(got, "&<") {
		t.Errorf("ampersand not escaped: %s", got)
	}
}

func TestRenderDepthCap(t *testing.T) {
	nodes := map[string]document.Node{}
	for i := 0; i < 300; i++ {
		nodes[fmt.Sprintf("n%d", i)] = document.Node{Type: "Container", Children: []string{fmt.Sprintf("n%d", i+1)}}
	}
	doc := docWith([]string{"n0"}, nodes)

	_, stats, err := BuildStats(doc, 0, WithMaxDepth(5))
	if err != nil {
		t.Fatalf("BuildStats() error = %v", err)
	}
	if stats.Rendered != 5 || !stats.Truncated {
		t.Errorf("stats = %+v, want 5 rendered and truncated", stats)
	}

	_, stats, err = BuildStats(doc, 0)
	if err != nil {
		t.Fatalf("BuildStats() error = %v", err)
	}
	if stats.Rendered != DefaultMaxDepth || !stats.Truncated {
		t.Errorf("default stats = %+v", stats)
	}
}

func TestRenderDeterministic(t *testing.T) {
	doc := docWith([]string{"s"}, map[string]document.Node{
		"s": {Type: "Section", Props: document.Props{"background": "#000", "padding": 24.0, "color": "#fff", "flexDirection": "column"}, Children: []string{"t", "img"}},
		"t": {Type: "Text", Props: document.Props{"text": "Hi", "fontSize": 18.0, "fontWeight": 700.0}},
		"img": {Type: "Image", Props: document.Props{"src": "https://cdn.example.com/a.png", "alt": "A", "objectFit": "cover"}},
	})
	first := render(t, doc)
	for i := 0; i < 10; i++ {
		if got := render(t, doc); got != first {
			t.Fatalf("render %d differs:\n%s\n%s", i, got, first)
		}
	}
	if !strings.Contains(first, `font-weight:700`) || !strings.Contains(first, `object-fit:cover`) {
		t.Errorf("typed props not rendered: %s", first)
	}
}

func TestRenderShell(t *testing.T) {
	doc := docWith([]string{}, map[string]document.Node{})
	got := render(t, doc, WithDocumentShell("My <shop>"))
	if !strings.HasPrefix(got, "<!DOCTYPE html>") {
		t.Errorf("missing doctype: %.40s", got)
	}
	for _, want := range []string{`<html lang="en">`, "<title>My &lt;shop&gt;</title>", ".block-row{", `<body><main class="site-page"`} {
		if !strings.Contains(got, want) {
			t.Errorf("shell missing %q", want)
		}
	}
}

func TestRenderPageIndex(t *testing.T) {
	doc := &document.Document{
		Version: document.Version,
		Pages: []document.Page{
			{ID: "home", Children: []string{"a"}},
			{ID: "about", Children: []string{"b"}},
		},
		Nodes: map[string]document.Node{
			"a": {Type: "Text", Props: document.Props{"text": "home"}},
			"b": {Type: "Text", Props: document.Props{"text": "about"}},
		},
	}
	out, err := Render(doc, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(out, []byte(`data-page-id="about"`)) || bytes.Contains(out, []byte(">home<")) {
		t.Errorf("Render(1) = %s", out)
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  *document.Document
		page int
		code errors.Code
	}{
		{"nil document", nil, 0, errors.ErrCodeInvalidDocument},
		{"bad version", &document.Document{Version: 7}, 0, errors.ErrCodeUnsupportedVersion},
		{"page out of range", docWith(nil, nil), 3, errors.ErrCodePageNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Render(tt.doc, tt.page); !errors.Is(err, tt.code) {
				t.Errorf("Render() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestEveryBlockHasRule(t *testing.T) {
	for _, s := range blocks.All {
		if s.Kind == blocks.KindPage {
			continue
		}
		if _, known := lookup(s.Name); !known {
			t.Errorf("block %q has no render rule", s.Name)
		}
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("embedded"); err != nil || m != ModeEmbedded {
		t.Errorf("ParseMode(embedded) = %v, %v", m, err)
	}
	if _, err := ParseMode("print"); !errors.Is(err, errors.ErrCodeInvalidRenderOption) {
		t.Errorf("ParseMode(print) error = %v", err)
	}
}
