package serialize

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/editorgraph"
	apperrors "github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

// gnode is a compact way to describe a graph in tests: id -> type, children.
type gnode struct {
	id       string
	typ      string
	children []string
	props    document.Props
}

func graphOf(t *testing.T, nodes ...gnode) *editorgraph.Graph {
	t.Helper()
	g := editorgraph.New()
	for _, s := range nodes {
		n := &editorgraph.Node{ID: s.id, Type: editorgraph.RefFor(s.typ), Props: s.props, Nodes: s.children}
		if err := g.Add(n); err != nil {
			t.Fatalf("Add(%s) error = %v", s.id, err)
		}
	}
	for _, s := range nodes {
		for _, c := range s.children {
			if child, ok := g.Node(c); ok {
				child.Parent = s.id
			}
		}
	}
	return g
}

func sampleGraph(t *testing.T) *editorgraph.Graph {
	return graphOf(t,
		gnode{id: "ROOT", typ: "Container", children: []string{"page"}},
		gnode{id: "page", typ: "Page", children: []string{"hero", "row"}, props: document.Props{"title": "Home"}},
		gnode{id: "hero", typ: "Section", children: []string{"h1"}, props: document.Props{"background": "#fff", "__selected": true}},
		gnode{id: "h1", typ: "Text", props: document.Props{"text": "Welcome", "fontSize": float64(32)}},
		gnode{id: "row", typ: "Row", children: []string{"img", "btn"}},
		gnode{id: "img", typ: "Image", props: document.Props{"src": "/a.png"}},
		gnode{id: "btn", typ: "Button", props: document.Props{"label": "Buy", "href": "/shop"}},
	)
}

// shape renders the subtree under id as a string of types, props and
// children, ignoring ids.
func shape(g *editorgraph.Graph, id string) string {
	n, ok := g.Node(id)
	if !ok {
		return "<missing>"
	}
	props := []byte("{}")
	if len(n.Props) > 0 {
		props, _ = json.Marshal(n.Props)
	}
	parts := make([]string, 0, len(n.Nodes))
	for _, c := range n.Nodes {
		parts = append(parts, shape(g, c))
	}
	return fmt.Sprintf("%s%s[%s]", n.Name(), props, strings.Join(parts, ","))
}

func TestToDocument(t *testing.T) {
	doc, err := FromGraph(sampleGraph(t))
	if err != nil {
		t.Fatalf("FromGraph() error = %v", err)
	}

	if doc.Version != document.Version {
		t.Errorf("Version = %d", doc.Version)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("Pages = %d, want 1", len(doc.Pages))
	}
	page := doc.Pages[0]
	if page.ID != "page" || !reflect.DeepEqual(page.Children, []string{"hero", "row"}) {
		t.Errorf("page = %+v", page)
	}
	if page.Props["title"] != "Home" {
		t.Errorf("page props = %v", page.Props)
	}
	if _, ok := doc.Nodes["page"]; ok {
		t.Error("page node should not be listed in nodes")
	}
	if _, ok := doc.Nodes["ROOT"]; ok {
		t.Error("ROOT should not be listed in nodes")
	}
	if len(doc.Nodes) != 5 {
		t.Errorf("Nodes = %d, want 5", len(doc.Nodes))
	}
	hero := doc.Nodes["hero"]
	if hero.Type != "Section" || hero.Props.Has("__selected") || hero.Props["background"] != "#fff" {
		t.Errorf("hero = %+v", hero)
	}
	if err := document.Validate(doc); err != nil {
		t.Errorf("serialized document is invalid: %v", err)
	}
}

func TestToDocumentLinkedNodes(t *testing.T) {
	g := sampleGraph(t)
	hero, _ := g.Node("hero")
	_ = g.Add(&editorgraph.Node{ID: "cta", Type: editorgraph.RefFor("Button"), Parent: "hero"})
	_ = g.Add(&editorgraph.Node{ID: "sub", Type: editorgraph.RefFor("Text"), Parent: "hero"})
	hero.LinkedNodes = map[string]string{"zeta": "cta", "alpha": "sub"}

	doc, err := FromGraph(g)
	if err != nil {
		t.Fatalf("FromGraph() error = %v", err)
	}
	want := []string{"h1", "sub", "cta"}
	if got := doc.Nodes["hero"].Children; !reflect.DeepEqual(got, want) {
		t.Errorf("hero children = %v, want %v", got, want)
	}
}

func TestToDocumentStrictErrors(t *testing.T) {
	tests := []struct {
		name     string
		graph    func(t *testing.T) *editorgraph.Graph
		sentinel error
	}{
		{
			name: "missing root",
			graph: func(t *testing.T) *editorgraph.Graph {
				return graphOf(t, gnode{id: "page", typ: "Page"})
			},
			sentinel: ErrMissingRoot,
		},
		{
			name: "root with two children",
			graph: func(t *testing.T) *editorgraph.Graph {
				return graphOf(t,
					gnode{id: "ROOT", typ: "Container", children: []string{"a", "b"}},
					gnode{id: "a", typ: "Page"}, gnode{id: "b", typ: "Page"})
			},
			sentinel: ErrRootShape,
		},
		{
			name: "root without children",
			graph: func(t *testing.T) *editorgraph.Graph {
				return graphOf(t, gnode{id: "ROOT", typ: "Container"})
			},
			sentinel: ErrRootShape,
		},
		{
			name: "missing page",
			graph: func(t *testing.T) *editorgraph.Graph {
				return graphOf(t, gnode{id: "ROOT", typ: "Container", children: []string{"page"}})
			},
			sentinel: ErrDanglingChild,
		},
		{
			name: "dangling child",
			graph: func(t *testing.T) *editorgraph.Graph {
				return graphOf(t,
					gnode{id: "ROOT", typ: "Container", children: []string{"page"}},
					gnode{id: "page", typ: "Page", children: []string{"ghost"}})
			},
			sentinel: ErrDanglingChild,
		},
		{
			name: "cycle through ancestor",
			graph: func(t *testing.T) *editorgraph.Graph {
				return graphOf(t,
					gnode{id: "ROOT", typ: "Container", children: []string{"page"}},
					gnode{id: "page", typ: "Page", children: []string{"a"}},
					gnode{id: "a", typ: "Container", children: []string{"b"}},
					gnode{id: "b", typ: "Container", children: []string{"a"}})
			},
			sentinel: ErrCycle,
		},
		{
			name: "cycle back to page",
			graph: func(t *testing.T) *editorgraph.Graph {
				return graphOf(t,
					gnode{id: "ROOT", typ: "Container", children: []string{"page"}},
					gnode{id: "page", typ: "Page", children: []string{"a"}},
					gnode{id: "a", typ: "Container", children: []string{"page"}})
			},
			sentinel: ErrCycle,
		},
		{
			name: "self loop",
			graph: func(t *testing.T) *editorgraph.Graph {
				return graphOf(t,
					gnode{id: "ROOT", typ: "Container", children: []string{"page"}},
					gnode{id: "page", typ: "Page", children: []string{"a"}},
					gnode{id: "a", typ: "Container", children: []string{"a"}})
			},
			sentinel: ErrCycle,
		},
		{
			name: "shared node",
			graph: func(t *testing.T) *editorgraph.Graph {
				return graphOf(t,
					gnode{id: "ROOT", typ: "Container", children: []string{"page"}},
					gnode{id: "page", typ: "Page", children: []string{"a", "b"}},
					gnode{id: "a", typ: "Container", children: []string{"x"}},
					gnode{id: "b", typ: "Container", children: []string{"x"}},
					gnode{id: "x", typ: "Text"})
			},
			sentinel: ErrSharedNode,
		},
		{
			name: "untyped node",
			graph: func(t *testing.T) *editorgraph.Graph {
				return graphOf(t,
					gnode{id: "ROOT", typ: "Container", children: []string{"page"}},
					gnode{id: "page", typ: "Page", children: []string{"a"}},
					gnode{id: "a"})
			},
			sentinel: ErrEmptyType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := FromGraph(tt.graph(t))
			if doc != nil {
				t.Errorf("FromGraph() returned a partial document")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("FromGraph() error = %v, want %v", err, tt.sentinel)
			}
			if !apperrors.IsStructural(err) {
				t.Errorf("FromGraph() error code = %q, want CORRUPT_GRAPH", apperrors.GetCode(err))
			}
		})
	}
}

func TestToDocumentLenient(t *testing.T) {
	g := graphOf(t,
		gnode{id: "ROOT", typ: "Container", children: []string{"a", "b"}},
		gnode{id: "a", typ: "Container", children: []string{"ghost", "x", "a"}},
		gnode{id: "b", typ: "Container", children: []string{"x"}},
		gnode{id: "x"},
	)
	doc, err := FromGraph(g, Lenient())
	if err != nil {
		t.Fatalf("FromGraph(Lenient) error = %v", err)
	}
	if doc.Pages[0].ID != "ROOT" || !reflect.DeepEqual(doc.Pages[0].Children, []string{"a", "b"}) {
		t.Errorf("page = %+v", doc.Pages[0])
	}
	if got := doc.Nodes["a"].Children; !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("a children = %v, want [x]", got)
	}
	if got := doc.Nodes["b"].Children; len(got) != 0 {
		t.Errorf("b children = %v, want shared x cut", got)
	}
	if doc.Nodes["x"].Type != "Container" {
		t.Errorf("untyped node type = %q, want Container", doc.Nodes["x"].Type)
	}
	if err := document.Validate(doc); err != nil {
		t.Errorf("lenient output is invalid: %v", err)
	}

	if _, err := ToDocument("ROOT", map[string]*editorgraph.Node{}, Lenient()); !errors.Is(err, ErrMissingRoot) {
		t.Errorf("lenient missing root error = %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	g := sampleGraph(t)
	hidden, _ := g.Node("img")
	hidden.Hidden = true

	doc, err := FromGraph(g)
	if err != nil {
		t.Fatalf("FromGraph() error = %v", err)
	}
	back, err := ToGraph(doc, 0)
	if err != nil {
		t.Fatalf("ToGraph() error = %v", err)
	}
	if err := back.CheckLinks(); err != nil {
		t.Fatalf("CheckLinks() error = %v", err)
	}

	origPage, _ := g.PageID()
	backPage, ok := back.PageID()
	if !ok {
		t.Fatal("rebuilt graph has no page")
	}

	// Bookkeeping keys are dropped on save; compare against the cleaned graph.
	hero, _ := g.Node("hero")
	delete(hero.Props, "__selected")

	if got, want := shape(back, backPage), shape(g, origPage); got != want {
		t.Errorf("round trip changed structure:\n got  %s\n want %s", got, want)
	}
	img, _ := back.Node("img")
	if !img.Hidden || img.Props.Has("hidden") {
		t.Errorf("hidden flag not restored: %+v", img)
	}
	if !doc.Nodes["img"].Hidden || doc.Nodes["img"].Props.Has("hidden") {
		t.Errorf("stored node = %+v, want flag outside props", doc.Nodes["img"])
	}
}

func TestRoundTripHiddenProp(t *testing.T) {
	g := graphOf(t,
		gnode{id: "ROOT", typ: "Container", children: []string{"page"}},
		gnode{id: "page", typ: "Page", children: []string{"txt", "sec"}},
		gnode{id: "txt", typ: "Text", props: document.Props{"hidden": false, "text": "x"}},
		gnode{id: "sec", typ: "Section", props: document.Props{"hidden": true}},
	)

	doc, err := FromGraph(g)
	if err != nil {
		t.Fatalf("FromGraph() error = %v", err)
	}
	if doc.Nodes["sec"].Hidden {
		t.Error("user prop hidden=true set the editor flag")
	}
	back, err := ToGraph(doc, 0)
	if err != nil {
		t.Fatalf("ToGraph() error = %v", err)
	}

	if got, want := shape(back, "page"), shape(g, "page"); got != want {
		t.Errorf("round trip changed props:\n got  %s\n want %s", got, want)
	}
	for _, id := range []string{"txt", "sec"} {
		if n, _ := back.Node(id); n.Hidden {
			t.Errorf("%s.Hidden = true after round trip", id)
		}
	}
}

func TestRoundTripNestedPageType(t *testing.T) {
	g := graphOf(t,
		gnode{id: "ROOT", typ: "Container", children: []string{"page"}},
		gnode{id: "page", typ: "Page", children: []string{"inner"}},
		gnode{id: "inner", typ: "Page"},
	)
	doc, err := FromGraph(g)
	if err != nil {
		t.Fatalf("FromGraph() error = %v", err)
	}
	back, err := ToGraph(doc, 0)
	if err != nil {
		t.Fatalf("ToGraph() error = %v", err)
	}
	inner, ok := back.Node("inner")
	if !ok || inner.Name() != "Page" {
		t.Errorf("inner type = %v, want Page", inner)
	}
	again, err := FromGraph(back)
	if err != nil {
		t.Fatalf("FromGraph(back) error = %v", err)
	}
	if !reflect.DeepEqual(again, doc) {
		t.Errorf("re-serialized document differs:\n got  %+v\n want %+v", again, doc)
	}
}

func TestIdempotence(t *testing.T) {
	first, err := FromGraph(sampleGraph(t))
	if err != nil {
		t.Fatal(err)
	}
	current := first
	for i := 0; i < 3; i++ {
		g, err := ToGraph(current, 0)
		if err != nil {
			t.Fatalf("cycle %d: ToGraph() error = %v", i, err)
		}
		next, err := FromGraph(g)
		if err != nil {
			t.Fatalf("cycle %d: FromGraph() error = %v", i, err)
		}
		if !reflect.DeepEqual(next, first) {
			a, _ := document.Marshal(first)
			b, _ := document.Marshal(next)
			t.Fatalf("cycle %d drifted:\n%s\n%s", i, a, b)
		}
		current = next
	}
}

func TestToGraph(t *testing.T) {
	doc := &document.Document{
		Version: document.Version,
		Pages: []document.Page{
			{ID: "home", Children: []string{"a", "missing", "ROOT"}},
			{ID: "about", Children: []string{"b"}},
		},
		Nodes: map[string]document.Node{
			"a":    {Type: "FutureBlock", Props: document.Props{"x": 1.0}, Children: []string{"c", "c"}},
			"c":    {Type: "Text"},
			"ROOT": {Type: "Text"},
			"b":    {Type: "Image"},
		},
	}

	g, err := ToGraph(doc, 0)
	if err != nil {
		t.Fatalf("ToGraph() error = %v", err)
	}
	if err := g.CheckLinks(); err != nil {
		t.Fatalf("CheckLinks() error = %v", err)
	}
	page, _ := g.PageID()
	if page != "home" {
		t.Errorf("page id = %q, want home", page)
	}
	children := g.Children(page)
	if len(children) != 2 || children[0] != "a" || children[1] == "ROOT" {
		t.Fatalf("page children = %v", children)
	}
	a, _ := g.Node("a")
	if a.Name() != "Container" || !a.IsCanvas || a.Props["x"] != 1.0 {
		t.Errorf("unknown type should become Container with props kept: %+v", a)
	}
	if got := g.Children("a"); len(got) != 1 {
		t.Errorf("repeated child should be cut: %v", got)
	}

	g2, err := ToGraph(doc, 1)
	if err != nil {
		t.Fatalf("ToGraph(1) error = %v", err)
	}
	if p, _ := g2.PageID(); p != "about" {
		t.Errorf("page 1 id = %q", p)
	}
}

func TestToGraphErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  *document.Document
		page int
		code apperrors.Code
	}{
		{"nil", nil, 0, apperrors.ErrCodeInvalidDocument},
		{"version", &document.Document{Version: 9}, 0, apperrors.ErrCodeUnsupportedVersion},
		{"page out of range", document.New(), 0, apperrors.ErrCodePageNotFound},
		{"negative page", document.New(), -1, apperrors.ErrCodePageNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ToGraph(tt.doc, tt.page); !apperrors.Is(err, tt.code) {
				t.Errorf("ToGraph() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestToGraphFreshIDs(t *testing.T) {
	doc, err := FromGraph(sampleGraph(t))
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	gen := func() string { n++; return fmt.Sprintf("id-%d", n) }

	g, err := ToGraph(doc, 0, WithFreshIDs(gen))
	if err != nil {
		t.Fatalf("ToGraph() error = %v", err)
	}
	for _, id := range g.IDs() {
		if id != editorgraph.RootID && !strings.HasPrefix(id, "id-") {
			t.Errorf("id %q was not regenerated", id)
		}
	}
	if g.Len() != 7 {
		t.Errorf("Len() = %d, want 7", g.Len())
	}
	if err := g.CheckLinks(); err != nil {
		t.Errorf("CheckLinks() error = %v", err)
	}
}
