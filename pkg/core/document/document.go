package document

import (
	"maps"
	"slices"
)

// Version is the format revision written by this package and the only one
// it accepts when reading.
const Version = 1

// Document is the canonical serialization format for a site.
// Used for storage, API responses, caching and rendering.
type Document struct {
	Version int             `json:"version" bson:"version"`
	Pages   []Page          `json:"pages" bson:"pages"`
	Nodes   map[string]Node `json:"nodes" bson:"nodes"`
}

// Page is a top-level entry point of a document. Children order is
// rendering order.
type Page struct {
	ID       string   `json:"id" bson:"id"`
	Children []string `json:"children" bson:"children"`
	Props    Props    `json:"props,omitempty" bson:"props,omitempty"`
}

// Node is a single visual block.
type Node struct {
	Type     string   `json:"type" bson:"type"`
	Props    Props    `json:"props,omitempty" bson:"props,omitempty"`
	Children []string `json:"children" bson:"children"`
	// Hidden is the editor's visibility toggle. It is separate from props so
	// a user prop named "hidden" round-trips untouched.
	Hidden bool `json:"hidden,omitempty" bson:"hidden,omitempty"`
}

// New creates an empty document at the current version.
func New() *Document {
	return &Document{
		Version: Version,
		Pages:   []Page{},
		Nodes:   make(map[string]Node),
	}
}

// Page returns the page at index i.
func (d *Document) Page(i int) (Page, bool) {
	if d == nil || i < 0 || i >= len(d.Pages) {
		return Page{}, false
	}
	return d.Pages[i], true
}

// Node returns the node with the given id.
func (d *Document) Node(id string) (Node, bool) {
	if d == nil {
		return Node{}, false
	}
	n, ok := d.Nodes[id]
	return n, ok
}

// NodeCount returns the number of node records, reachable or not.
func (d *Document) NodeCount() int {
	if d == nil {
		return 0
	}
	return len(d.Nodes)
}

// IsEmpty reports whether no page has any content to render.
func (d *Document) IsEmpty() bool {
	if d == nil {
		return true
	}
	for _, p := range d.Pages {
		for _, id := range p.Children {
			if _, ok := d.Nodes[id]; ok {
				return false
			}
		}
	}
	return true
}

// Reachable returns the ids of nodes reachable from page i. Dangling ids are
// not included and repeated visits are ignored, so the walk terminates on
// corrupt documents.
func (d *Document) Reachable(i int) map[string]bool {
	seen := make(map[string]bool)
	p, ok := d.Page(i)
	if !ok {
		return seen
	}
	stack := slices.Clone(p.Children)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		n, ok := d.Nodes[id]
		if !ok {
			continue
		}
		seen[id] = true
		stack = append(stack, n.Children...)
	}
	return seen
}

// Orphans returns ids of nodes not reachable from any page, sorted.
func (d *Document) Orphans() []string {
	if d == nil {
		return nil
	}
	reached := make(map[string]bool, len(d.Nodes))
	for i := range d.Pages {
		maps.Copy(reached, d.Reachable(i))
	}
	var out []string
	for id := range d.Nodes {
		if !reached[id] {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// Clone returns a deep copy of the document. Props are deep-copied so the
// clone can be mutated without affecting the original.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Version: d.Version,
		Pages:   make([]Page, len(d.Pages)),
		Nodes:   make(map[string]Node, len(d.Nodes)),
	}
	for i, p := range d.Pages {
		out.Pages[i] = Page{ID: p.ID, Children: cloneIDs(p.Children), Props: p.Props.Clone()}
	}
	for id, n := range d.Nodes {
		out.Nodes[id] = Node{Type: n.Type, Props: n.Props.Clone(), Children: cloneIDs(n.Children)}
	}
	return out
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return slices.Clone(ids)
}
