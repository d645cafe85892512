package editorgraph

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/blocks"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
)

// RootID is the reserved id of the sentinel node every editor graph hangs from.
const RootID = "ROOT"

var (
	// ErrInvalidNodeID is returned by [Graph.Add] when the node id is empty.
	ErrInvalidNodeID = errors.New("node id must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.Add] when a node with the same
	// id already exists. Ids are unique across the whole graph.
	ErrDuplicateNodeID = errors.New("duplicate node id")

	// ErrUnknownParent is returned by [Graph.Link] when the parent id is not
	// in the graph.
	ErrUnknownParent = errors.New("unknown parent node")

	// ErrUnknownChild is returned by [Graph.Link] when the child id is not
	// in the graph.
	ErrUnknownChild = errors.New("unknown child node")

	// ErrInconsistentLink is returned by [Graph.CheckLinks] when a child's
	// parent pointer disagrees with the parent's child list.
	ErrInconsistentLink = errors.New("inconsistent parent/child link")
)

// TypeRef is the editor's handle to a node's component type. ResolvedName is
// what the editor serialized; Block is the registry entry it resolves to, or
// nil when the name is not a known block.
type TypeRef struct {
	ResolvedName string
	Block        *blocks.Spec
}

// RefFor returns a TypeRef for name with Block looked up in the registry.
func RefFor(name string) TypeRef {
	return TypeRef{ResolvedName: name, Block: blocks.Find(name)}
}

// Node is one record of the live editor graph. Links are bidirectional:
// Nodes lists children in order and Parent points back up. LinkedNodes holds
// named slots that templates expose (slot name -> node id).
type Node struct {
	ID          string
	Type        TypeRef
	Props       document.Props
	Nodes       []string
	LinkedNodes map[string]string
	Parent      string
	IsCanvas    bool
	Hidden      bool
	DisplayName string
	Custom      map[string]any
}

// Name returns the type name the node is dispatched by: the resolved name,
// falling back to the display name for editors that omit it.
func (n *Node) Name() string {
	if n.Type.ResolvedName != "" {
		return n.Type.ResolvedName
	}
	return n.DisplayName
}

// ChildIDs returns the regular children followed by linked-node ids in sorted
// slot order.
func (n *Node) ChildIDs() []string {
	ids := slices.Clone(n.Nodes)
	for _, slot := range slices.Sorted(maps.Keys(n.LinkedNodes)) {
		ids = append(ids, n.LinkedNodes[slot])
	}
	return ids
}

// Graph is the flat id -> node map of a live editor session.
//
// Graph does not enforce tree shape: editor state can be corrupt, and the
// serializer is where corruption is detected. The zero value is not usable;
// use [New]. Graph is not safe for concurrent use.
type Graph struct {
	nodes map[string]*Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// Add inserts a node. Nil slices and maps are initialized so the node
// encodes in the editor's shape.
func (g *Graph) Add(n *Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
	}
	if n.Props == nil {
		n.Props = document.Props{}
	}
	if n.Nodes == nil {
		n.Nodes = []string{}
	}
	if n.LinkedNodes == nil {
		n.LinkedNodes = map[string]string{}
	}
	if n.Custom == nil {
		n.Custom = map[string]any{}
	}
	g.nodes[n.ID] = n
	return nil
}

// Link appends child to parent's ordered children and sets the back pointer.
func (g *Graph) Link(parent, child string) error {
	p, ok := g.nodes[parent]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParent, parent)
	}
	c, ok := g.nodes[child]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChild, child)
	}
	p.Nodes = append(p.Nodes, child)
	c.Parent = parent
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns the underlying node map. It is the map the serializer walks.
func (g *Graph) Nodes() map[string]*Node { return g.nodes }

// Len returns the number of nodes, ROOT included.
func (g *Graph) Len() int { return len(g.nodes) }

// IDs returns all node ids, sorted.
func (g *Graph) IDs() []string {
	return slices.Sorted(maps.Keys(g.nodes))
}

// Children returns the ordered child ids of a node, or nil if it is unknown.
func (g *Graph) Children(id string) []string {
	if n, ok := g.nodes[id]; ok {
		return n.Nodes
	}
	return nil
}

// PageID returns the id of ROOT's single child. It reports false when ROOT
// is missing or does not have exactly one child.
func (g *Graph) PageID() (string, bool) {
	root, ok := g.nodes[RootID]
	if !ok || len(root.Nodes) != 1 {
		return "", false
	}
	return root.Nodes[0], true
}

// CheckLinks verifies that every listed child exists and points back at the
// parent that lists it.
func (g *Graph) CheckLinks() error {
	for _, id := range g.IDs() {
		for _, child := range g.nodes[id].ChildIDs() {
			c, ok := g.nodes[child]
			if !ok {
				return fmt.Errorf("%w: %s lists missing child %s", ErrInconsistentLink, id, child)
			}
			if c.Parent != id {
				return fmt.Errorf("%w: %s lists %s whose parent is %q", ErrInconsistentLink, id, child, c.Parent)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := New()
	for id, n := range g.nodes {
		cp := *n
		cp.Props = n.Props.Clone()
		cp.Nodes = slices.Clone(n.Nodes)
		cp.LinkedNodes = maps.Clone(n.LinkedNodes)
		cp.Custom = maps.Clone(n.Custom)
		out.nodes[id] = &cp
	}
	return out
}
