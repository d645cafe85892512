package serialize

import (
	"errors"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/blocks"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/editorgraph"
	apperrors "github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

// Structural problems found while serializing an editor graph. In strict mode
// they are returned wrapped in a CORRUPT_GRAPH error, so both errors.Is with
// the sentinel and a code check work.
var (
	// ErrMissingRoot means the node map has no entry for the root id.
	ErrMissingRoot = errors.New("editor graph has no root node")

	// ErrRootShape means the root does not have exactly one (page) child.
	ErrRootShape = errors.New("root must have exactly one child")

	// ErrDanglingChild means a node lists a child id that is not in the graph.
	ErrDanglingChild = errors.New("child id not in graph")

	// ErrCycle means a node is reachable from itself.
	ErrCycle = errors.New("graph contains a cycle")

	// ErrSharedNode means a node is listed as a child by two parents.
	ErrSharedNode = errors.New("node has more than one parent")

	// ErrEmptyType means a node has neither a resolved name nor a display name.
	ErrEmptyType = errors.New("node has no type name")
)

// FromGraph serializes a graph rooted at [editorgraph.RootID].
func FromGraph(g *editorgraph.Graph, opts ...Option) (*document.Document, error) {
	if g == nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeCorruptGraph, ErrMissingRoot, "nil editor graph")
	}
	return ToDocument(editorgraph.RootID, g.Nodes(), opts...)
}

// ToDocument converts the editor node map rooted at rootID into a document
// with a single page.
//
// The root's single child is the page node: it becomes pages[0] (same id,
// public props) and is not listed in nodes. Every node reachable from the
// page is emitted depth-first with its resolved type name, its props minus
// bookkeeping keys and its children in original order (regular children,
// then linked slots by slot name). Node ids are kept, so serializing an
// unmodified graph twice gives the same document.
func ToDocument(rootID string, nodes map[string]*editorgraph.Node, opts ...Option) (*document.Document, error) {
	o := newOptions(opts)

	root, ok := nodes[rootID]
	if !ok || root == nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeCorruptGraph, ErrMissingRoot, "no %q node", rootID)
	}

	e := &encoder{
		nodes:  nodes,
		opts:   o,
		doc:    document.New(),
		state:  make(map[string]visitState, len(nodes)),
		parent: make(map[string]string, len(nodes)),
	}

	pageID, page, err := e.page(rootID, root)
	if err != nil {
		return nil, err
	}

	e.state[rootID] = onPath
	e.state[pageID] = onPath
	children, err := e.children(pageID, page)
	if err != nil {
		return nil, err
	}

	e.doc.Pages = append(e.doc.Pages, document.Page{
		ID:       pageID,
		Children: children,
		Props:    page.Props.Public(),
	})
	return e.doc, nil
}

type visitState int

const (
	unvisited visitState = iota
	onPath
	done
)

type encoder struct {
	nodes  map[string]*editorgraph.Node
	opts   *options
	doc    *document.Document
	state  map[string]visitState
	parent map[string]string
}

// page locates the page node under root. In lenient mode a root that does
// not wrap exactly one existing page is used as the page itself.
func (e *encoder) page(rootID string, root *editorgraph.Node) (string, *editorgraph.Node, error) {
	if len(root.Nodes) != 1 {
		if e.opts.lenient {
			e.opts.logger.Debug("root used as page", "root", rootID, "children", len(root.Nodes))
			return rootID, root, nil
		}
		return "", nil, apperrors.Wrap(apperrors.ErrCodeCorruptGraph, ErrRootShape,
			"%q has %d children", rootID, len(root.Nodes))
	}
	pageID := root.Nodes[0]
	page, ok := e.nodes[pageID]
	if !ok || page == nil {
		if e.opts.lenient {
			e.opts.logger.Debug("page node missing, root used as page", "page", pageID)
			return rootID, root, nil
		}
		return "", nil, apperrors.Wrap(apperrors.ErrCodeCorruptGraph, ErrDanglingChild,
			"%q lists missing page %q", rootID, pageID)
	}
	if pageID == rootID {
		if err := e.fail(ErrCycle, "%q is its own page", rootID); err != nil {
			return "", nil, err
		}
		return rootID, root, nil
	}
	return pageID, page, nil
}

func (e *encoder) children(parentID string, n *editorgraph.Node) ([]string, error) {
	ids := n.ChildIDs()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		kept, err := e.visit(parentID, id)
		if err != nil {
			return nil, err
		}
		if kept {
			out = append(out, id)
		}
	}
	return out, nil
}

// visit emits the subtree at id. It reports false when the child was
// dropped, which only happens in lenient mode.
func (e *encoder) visit(parentID, id string) (bool, error) {
	n, ok := e.nodes[id]
	if !ok || n == nil {
		return false, e.fail(ErrDanglingChild, "%q lists missing child %q", parentID, id)
	}
	switch e.state[id] {
	case onPath:
		return false, e.fail(ErrCycle, "%q is its own ancestor (listed by %q)", id, parentID)
	case done:
		return false, e.fail(ErrSharedNode, "%q is listed by both %q and %q", id, e.parent[id], parentID)
	}

	name := n.Name()
	if name == "" {
		if err := e.fail(ErrEmptyType, "%q has no type", id); err != nil {
			return false, err
		}
		name = blocks.Container.Name
	}

	e.state[id] = onPath
	e.parent[id] = parentID
	children, err := e.children(id, n)
	if err != nil {
		return false, err
	}
	e.state[id] = done

	e.doc.Nodes[id] = document.Node{
		Type:     name,
		Props:    n.Props.Public(),
		Children: children,
		Hidden:   n.Hidden,
	}
	return true, nil
}

// fail returns a CORRUPT_GRAPH error in strict mode. In lenient mode the
// problem is logged and nil is returned so the caller drops the offending
// link.
func (e *encoder) fail(sentinel error, format string, args ...any) error {
	err := apperrors.Wrap(apperrors.ErrCodeCorruptGraph, sentinel, format, args...)
	if e.opts.lenient {
		e.opts.logger.Debug("repaired editor graph", "problem", err)
		return nil
	}
	return err
}
