package serialize

import (
	"maps"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/editorgraph"
	apperrors "github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

// ReplacePage serializes g (strictly) and stores it as page index of a copy
// of doc. Passing index == len(doc.Pages) appends a new page.
//
// Nodes only reachable from the old page are dropped; other pages and
// orphaned nodes are kept. A node id in g that already belongs to another
// page is a CORRUPT_GRAPH error, since two pages may not share a node.
func ReplacePage(doc *document.Document, index int, g *editorgraph.Graph, opts ...Option) (*document.Document, error) {
	if doc == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidDocument, "nil document")
	}
	if err := document.CheckVersion(doc.Version); err != nil {
		return nil, err
	}
	if index < 0 || index > len(doc.Pages) {
		return nil, apperrors.New(apperrors.ErrCodePageNotFound, "page %d not found (document has %d)", index, len(doc.Pages))
	}

	fresh, err := FromGraph(g, opts...)
	if err != nil {
		return nil, err
	}

	out := doc.Clone()
	keep := make(map[string]bool)
	for i := range out.Pages {
		if i != index {
			maps.Copy(keep, out.Reachable(i))
		}
	}
	if index < len(out.Pages) {
		for id := range out.Reachable(index) {
			if !keep[id] {
				delete(out.Nodes, id)
			}
		}
	}

	for id, n := range fresh.Nodes {
		if keep[id] {
			return nil, apperrors.Wrap(apperrors.ErrCodeCorruptGraph, ErrSharedNode, "node %q already belongs to another page", id)
		}
		out.Nodes[id] = n
	}

	if index == len(out.Pages) {
		out.Pages = append(out.Pages, fresh.Pages[0])
	} else {
		out.Pages[index] = fresh.Pages[0]
	}
	return out, nil
}
