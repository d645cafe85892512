package serialize

import (
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/blocks"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/editorgraph"
	apperrors "github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
	"github.com/google/uuid"
)

// ToGraph rebuilds an editor graph from page pageIndex of doc: a ROOT node
// wrapping a Page node wrapping the page's children, recursively.
//
// Type tags resolve through the block registry; unknown tags become
// Container and are logged at debug level. Ids are kept unless they are
// empty, collide with ROOT or were already used, in which case a fresh id is
// generated. Dangling children are skipped and a node reached a second time
// is cut, so every returned graph has consistent parent/child links.
func ToGraph(doc *document.Document, pageIndex int, opts ...Option) (*editorgraph.Graph, error) {
	if doc == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidDocument, "nil document")
	}
	if err := document.CheckVersion(doc.Version); err != nil {
		return nil, err
	}
	page, ok := doc.Page(pageIndex)
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodePageNotFound, "page %d not found (document has %d)", pageIndex, len(doc.Pages))
	}

	d := &decoder{
		doc:     doc,
		opts:    newOptions(opts),
		g:       editorgraph.New(),
		used:    map[string]bool{editorgraph.RootID: true},
		visited: make(map[string]bool),
	}

	root := &editorgraph.Node{
		ID:          editorgraph.RootID,
		Type:        editorgraph.TypeRef{ResolvedName: blocks.Container.Name, Block: blocks.Container},
		IsCanvas:    true,
		DisplayName: blocks.Container.Name,
	}
	if err := d.g.Add(root); err != nil {
		return nil, err
	}

	pageID := d.assignID(page.ID)
	pageNode := &editorgraph.Node{
		ID:          pageID,
		Type:        editorgraph.TypeRef{ResolvedName: blocks.Page.Name, Block: blocks.Page},
		Props:       page.Props.Clone(),
		IsCanvas:    true,
		DisplayName: blocks.Page.Name,
	}
	if err := d.add(editorgraph.RootID, pageNode); err != nil {
		return nil, err
	}

	for _, id := range page.Children {
		if err := d.build(pageID, id); err != nil {
			return nil, err
		}
	}
	return d.g, nil
}

// maxIDAttempts bounds retries of a custom id generator that keeps returning
// used ids before falling back to UUIDs.
const maxIDAttempts = 16

type decoder struct {
	doc     *document.Document
	opts    *options
	g       *editorgraph.Graph
	used    map[string]bool // ids already present in g
	visited map[string]bool // document ids already expanded
}

func (d *decoder) build(parentID, docID string) error {
	n, ok := d.doc.Nodes[docID]
	if !ok {
		d.opts.logger.Debug("skipping missing child", "parent", parentID, "id", docID)
		return nil
	}
	if d.visited[docID] {
		d.opts.logger.Debug("skipping repeated node", "parent", parentID, "id", docID)
		return nil
	}
	d.visited[docID] = true

	spec, known := blocks.Resolve(n.Type)
	if !known {
		d.opts.logger.Debug("unknown block type, using Container", "id", docID, "type", n.Type)
	}

	props := n.Props.Clone()
	if props == nil {
		props = document.Props{}
	}
	id := d.assignID(docID)
	node := &editorgraph.Node{
		ID:          id,
		Type:        editorgraph.TypeRef{ResolvedName: spec.Name, Block: spec},
		Props:       props,
		IsCanvas:    spec.Canvas,
		Hidden:      n.Hidden,
		DisplayName: spec.Name,
	}
	if err := d.add(parentID, node); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := d.build(id, child); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) add(parentID string, n *editorgraph.Node) error {
	if err := d.g.Add(n); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "rebuild editor graph")
	}
	if err := d.g.Link(parentID, n.ID); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "rebuild editor graph")
	}
	return nil
}

func (d *decoder) assignID(id string) string {
	if d.opts.freshID == nil && id != "" && !d.used[id] {
		d.used[id] = true
		return id
	}
	gen := d.opts.freshID
	if gen == nil {
		gen = uuid.NewString
	}
	for attempt := 0; ; attempt++ {
		if attempt == maxIDAttempts {
			gen = uuid.NewString
		}
		fresh := gen()
		if fresh != "" && !d.used[fresh] {
			d.used[fresh] = true
			return fresh
		}
	}
}
