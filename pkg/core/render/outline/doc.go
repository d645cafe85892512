// Package outline draws the block tree of a page as a Graphviz diagram.
//
// The diagram is meant for debugging documents rather than for end users:
// it shows every reference a page makes, including the ones the renderers
// quietly skip.
//
//	dot, _ := outline.ToDOT(doc, 0, outline.Options{Detailed: true})
//	svg, _ := outline.RenderSVG(dot)
//
// Node styles:
//
//   - the page is a filled ellipse
//   - known blocks are rounded boxes
//   - unknown block types are dashed boxes
//   - hidden blocks are greyed out
//   - references to missing nodes point at a red "missing" node
//   - a reference to a node already drawn (a shared node or a cycle) is an
//     orange dashed edge
package outline
