// Package document defines the portable, storage-safe page format.
//
// A [Document] is what gets persisted for a project: an ordered list of
// [Page] records and a flat map of [Node] records keyed by node id. It is the
// only representation that ever leaves the editor session; the live editor
// graph (package editorgraph) is always round-tripped through it.
//
// # Format
//
//	{
//	  "version": 1,
//	  "pages": [{"id": "p1", "children": ["c1"], "props": {}}],
//	  "nodes": {
//	    "c1": {"type": "Text", "props": {"text": "Hello"}, "children": []}
//	  }
//	}
//
// Node types are an open set of string tags. Readers that do not know a tag
// treat the node as a generic container. Props are an opaque key/value bag;
// [Props] offers typed accessors for the keys a consumer understands.
//
// # Versioning
//
// [Version] is the only revision this package reads. [Unmarshal] and
// [Read] reject any other value with an UNSUPPORTED_VERSION error instead of
// guessing at the layout.
//
// # Invariants
//
// Node ids are unique (the map enforces it). The graph reachable from a page
// must be a tree: no node is the child of two parents and no node is its own
// ancestor. [Validate] reports every violation; renderers tolerate them by
// skipping repeated nodes. Orphaned nodes are legal and simply unrendered.
package document
