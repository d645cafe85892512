// Package serialize converts between the live editor graph and the portable
// document format.
//
// # Directions
//
// [ToDocument] (and its convenience form [FromGraph]) walks an editor graph
// from its ROOT sentinel and produces a [document.Document]. It runs once per
// explicit save, and because a bad save corrupts a customer's site it is
// strict by default: a missing ROOT, a ROOT without exactly one child, a
// dangling child id, a cycle, a node with two parents or a node without a type
// name all fail with a CORRUPT_GRAPH error. Nothing partial is returned.
//
// [ToGraph] rebuilds a graph the editor can hydrate from one page of a
// document. Unknown type tags resolve to the generic Container block so that
// documents authored by newer editors still open.
//
// [Normalize] accepts stored content in any of the shapes found in the wild
// (a document, a raw editor graph, either one JSON-encoded as a string) and
// returns a document. Raw graphs go through the serializer in lenient mode.
//
// [ReplacePage] writes an edited page back into a multi-page document.
//
// # Bookkeeping
//
// Props keys starting with "__" are editor bookkeeping and are dropped on the
// way to a document. The editor's hidden flag is carried on the document node
// itself, never in props, so renderers can skip hidden blocks and a user prop
// of the same name is left alone.
package serialize
