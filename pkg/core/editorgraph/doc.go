// Package editorgraph models the live editor's component graph.
//
// The editor keeps its state as a flat map from node id to record. Every
// record knows its ordered children and its parent, and carries a type
// reference the editor can resolve to component behavior. A reserved
// [RootID] node sits on top; its single child is the active Page node.
//
// This package holds that model ([Graph], [Node], [TypeRef]) and the codec for
// the JSON shape the editor emits and hydrates ([Parse], [Marshal]):
//
//	{
//	  "ROOT":  {"type": {"resolvedName": "Container"}, "nodes": ["page1"], "parent": null},
//	  "page1": {"type": {"resolvedName": "Page"}, "nodes": ["n1"], "parent": "ROOT"},
//	  "n1":    {"type": {"resolvedName": "Container"}, "props": {}, "nodes": [], "parent": "page1"}
//	}
//
// The graph is never persisted directly. Package serialize converts it to and
// from a [document.Document], and is where structural corruption is rejected.
package editorgraph
