// Package pkg holds the libraries behind the sitebuilder document engine.
//
// # Overview
//
// A visual page builder keeps a live editor graph of blocks. The engine turns
// that graph into a portable Document, stores it, and renders it back out as
// a public page, an editor canvas or a small dashboard thumbnail.
//
//  1. [core/document] - the Document format and its validator
//  2. [core/blocks] - the table of known block types
//  3. [core/editorgraph] - the editor's live graph and its raw JSON codec
//  4. [core/serialize] - editor graph to Document and back, plus content sniffing
//  5. [core/render] - page HTML, thumbnails and outline diagrams
//  6. [storage] - the draft store contract and its backends
//  7. [pipeline] - load, render and save with caching
//  8. [server] - the HTTP API
//
// # Architecture
//
//	Editor graph
//	     ↓  serialize.FromGraph (strict)
//	  Document  →  storage.Store
//	     ↓  serialize.Normalize
//	page.Render / thumbnail.Build / outline.ToDOT
//	     ↓
//	HTML, SVG, PNG, JSON
//
// Reopening a draft goes the other way with serialize.ToGraph.
//
// # Quick Start
//
//	doc, err := serialize.FromGraph(graph)
//	if err != nil {
//	    return err // CORRUPT_GRAPH: never persisted
//	}
//	html, err := page.Render(doc, 0, page.WithDocumentShell("Shop"))
//
//	preview := thumbnail.Build(storedContent)
//	svg := thumbnail.RenderSVG(preview)
package pkg
