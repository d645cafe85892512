// Package page renders one page of a document as HTML.
//
// The same renderer serves the public storefront and the editor's embedded
// canvas. It walks the page's children depth-first and dispatches every node
// through a closed lookup table keyed by type tag. Each rule decodes the few
// props it understands into a typed struct (see [BoxStyle], [TextProps],
// [ImageProps], [ButtonProps]) and ignores the rest. Tags without a rule render
// as a neutral block so nothing disappears from the tree.
//
// # Failure policy
//
// Storefront output must never fail on bad data. Missing children are skipped
// without a placeholder, a node reached twice (shared or cyclic) is rendered
// only the first time, and recursion stops at [DefaultMaxDepth]. Only a nil
// document, an unsupported version or a page index out of range is an error.
//
// # Safety
//
// Prop values end up in attributes and markup. CSS values are restricted to a
// conservative character set, URLs must be http(s), root-relative, anchors or
// (for images) raster data URIs, and rich text is cleaned with a bluemonday
// UGC policy before it is parsed into the tree.
//
// # Determinism
//
// Rendering is pure: attributes and style declarations are emitted in a fixed
// order, so identical input gives byte-identical output. That is what makes
// the rendered HTML cacheable by content hash.
package page
