// Package thumbnail builds small, approximate page previews for dashboard
// cards.
//
// # Overview
//
// [Build] accepts whatever a storage backend hands back: a parsed
// [document.Document], a raw editor graph, a JSON string (possibly encoded
// more than once), bytes or a decoded map. The shape is detected by
// [serialize.Normalize]. The result is a [Preview], a bounded tree of
// [Item] values that is cheap to draw:
//
//   - at most [Limits].MaxTopLevel top-level items (default 16)
//   - at most [Limits].MaxChildren children per item (default 8)
//   - at most [Limits].MaxDepth levels (default 2)
//   - text collapsed to one line of [Limits].TextLimit runes
//   - images collapsed to a flat color swatch, buttons to a pill
//
// Build never returns an error. Unreadable input, unsupported versions, a
// missing page or a page with nothing to show produce a placeholder preview
// whose Reason says why.
//
// # Output
//
// [RenderSVG] draws a preview as a fixed-size SVG using nested boxes, and
// [RenderJSON] encodes it for clients that draw their own cards. PNG output
// goes through render.ToPNG.
//
// Build and the sinks are pure functions; any number of previews may be built
// concurrently.
package thumbnail
