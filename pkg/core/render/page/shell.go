package page

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BaseCSS is the stylesheet the document shell embeds. Blocks carry their
// own inline styles; this only sets neutral defaults for the block classes.
const BaseCSS = `*,*::before,*::after{box-sizing:border-box}
body{margin:0;font-family:system-ui,-apple-system,"Segoe UI",Roboto,sans-serif;line-height:1.5;color:#111827}
.site-page{display:flex;flex-direction:column;min-height:100vh}
.block{position:relative}
.block-section{width:100%;padding:48px 24px}
.block-row{display:flex;flex-direction:row}
.block-column{display:flex;flex-direction:column;flex:1 1 0}
.block-text{margin:0}
.block-image{display:block;max-width:100%;height:auto}
.block-image--empty{min-height:120px;background:#e5e7eb}
.block-button{display:inline-block;padding:10px 20px;border-radius:6px;text-decoration:none;font-weight:600}
.block-button--primary{background:#111827;color:#fff}
.block-button--secondary{background:#e5e7eb;color:#111827}
.block-button--outline{border:1px solid currentColor;color:inherit}
.block-button--link{padding:0;text-decoration:underline;color:inherit}
.block-divider{border:0;border-top:1px solid #e5e7eb;width:100%}
.block-hero{display:flex;flex-direction:column;align-items:center;gap:16px;padding:96px 24px;text-align:center}
.block-navbar{align-items:center;justify-content:space-between;padding:16px 24px}
.block-navbar__links{display:flex;gap:16px;list-style:none;margin:0;padding:0}
.block-footer{padding:32px 24px;font-size:14px}
.block-feature-grid{padding:48px 24px}
.site-page--embedded .block:hover{outline:1px dashed #6366f1}
`

// shell wraps body content in <!DOCTYPE html><html><head>...</head><body>.
func shell(title string, content *html.Node) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, attr("lang", "en"))
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	head.AppendChild(element(atom.Meta, attr("name", "viewport"), attr("content", "width=device-width, initial-scale=1")))
	head.AppendChild(withText(element(atom.Title), title))
	head.AppendChild(withText(element(atom.Style), BaseCSS))
	root.AppendChild(head)

	body := element(atom.Body)
	body.AppendChild(content)
	root.AppendChild(body)
	return doc
}
