package document_test

import (
	"fmt"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
)

func ExampleUnmarshal() {
	raw := `{
	  "version": 1,
	  "pages": [{"id": "p1", "children": ["c1"]}],
	  "nodes": {"c1": {"type": "Text", "props": {"text": "Hello"}, "children": []}}
	}`

	doc, err := document.Unmarshal([]byte(raw))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	page, _ := doc.Page(0)
	node, _ := doc.Node(page.Children[0])
	fmt.Println(page.ID, node.Type, node.Props.StringOr("text", ""))
	// Output: p1 Text Hello
}

func ExampleValidate() {
	doc := &document.Document{
		Version: document.Version,
		Pages:   []document.Page{{ID: "home", Children: []string{"hero", "gone"}}},
		Nodes: map[string]document.Node{
			"hero": {Type: "Section"},
		},
	}
	for _, p := range document.Problems(document.Validate(doc)) {
		fmt.Println(p)
	}
	// Output: INVALID_DOCUMENT: page 0 references missing node "gone"
}
