package thumbnail_test

import (
	"fmt"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/render/thumbnail"
)

func ExampleBuild() {
	p := thumbnail.Build(`{
		"version": 1,
		"pages": [{"id": "home", "children": ["hero", "cta"]}],
		"nodes": {
			"hero": {"type": "Text", "props": {"text": "Summer collection is here"}, "children": []},
			"cta":  {"type": "Button", "props": {"label": "Shop"}, "children": []}
		}
	}`)
	for _, it := range p.Items {
		fmt.Println(it.Kind, it.Text)
	}
	// Output:
	// text Summer collection is here
	// button Shop
}

func ExampleBuild_placeholder() {
	p := thumbnail.Build("{oops")
	fmt.Println(p.Placeholder, p.Reason)
	// Output: true unreadable
}
