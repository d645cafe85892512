package serialize

import (
	"bytes"
	"encoding/json"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/editorgraph"
	apperrors "github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

// Shape is the detected layout of stored content.
type Shape int

const (
	// ShapeUnknown is anything that is neither a document nor an editor graph.
	ShapeUnknown Shape = iota
	// ShapeDocument has a version/pages/nodes triple.
	ShapeDocument
	// ShapeEditorGraph is a raw editor state keyed by node id with a ROOT entry.
	ShapeEditorGraph
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeDocument:
		return "document"
	case ShapeEditorGraph:
		return "editor-graph"
	default:
		return "unknown"
	}
}

// maxEncodingDepth bounds how many times content may be JSON-encoded as a
// string inside itself.
const maxEncodingDepth = 3

// Detect sniffs the shape of JSON content. String-encoded content is
// unwrapped first.
func Detect(data []byte) Shape {
	data, err := unwrapString(data)
	if err != nil {
		return ShapeUnknown
	}
	var top map[string]json.RawMessage
	if json.Unmarshal(data, &top) != nil {
		return ShapeUnknown
	}
	return shapeOf(top)
}

// Normalize turns stored content into a document.
//
// content may be a *document.Document, a document.Document, an
// *editorgraph.Graph, raw JSON ([]byte, json.RawMessage or string, possibly
// JSON-encoded again as a string) or an already decoded map. Documents are
// version-checked; raw editor graphs are serialized in lenient mode.
//
// Errors carry INVALID_FORMAT, EMPTY_CONTENT or UNSUPPORTED_VERSION codes; see
// errors.IsUnusableContent.
func Normalize(content any, opts ...Option) (*document.Document, error) {
	switch v := content.(type) {
	case nil:
		return nil, apperrors.New(apperrors.ErrCodeEmptyContent, "no content")
	case *document.Document:
		if v == nil {
			return nil, apperrors.New(apperrors.ErrCodeEmptyContent, "no content")
		}
		if err := document.CheckVersion(v.Version); err != nil {
			return nil, err
		}
		return v, nil
	case document.Document:
		return Normalize(&v, opts...)
	case *editorgraph.Graph:
		return fromRawGraph(v, opts)
	case json.RawMessage:
		return normalizeJSON(v, opts)
	case []byte:
		return normalizeJSON(v, opts)
	case string:
		return normalizeJSON([]byte(v), opts)
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "re-encode content")
		}
		return normalizeJSON(data, opts)
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "unsupported content type %T", content)
	}
}

func normalizeJSON(data []byte, opts []Option) (*document.Document, error) {
	data, err := unwrapString(data)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || data[0] != '{' {
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "content is not a JSON object")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode content")
	}
	if len(top) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeEmptyContent, "content is an empty object")
	}

	switch shapeOf(top) {
	case ShapeEditorGraph:
		g, err := editorgraph.FromRaw(top)
		if err != nil {
			return nil, err
		}
		return fromRawGraph(g, opts)
	case ShapeDocument:
		return document.Unmarshal(data)
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "content is neither a document nor an editor graph")
	}
}

func fromRawGraph(g *editorgraph.Graph, opts []Option) (*document.Document, error) {
	doc, err := FromGraph(g, append(opts[:len(opts):len(opts)], Lenient())...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "normalize editor graph")
	}
	return doc, nil
}

// unwrapString strips up to maxEncodingDepth layers of JSON string encoding
// and surrounding whitespace.
func unwrapString(data []byte) ([]byte, error) {
	for depth := 0; ; depth++ {
		data = bytes.TrimSpace(data)
		if len(data) == 0 || bytes.Equal(data, []byte("null")) {
			return nil, apperrors.New(apperrors.ErrCodeEmptyContent, "no content")
		}
		if data[0] != '"' {
			return data, nil
		}
		if depth == maxEncodingDepth {
			return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "content is encoded too many times")
		}
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode string content")
		}
		data = []byte(s)
	}
}

func shapeOf(top map[string]json.RawMessage) Shape {
	if _, ok := top[editorgraph.RootID]; ok {
		return ShapeEditorGraph
	}
	for _, key := range []string{"version", "pages", "nodes"} {
		if _, ok := top[key]; ok {
			return ShapeDocument
		}
	}
	return ShapeUnknown
}
