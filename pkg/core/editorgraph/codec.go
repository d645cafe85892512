package editorgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

// rawNode mirrors one entry of the editor's JSON state.
type rawNode struct {
	Type        json.RawMessage   `json:"type"`
	IsCanvas    bool              `json:"isCanvas"`
	Props       document.Props    `json:"props"`
	DisplayName string            `json:"displayName"`
	Custom      map[string]any    `json:"custom"`
	Hidden      bool              `json:"hidden"`
	Nodes       []string          `json:"nodes"`
	LinkedNodes map[string]string `json:"linkedNodes"`
	Parent      *string           `json:"parent"`
}

type rawType struct {
	ResolvedName string `json:"resolvedName"`
}

// Parse decodes the editor's JSON state into a Graph. The type of each node
// may be an object with a resolvedName or a bare string. Null entries are
// skipped. Parse does not check structure; that is the serializer's job.
func Parse(data []byte) (*Graph, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode editor graph")
	}
	return FromRaw(entries)
}

// FromRaw builds a Graph from already split JSON entries keyed by node id.
func FromRaw(entries map[string]json.RawMessage) (*Graph, error) {
	g := New()
	for id, raw := range entries {
		if isNull(raw) {
			continue
		}
		var rn rawNode
		if err := json.Unmarshal(raw, &rn); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode editor node %q", id)
		}
		name, err := decodeTypeName(rn.Type)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode type of editor node %q", id)
		}
		n := &Node{
			ID:          id,
			Type:        RefFor(name),
			Props:       rn.Props,
			Nodes:       rn.Nodes,
			LinkedNodes: rn.LinkedNodes,
			IsCanvas:    rn.IsCanvas,
			Hidden:      rn.Hidden,
			DisplayName: rn.DisplayName,
			Custom:      rn.Custom,
		}
		if rn.Parent != nil {
			n.Parent = *rn.Parent
		}
		if err := g.Add(n); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "add editor node")
		}
	}
	return g, nil
}

// Marshal encodes a Graph in the editor's JSON shape. Output is compact and
// deterministic.
func Marshal(g *Graph) ([]byte, error) {
	return json.Marshal(toRaw(g))
}

// Write encodes a Graph as indented JSON.
func Write(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toRaw(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

type rawOut struct {
	Type        rawType           `json:"type"`
	IsCanvas    bool              `json:"isCanvas"`
	Props       document.Props    `json:"props"`
	DisplayName string            `json:"displayName"`
	Custom      map[string]any    `json:"custom"`
	Hidden      bool              `json:"hidden"`
	Nodes       []string          `json:"nodes"`
	LinkedNodes map[string]string `json:"linkedNodes"`
	Parent      *string           `json:"parent"`
}

func toRaw(g *Graph) map[string]rawOut {
	out := make(map[string]rawOut, g.Len())
	for id, n := range g.nodes {
		r := rawOut{
			Type:        rawType{ResolvedName: n.Type.ResolvedName},
			IsCanvas:    n.IsCanvas,
			Props:       orEmpty(n.Props),
			DisplayName: n.DisplayName,
			Custom:      n.Custom,
			Hidden:      n.Hidden,
			Nodes:       n.Nodes,
			LinkedNodes: n.LinkedNodes,
		}
		if r.Custom == nil {
			r.Custom = map[string]any{}
		}
		if r.Nodes == nil {
			r.Nodes = []string{}
		}
		if r.LinkedNodes == nil {
			r.LinkedNodes = map[string]string{}
		}
		if n.Parent != "" {
			parent := n.Parent
			r.Parent = &parent
		}
		out[id] = r
	}
	return out
}

func orEmpty(p document.Props) document.Props {
	if p == nil {
		return document.Props{}
	}
	return p
}

func decodeTypeName(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case '{':
		var t rawType
		err := json.Unmarshal(raw, &t)
		return t.ResolvedName, err
	default:
		return "", fmt.Errorf("unexpected type value %s", raw)
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
