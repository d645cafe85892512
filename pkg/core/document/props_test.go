package document

import (
	"encoding/json"
	"testing"
)

func TestPropsAccessors(t *testing.T) {
	p := Props{
		"text":    "Hello",
		"empty":   "",
		"size":    float64(16),
		"padding": "12px",
		"count":   json.Number("3"),
		"int":     7,
		"flag":    true,
		"strflag": "false",
		"style":   map[string]any{"color": "red"},
		"null":    nil,
	}

	if s, ok := p.String("text"); !ok || s != "Hello" {
		t.Errorf("String(text) = %q, %v", s, ok)
	}
	if _, ok := p.String("empty"); ok {
		t.Error("String(empty) should be absent")
	}
	if got := p.StringOr("missing", "def"); got != "def" {
		t.Errorf("StringOr() = %q", got)
	}

	floats := []struct {
		key  string
		want float64
	}{
		{"size", 16}, {"padding", 12}, {"count", 3}, {"int", 7},
	}
	for _, f := range floats {
		if got, ok := p.Float(f.key); !ok || got != f.want {
			t.Errorf("Float(%s) = %v, %v; want %v", f.key, got, ok, f.want)
		}
	}
	if _, ok := p.Float("text"); ok {
		t.Error("Float(text) should fail")
	}

	if b, ok := p.Bool("flag"); !ok || !b {
		t.Errorf("Bool(flag) = %v, %v", b, ok)
	}
	if b, ok := p.Bool("strflag"); !ok || b {
		t.Errorf("Bool(strflag) = %v, %v", b, ok)
	}
	if m, ok := p.Map("style"); !ok || m["color"] != "red" {
		t.Errorf("Map(style) = %v, %v", m, ok)
	}
	if p.Has("null") {
		t.Error("Has(null) = true, want false")
	}
}

func TestPublic(t *testing.T) {
	tests := []struct {
		name  string
		props Props
		want  int
	}{
		{"nil", nil, -1},
		{"only internal", Props{"__hover": true}, -1},
		{"mixed", Props{"__hover": true, "text": "a", "_single": 1}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.props.Public()
			if tt.want < 0 {
				if got != nil {
					t.Errorf("Public() = %v, want nil", got)
				}
				return
			}
			if len(got) != tt.want {
				t.Errorf("Public() = %v, want %d keys", got, tt.want)
			}
			for k := range got {
				if IsInternalKey(k) {
					t.Errorf("Public() kept internal key %q", k)
				}
			}
		})
	}
}
