package document

import (
	"encoding/json"
	"strconv"
	"strings"
)

// InternalPrefix marks editor bookkeeping keys inside props. Keys with this
// prefix never reach a stored document.
const InternalPrefix = "__"

// Props is the presentation attribute bag of a node or page.
//
// Values come straight from JSON, so numbers are float64, lists are []any and
// nested objects are map[string]any. The typed accessors below are lenient
// about representation (a number stored as "12" still reads as 12) because
// props are authored by many versions of the editor.
type Props map[string]any

// IsInternalKey reports whether key is editor bookkeeping.
func IsInternalKey(key string) bool {
	return strings.HasPrefix(key, InternalPrefix)
}

// Has reports whether key is present with a non-nil value.
func (p Props) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// String returns the value of key when it is a non-empty string.
func (p Props) String(key string) (string, bool) {
	s, ok := p[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// StringOr returns the string value of key or def.
func (p Props) StringOr(key, def string) string {
	if s, ok := p.String(key); ok {
		return s
	}
	return def
}

// Float returns the numeric value of key. Integers, json.Number and numeric
// strings (optionally suffixed with "px") are accepted.
func (p Props) Float(key string) (float64, bool) {
	return toFloat(p[key])
}

// Bool returns the boolean value of key. The strings "true" and "false"
// are accepted.
func (p Props) Bool(key string) (bool, bool) {
	switch v := p[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	}
	return false, false
}

// Map returns the nested object stored under key.
func (p Props) Map(key string) (map[string]any, bool) {
	m, ok := p[key].(map[string]any)
	return m, ok
}

// Public returns a copy without internal bookkeeping keys.
// Returns nil if nothing remains.
func (p Props) Public() Props {
	var out Props
	for k, v := range p {
		if IsInternalKey(k) {
			continue
		}
		if out == nil {
			out = make(Props, len(p))
		}
		out[k] = cloneValue(v)
	}
	return out
}

// Clone returns a deep copy of the props. A nil bag stays nil.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	case Props:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return v
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(n), "px")
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}
