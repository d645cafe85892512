package page

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// maxCSSValueLen bounds a single CSS value taken from props.
const maxCSSValueLen = 128

var (
	cssValuePattern = regexp.MustCompile(`^[A-Za-z0-9#%.,()\s-]+$`)
	cssDenyPattern  = regexp.MustCompile(`(?i)(url|expression|image-set|var)\s*\(|javascript:`)
	plainNumber     = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// cssValue returns s when it is safe to place after "prop:" in a style
// attribute.
func cssValue(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxCSSValueLen {
		return "", false
	}
	if !cssValuePattern.MatchString(s) || cssDenyPattern.MatchString(s) {
		return "", false
	}
	return s, true
}

// cssLength converts a prop value to a CSS length. Bare numbers (float or
// numeric string) are pixels.
func cssLength(v any) (string, bool) {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64) + "px", true
	case int:
		return strconv.Itoa(n) + "px", true
	case string:
		s := strings.TrimSpace(n)
		if plainNumber.MatchString(s) {
			return s + "px", true
		}
		return cssValue(s)
	}
	return "", false
}

// cssString returns the prop value as a safe CSS keyword or color.
func cssString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return cssValue(s)
}

// declarations accumulates CSS declarations in insertion order.
type declarations []string

func (d *declarations) add(prop, value string) {
	if value != "" {
		*d = append(*d, prop+":"+value)
	}
}

func (d declarations) String() string {
	return strings.Join(d, ";")
}

// linkHref returns a safe href: http(s), root-relative, fragment, mailto or
// tel. Anything else is rejected.
func linkHref(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	switch {
	case raw == "":
		return "", false
	case strings.HasPrefix(raw, "#"):
		return raw, true
	case strings.HasPrefix(lower, "mailto:"), strings.HasPrefix(lower, "tel:"):
		return raw, true
	}
	return webURL(raw)
}

// imageSrc returns a safe image source: http(s), root-relative or a raster
// data URI. SVG data URIs are rejected since they can carry script.
func imageSrc(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "data:image/") {
		if strings.HasPrefix(lower, "data:image/svg") {
			return "", false
		}
		return raw, true
	}
	return webURL(raw)
}

func webURL(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return raw, true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return raw, true
}
