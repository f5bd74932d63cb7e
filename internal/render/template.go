package render

import (
	"fmt"
	"strings"
)

// Substitute replaces {{key}} tokens in template with the string coercion of
// data[key]. Whitespace around the key is trimmed; absent keys collapse to
// the empty string. No recursive substitution and no HTML escaping: template
// authors are trusted. Never errors.
func Substitute(template string, data map[string]any) string {
	var b strings.Builder
	b.Grow(len(template))

	for {
		start := strings.Index(template, "{{")
		if start < 0 {
			b.WriteString(template)
			return b.String()
		}
		end := strings.Index(template[start+2:], "}}")
		if end < 0 {
			b.WriteString(template)
			return b.String()
		}

		b.WriteString(template[:start])
		key := strings.TrimSpace(template[start+2 : start+2+end])
		if val, ok := data[key]; ok && val != nil {
			b.WriteString(coerce(val))
		}
		template = template[start+2+end+2:]
	}
}

// coerce renders a scalar the way clients expect it back: numbers without a
// trailing ".0" when they are whole, everything else via fmt.
func coerce(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case float32:
		return coerce(float64(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}
