package events

import (
	"math"
	"strconv"
	"strings"
)

// TagCatalog maps a tag identifier to its display name as supplied by the
// upstream tag list. Names keep their original case; comparisons uppercase
// at lookup time. Built fresh per request, never shared across requests.
type TagCatalog map[string]string

// BuildTagCatalog builds the identifier -> name mapping from the upstream
// tag list. Entries without a usable identifier or a non-empty name are
// skipped silently, matching upstream leniency.
func BuildTagCatalog(raw []any) TagCatalog {
	catalog := make(TagCatalog, len(raw))
	for _, v := range raw {
		ident := tagIdent(v)
		name := tagName(v)
		if ident == "" || name == "" {
			continue
		}
		catalog[ident] = name
	}
	return catalog
}

// Resolve looks up a tag id and returns the uppercased display name.
func (c TagCatalog) Resolve(id any) (string, bool) {
	name, ok := c[identString(id)]
	if !ok {
		return "", false
	}
	return strings.ToUpper(name), true
}

// tagName normalizes one tag value to a display name: strings are taken
// verbatim, objects contribute their "name" field, anything else is empty.
func tagName(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if s, ok := t["name"].(string); ok {
			return s
		}
	}
	return ""
}

// tagIdent extracts the identifier of a catalog tag, api_id winning over id.
func tagIdent(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	if s := identString(m["api_id"]); s != "" {
		return s
	}
	return identString(m["id"])
}

// identString renders an identifier value as its lookup key. JSON numbers
// decode as float64; integral values render without an exponent so catalog
// keys and tag_ids agree on the same representation.
func identString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}
