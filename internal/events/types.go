package events

import "time"

// RawEntry is one record from the upstream listing. Luma emits two shapes,
// either the event object itself or a wrapper holding it under "event". The
// entry is kept as a raw map so the response can echo every upstream field
// untouched.
type RawEntry map[string]any

// CanonicalEvent is the read-only projection of a RawEntry used for filter
// and sort decisions. It is derived once per request and never written back
// to the entry.
type CanonicalEvent struct {
	Name        string
	Description string
	Start       time.Time
	StartValid  bool
	TagNames    map[string]struct{} // uppercased
}

// payload resolves the dual shape: the nested event object when present,
// otherwise the entry itself.
func (e RawEntry) payload() map[string]any {
	if ev, ok := e["event"].(map[string]any); ok {
		return ev
	}
	return e
}

// stringField reads a string attribute off the resolved event object.
// Missing or non-string values read as empty.
func (e RawEntry) stringField(key string) string {
	if s, ok := e.payload()[key].(string); ok {
		return s
	}
	return ""
}

// listField reads a list attribute, preferring the resolved event object and
// falling back to the outer entry. Upstream is inconsistent about where tags
// and tag_ids live.
func (e RawEntry) listField(key string) []any {
	if v, ok := e.payload()[key].([]any); ok {
		return v
	}
	if v, ok := e[key].([]any); ok {
		return v
	}
	return nil
}

// startRaw returns the raw start timestamp, start_at winning over start_time.
func (e RawEntry) startRaw() string {
	if s := e.stringField("start_at"); s != "" {
		return s
	}
	return e.stringField("start_time")
}

var startLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseStart parses an upstream start timestamp. Luma normally emits
// RFC 3339, the remaining layouts cover the variants seen in older
// calendars.
func parseStart(raw string) (time.Time, bool) {
	for _, layout := range startLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
