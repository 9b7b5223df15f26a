package events

import (
	"sort"
	"strings"
	"time"
)

// DefaultRecencyWindow is how far back an event may start and still be
// served.
const DefaultRecencyWindow = 7 * 24 * time.Hour

// Pipeline applies the organization filter, chronological sort, recency
// window and result limit to a listing's entries.
type Pipeline struct {
	keyword string
	window  time.Duration
}

// NewPipeline creates a pipeline matching the given organization keyword.
// A non-positive window falls back to DefaultRecencyWindow.
func NewPipeline(keyword string, window time.Duration) *Pipeline {
	if window <= 0 {
		window = DefaultRecencyWindow
	}
	return &Pipeline{
		keyword: strings.ToUpper(keyword),
		window:  window,
	}
}

// Canonicalize derives the filter/sort projection of an entry, resolving
// inline tags and tag_ids against the catalog. Unresolvable ids are dropped
// silently.
func Canonicalize(entry RawEntry, catalog TagCatalog) CanonicalEvent {
	ev := CanonicalEvent{
		Name:        entry.stringField("name"),
		Description: entry.stringField("description"),
		TagNames:    make(map[string]struct{}),
	}

	for _, v := range entry.listField("tags") {
		if name := tagName(v); name != "" {
			ev.TagNames[strings.ToUpper(name)] = struct{}{}
		}
	}
	for _, id := range entry.listField("tag_ids") {
		if name, ok := catalog.Resolve(id); ok {
			ev.TagNames[name] = struct{}{}
		}
	}

	if raw := entry.startRaw(); raw != "" {
		if ts, ok := parseStart(raw); ok {
			ev.Start = ts
			ev.StartValid = true
		}
	}
	return ev
}

// matches reports whether the event carries the organization keyword as a
// case-insensitive substring of any tag name, the event name, or the
// description.
func (p *Pipeline) matches(ev CanonicalEvent) bool {
	for tag := range ev.TagNames {
		if strings.Contains(tag, p.keyword) {
			return true
		}
	}
	if strings.Contains(strings.ToUpper(ev.Name), p.keyword) {
		return true
	}
	return strings.Contains(strings.ToUpper(ev.Description), p.keyword)
}

// Run returns the subsequence of entries matching the organization keyword
// and starting within the recency window, sorted ascending by start time.
// Entries come back exactly as received, never mutated. "now" is evaluated
// once by the caller so a single request filters against one cutoff. A
// non-positive limit means no limit.
func (p *Pipeline) Run(entries []RawEntry, catalog TagCatalog, now time.Time, limit int) []RawEntry {
	type scored struct {
		entry RawEntry
		ev    CanonicalEvent
	}

	kept := make([]scored, 0, len(entries))
	for _, entry := range entries {
		ev := Canonicalize(entry, catalog)
		if p.matches(ev) {
			kept = append(kept, scored{entry: entry, ev: ev})
		}
	}

	// Entries with unparseable start times sort after every parseable one,
	// keep their input order among themselves, and fail the recency check
	// below. That makes their handling deterministic.
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i].ev, kept[j].ev
		if a.StartValid != b.StartValid {
			return a.StartValid
		}
		if !a.StartValid {
			return false
		}
		return a.Start.Before(b.Start)
	})

	cutoff := now.Add(-p.window)
	out := make([]RawEntry, 0, len(kept))
	for _, s := range kept {
		if !s.ev.StartValid || s.ev.Start.Before(cutoff) {
			continue
		}
		out = append(out, s.entry)
	}

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
