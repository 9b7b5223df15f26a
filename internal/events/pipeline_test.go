package events

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func entriesFrom(t *testing.T, raw string) []RawEntry {
	t.Helper()
	var entries []RawEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	return entries
}

func upcoming(d time.Duration) string {
	return testNow.Add(d).Format(time.RFC3339)
}

func TestPipeline_KeywordMatching(t *testing.T) {
	p := NewPipeline("CAISH", 0)

	tests := []struct {
		name string
		raw  string
		kept bool
	}{
		{
			name: "inline tag substring match, mixed case",
			raw:  `{"name":"Weekly meetup","tags":["caish-meetup"],"start_at":"%s"}`,
			kept: true,
		},
		{
			name: "tag prefix of keyword does not match",
			raw:  `{"name":"Other meetup","tags":["CAI"],"start_at":"%s"}`,
			kept: false,
		},
		{
			name: "keyword in event name",
			raw:  `{"name":"CAISH socials","start_at":"%s"}`,
			kept: true,
		},
		{
			name: "keyword in description",
			raw:  `{"name":"Dinner","description":"Hosted by the caish team","start_at":"%s"}`,
			kept: true,
		},
		{
			name: "keyword as substring of a longer tag",
			raw:  `{"name":"Town hall","tags":[{"name":"CAISHTOWN"}],"start_at":"%s"}`,
			kept: true,
		},
		{
			name: "no signal at all",
			raw:  `{"name":"Chess night","description":"Bring a board","start_at":"%s"}`,
			kept: false,
		},
		{
			name: "missing name, description and tags",
			raw:  `{"start_at":"%s"}`,
			kept: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := entriesFrom(t, fmt.Sprintf("["+tt.raw+"]", upcoming(24*time.Hour)))
			out := p.Run(entries, TagCatalog{}, testNow, 0)
			if tt.kept {
				assert.Len(t, out, 1)
			} else {
				assert.Empty(t, out)
			}
		})
	}
}

func TestPipeline_ShapeResolution(t *testing.T) {
	// Wrapped and flat entries with equivalent data must derive identical
	// projections.
	flat := entriesFrom(t, fmt.Sprintf(
		`[{"name":"CAISH talk","description":"AI safety","start_at":"%s","tags":["caish"]}]`,
		upcoming(time.Hour)))
	wrapped := entriesFrom(t, fmt.Sprintf(
		`[{"api_id":"evt-1","event":{"name":"CAISH talk","description":"AI safety","start_at":"%s","tags":["caish"]}}]`,
		upcoming(time.Hour)))

	a := Canonicalize(flat[0], TagCatalog{})
	b := Canonicalize(wrapped[0], TagCatalog{})

	assert.Equal(t, a.Name, b.Name)
	assert.Equal(t, a.Description, b.Description)
	assert.Equal(t, a.Start, b.Start)
	assert.Equal(t, a.TagNames, b.TagNames)
}

func TestPipeline_TagsFallBackToOuterEntry(t *testing.T) {
	// tag_ids living on the wrapper instead of the nested event still count.
	entries := entriesFrom(t, fmt.Sprintf(
		`[{"tag_ids":[5],"event":{"name":"Dinner","start_at":"%s"}}]`,
		upcoming(time.Hour)))

	p := NewPipeline("CAISH", 0)
	out := p.Run(entries, TagCatalog{"5": "CAISH Socials"}, testNow, 0)
	assert.Len(t, out, 1)
}

func TestPipeline_TagIDResolution(t *testing.T) {
	p := NewPipeline("CAISH", 0)
	catalog := TagCatalog{"5": "CAISH Socials"}

	resolved := entriesFrom(t, fmt.Sprintf(
		`[{"name":"Dinner","tag_ids":[5],"start_at":"%s"}]`, upcoming(time.Hour)))
	assert.Len(t, p.Run(resolved, catalog, testNow, 0), 1)

	unresolved := entriesFrom(t, fmt.Sprintf(
		`[{"name":"Dinner","tag_ids":[99],"start_at":"%s"}]`, upcoming(time.Hour)))
	assert.Empty(t, p.Run(unresolved, catalog, testNow, 0))
}

func TestPipeline_SortOrder(t *testing.T) {
	t1 := upcoming(48 * time.Hour)
	t2 := upcoming(24 * time.Hour)
	t3 := upcoming(72 * time.Hour)

	// Submitted as T1, T3, T2; expected ascending T2, T1, T3.
	entries := entriesFrom(t, fmt.Sprintf(`[
		{"name":"CAISH one","start_at":"%s"},
		{"name":"CAISH three","start_at":"%s"},
		{"name":"CAISH two","start_at":"%s"}
	]`, t1, t3, t2))

	p := NewPipeline("CAISH", 0)
	out := p.Run(entries, TagCatalog{}, testNow, 0)

	require.Len(t, out, 3)
	assert.Equal(t, "CAISH two", out[0]["name"])
	assert.Equal(t, "CAISH one", out[1]["name"])
	assert.Equal(t, "CAISH three", out[2]["name"])
}

func TestPipeline_RecencyWindow(t *testing.T) {
	sixDaysAgo := upcoming(-6 * 24 * time.Hour)
	eightDaysAgo := upcoming(-8 * 24 * time.Hour)

	entries := entriesFrom(t, fmt.Sprintf(`[
		{"name":"CAISH recent","start_at":"%s"},
		{"name":"CAISH stale","start_at":"%s"}
	]`, sixDaysAgo, eightDaysAgo))

	p := NewPipeline("CAISH", 0)
	out := p.Run(entries, TagCatalog{}, testNow, 0)

	require.Len(t, out, 1)
	assert.Equal(t, "CAISH recent", out[0]["name"])
}

func TestPipeline_StartTimeFallback(t *testing.T) {
	// start_time is honored when start_at is absent.
	entries := entriesFrom(t, fmt.Sprintf(
		`[{"name":"CAISH legacy","start_time":"%s"}]`, upcoming(time.Hour)))

	p := NewPipeline("CAISH", 0)
	assert.Len(t, p.Run(entries, TagCatalog{}, testNow, 0), 1)
}

func TestPipeline_Limit(t *testing.T) {
	var raws string
	for i := 0; i < 5; i++ {
		if i > 0 {
			raws += ","
		}
		raws += fmt.Sprintf(`{"name":"CAISH %d","start_at":"%s"}`, i, upcoming(time.Duration(i+1)*time.Hour))
	}
	entries := entriesFrom(t, "["+raws+"]")
	p := NewPipeline("CAISH", 0)

	limited := p.Run(entries, TagCatalog{}, testNow, 2)
	require.Len(t, limited, 2)
	assert.Equal(t, "CAISH 0", limited[0]["name"])
	assert.Equal(t, "CAISH 1", limited[1]["name"])

	for _, noLimit := range []int{0, -1} {
		assert.Len(t, p.Run(entries, TagCatalog{}, testNow, noLimit), 5)
	}
}

func TestPipeline_UnparseableStartDropped(t *testing.T) {
	// Unparseable start timestamps fail the recency window deterministically
	// instead of producing a platform-dependent ordering.
	entries := entriesFrom(t, fmt.Sprintf(`[
		{"name":"CAISH garbled","start_at":"next tuesday-ish"},
		{"name":"CAISH missing"},
		{"name":"CAISH fine","start_at":"%s"}
	]`, upcoming(time.Hour)))

	p := NewPipeline("CAISH", 0)
	out := p.Run(entries, TagCatalog{}, testNow, 0)

	require.Len(t, out, 1)
	assert.Equal(t, "CAISH fine", out[0]["name"])
}

func TestPipeline_PreservesEntryShape(t *testing.T) {
	// Fields the pipeline never reads survive untouched, including the
	// wrapper shape itself.
	entries := entriesFrom(t, fmt.Sprintf(`[
		{"api_id":"evt-9","extra":{"nested":true},"event":{"name":"CAISH picnic","location":"Jesus Green","start_at":"%s"}}
	]`, upcoming(time.Hour)))

	original := entriesFrom(t, fmt.Sprintf(`[
		{"api_id":"evt-9","extra":{"nested":true},"event":{"name":"CAISH picnic","location":"Jesus Green","start_at":"%s"}}
	]`, upcoming(time.Hour)))

	p := NewPipeline("CAISH", 0)
	out := p.Run(entries, TagCatalog{}, testNow, 0)

	require.Len(t, out, 1)
	assert.Equal(t, original[0], out[0])
}

func TestCanonicalize_TagUnion(t *testing.T) {
	entries := entriesFrom(t, `[{"name":"Dinner","tags":["socials",{"name":"Food"}],"tag_ids":[5,99]}]`)
	catalog := TagCatalog{"5": "caish"}

	ev := Canonicalize(entries[0], catalog)

	assert.Equal(t, map[string]struct{}{
		"SOCIALS": {},
		"FOOD":    {},
		"CAISH":   {},
	}, ev.TagNames)
}

func TestCanonicalize_EmptyEntry(t *testing.T) {
	ev := Canonicalize(RawEntry{}, TagCatalog{})

	assert.Empty(t, ev.Name)
	assert.Empty(t, ev.Description)
	assert.False(t, ev.StartValid)
	assert.Empty(t, ev.TagNames)
}
