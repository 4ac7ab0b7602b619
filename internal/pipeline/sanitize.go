package pipeline

import "strings"

// sanitize prepares a raw model reply for JSON decoding. It trims
// whitespace, removes markdown code fences, and cuts the reply down to the
// outermost brace pair so prose around the object is discarded. Replies with
// no braces at all are returned as-is so the parse failure surfaces
// downstream. An empty reply becomes an empty object.
func sanitize(raw string) string {
	s := strings.TrimSpace(raw)

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if s == "" {
		return "{}"
	}

	if span, ok := braceSpan(s); ok {
		return span
	}

	return s
}

// braceSpan slices s from its first '{' through its last '}'. No brace
// matching happens beyond that; receipts are small and model output rarely
// nests braces outside the top-level object.
func braceSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}
