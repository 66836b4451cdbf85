package workload

import "strings"

// Filter returns the records whose name, image or state contains query, case-insensitively.
// An empty (or blank) query returns records unchanged. Input order is preserved and the
// input slice is never modified.
func Filter(query string, records []Workload) []Workload {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}

	result := make([]Workload, 0, len(records))
	for _, w := range records {
		if Matches(q, w) {
			result = append(result, w)
		}
	}
	return result
}

// Matches reports whether an already case-folded, trimmed query matches w.
// State uses the same substring rule as name and image in both modes.
func Matches(foldedQuery string, w Workload) bool {
	return strings.Contains(strings.ToLower(w.Name), foldedQuery) ||
		strings.Contains(strings.ToLower(w.Image), foldedQuery) ||
		strings.Contains(strings.ToLower(w.State.String()), foldedQuery)
}
