package cache

import "strings"

// Key prefixes
const (
	ProfessorSearchPrefix = "search:professors:"
	CourseSearchPrefix    = "search:courses:"
	RevokedTokenPrefix    = "revoked:"
)

// SearchKey builds a cache key for a search term; terms differing only in case
// or surrounding space share an entry.
func SearchKey(prefix, term string) string {
	return prefix + strings.ToLower(strings.TrimSpace(term))
}
