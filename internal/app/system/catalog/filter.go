package catalog

import (
	"strings"

	"github.com/dalemusser/studyshare/internal/domain/models"
)

// ChipPredicate decides whether a record passes the active chip selection.
// It is only consulted when at least one chip is active.
type ChipPredicate func(r models.Record, active []string) bool

// MatchesSearch reports whether q is empty or is a case-insensitive substring
// of the record's name or description.
func MatchesSearch(r models.Record, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(r.Name), q) ||
		strings.Contains(strings.ToLower(r.Description), q)
}

// MatchesAnyTag is the tag-containment predicate: the record passes when at
// least one active tag is in its tag set.
func MatchesAnyTag(r models.Record, active []string) bool {
	for _, tag := range active {
		if r.HasTag(tag) {
			return true
		}
	}
	return false
}

// MatchesAnySubstring is the year/semester predicate: the record passes when
// at least one active chip appears verbatim in its name or description.
// Matching is case sensitive.
func MatchesAnySubstring(r models.Record, active []string) bool {
	for _, chip := range active {
		if strings.Contains(r.Name, chip) || strings.Contains(r.Description, chip) {
			return true
		}
	}
	return false
}
