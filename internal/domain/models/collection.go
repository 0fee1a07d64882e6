// internal/domain/models/collection.go
package models

// Collection names a logical table of records.
type Collection string

// Canonical collection identifiers. These double as Mongo collection names.
const (
	CollectionDocuments Collection = "documents"
	CollectionNotices   Collection = "notices"
	CollectionRequests  Collection = "requests"
)

// Collections is the full set of valid collections.
var Collections = []Collection{
	CollectionDocuments,
	CollectionNotices,
	CollectionRequests,
}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

// Noun returns the singular label used in user-facing messages.
func (c Collection) Noun() string {
	switch c {
	case CollectionNotices:
		return "notice"
	case CollectionRequests:
		return "request"
	default:
		return "document"
	}
}
