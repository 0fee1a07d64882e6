// Package catalog holds the resource catalog view: an in-memory snapshot of
// records with search and chip filtering (Store), and the controller that
// binds it to the backend, object storage and user actions (Controller).
//
// Neither type is safe for concurrent use. Each screen instance owns one
// Store and one Controller and drives them from a single goroutine.
package catalog

import (
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/studyshare/internal/domain/models"
)

// Store holds the latest snapshot of records plus the current filter state.
type Store struct {
	records []models.Record
	search  string
	active  []string // insertion order, no duplicates
	chips   ChipPredicate
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithChipPredicate replaces the default tag-containment predicate.
func WithChipPredicate(p ChipPredicate) StoreOption {
	return func(s *Store) {
		if p != nil {
			s.chips = p
		}
	}
}

// NewStore returns an empty Store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{chips: MatchesAnyTag}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReplaceAll overwrites the held records with a new snapshot. Filter state is
// kept.
func (s *Store) ReplaceAll(records []models.Record) {
	s.records = append([]models.Record(nil), records...)
}

// SetSearchText replaces the search string.
func (s *Store) SetSearchText(text string) {
	s.search = text
}

// SearchText returns the current search string.
func (s *Store) SearchText() string {
	return s.search
}

// ToggleTag adds tag to the active set if absent and removes it if present.
func (s *Store) ToggleTag(tag string) {
	for i, t := range s.active {
		if t == tag {
			s.active = append(s.active[:i:i], s.active[i+1:]...)
			return
		}
	}
	s.active = append(s.active, tag)
}

// ActiveTags returns the active chip set as a sorted copy. Selection order
// is not kept.
func (s *Store) ActiveTags() []string {
	out := slices.Clone(s.active)
	slices.Sort(out)
	return out
}

// IsActive reports whether tag is currently selected.
func (s *Store) IsActive(tag string) bool {
	for _, t := range s.active {
		if t == tag {
			return true
		}
	}
	return false
}

// Len returns the size of the full snapshot, ignoring filters.
func (s *Store) Len() int {
	return len(s.records)
}

// Find returns the record with the given ID from the snapshot.
func (s *Store) Find(id primitive.ObjectID) (models.Record, bool) {
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return models.Record{}, false
}

// VisibleRecords returns, in snapshot order, the records that match the
// search text and, when any chip is active, the chip predicate.
func (s *Store) VisibleRecords() []models.Record {
	out := make([]models.Record, 0, len(s.records))
	for _, r := range s.records {
		if !MatchesSearch(r, s.search) {
			continue
		}
		if len(s.active) > 0 && !s.chips(r, s.active) {
			continue
		}
		out = append(out, r)
	}
	return out
}
