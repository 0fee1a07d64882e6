package recordstore

import (
	"context"
	"fmt"

	"github.com/dalemusser/studyshare/internal/app/system/catalog"
	"github.com/dalemusser/studyshare/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Backend routes catalog queries to the store for each collection.
type Backend struct {
	stores map[models.Collection]*Store
}

// NewBackend builds one Store per known collection.
func NewBackend(db *mongo.Database) *Backend {
	b := &Backend{stores: make(map[models.Collection]*Store, len(models.Collections))}
	for _, c := range models.Collections {
		b.stores[c] = New(db, c)
	}
	return b
}

// Store returns the store for c, or nil for an unknown collection.
func (b *Backend) Store(c models.Collection) *Store {
	return b.stores[c]
}

// EnsureIndexes runs EnsureIndexes on every collection.
func (b *Backend) EnsureIndexes(ctx context.Context) error {
	for _, c := range models.Collections {
		if err := b.stores[c].EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("%s indexes: %w", c, err)
		}
	}
	return nil
}

func (b *Backend) lookup(c models.Collection) (*Store, error) {
	s, ok := b.stores[c]
	if !ok {
		return nil, fmt.Errorf("%w: unknown collection %q", ErrInvalid, c)
	}
	return s, nil
}

// FetchResources implements catalog.Fetcher.
func (b *Backend) FetchResources(ctx context.Context, q catalog.Query) ([]models.Record, error) {
	s, err := b.lookup(q.Collection)
	if err != nil {
		return nil, err
	}
	return s.Fetch(ctx, FetchOptions{Tag: q.Tag, Limit: q.Limit})
}

// DeleteRecord implements catalog.Deleter. A missing record is not an error.
func (b *Backend) DeleteRecord(ctx context.Context, c models.Collection, id primitive.ObjectID) error {
	s, err := b.lookup(c)
	if err != nil {
		return err
	}
	_, err = s.Delete(ctx, id)
	return err
}
