// internal/app/store/records/recordstore.go
package recordstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/studyshare/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrInvalid wraps every required-field failure from Insert.
var ErrInvalid = errors.New("invalid record")

// Store reads and writes one collection of records.
type Store struct {
	c    *mongo.Collection
	coll models.Collection
}

// New returns a store for coll. coll doubles as the Mongo collection name.
func New(db *mongo.Database, coll models.Collection) *Store {
	return &Store{c: db.Collection(string(coll)), coll: coll}
}

// Collection returns the logical collection this store serves.
func (s *Store) Collection() models.Collection { return s.coll }

// EnsureIndexes creates the indexes the catalog queries need.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	})
	return err
}

// FetchOptions narrows a Fetch.
type FetchOptions struct {
	Tag   string // exact tag containment, empty for all
	Limit int64  // zero for no limit
}

// Fetch returns records most-recent-first.
func (s *Store) Fetch(ctx context.Context, opt FetchOptions) ([]models.Record, error) {
	filter := bson.M{}
	if opt.Tag != "" {
		filter["tags"] = opt.Tag
	}
	findOpts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	if opt.Limit > 0 {
		findOpts.SetLimit(opt.Limit)
	}

	cur, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Record{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Collection = s.coll
	}
	return out, nil
}

// Insert validates required fields, fills ID, NameCI and CreatedAt and
// stores the record.
func (s *Store) Insert(ctx context.Context, r models.Record) (models.Record, error) {
	r.Collection = s.coll
	r.Name = strings.TrimSpace(r.Name)
	if err := validate(r); err != nil {
		return models.Record{}, err
	}

	r.ID = primitive.NewObjectID()
	r.NameCI = text.Fold(r.Name)
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Record{}, err
	}
	return r, nil
}

func validate(r models.Record) error {
	if r.Name == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, titleField(r.Collection))
	}
	if r.OwnerID.IsZero() {
		return fmt.Errorf("%w: owner is required", ErrInvalid)
	}
	switch r.Collection {
	case models.CollectionDocuments:
		if r.FilePath == "" {
			return fmt.Errorf("%w: file is required", ErrInvalid)
		}
	case models.CollectionNotices:
		if strings.TrimSpace(r.Description) == "" && r.ImageURL == "" {
			return fmt.Errorf("%w: provide either content or an image", ErrInvalid)
		}
	}
	return nil
}

func titleField(c models.Collection) string {
	if c == models.CollectionDocuments {
		return "name"
	}
	return "title"
}

// GetByID returns a record by its ID. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Record, error) {
	var r models.Record
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return models.Record{}, err
	}
	r.Collection = s.coll
	return r, nil
}

// Delete removes a record by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
