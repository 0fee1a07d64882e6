package recordstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	recordstore "github.com/dalemusser/studyshare/internal/app/store/records"
	"github.com/dalemusser/studyshare/internal/app/system/catalog"
	"github.com/dalemusser/studyshare/internal/domain/models"
	"github.com/dalemusser/studyshare/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestInsert_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := primitive.NewObjectID()

	tests := []struct {
		name string
		coll models.Collection
		rec  models.Record
		ok   bool
	}{
		{"document ok", models.CollectionDocuments, models.Record{Name: "algo.pdf", FilePath: "documents/a", OwnerID: owner}, true},
		{"document without file", models.CollectionDocuments, models.Record{Name: "algo.pdf", OwnerID: owner}, false},
		{"blank name", models.CollectionDocuments, models.Record{Name: "  ", FilePath: "documents/a", OwnerID: owner}, false},
		{"no owner", models.CollectionRequests, models.Record{Name: "Need DBMS notes"}, false},
		{"request ok", models.CollectionRequests, models.Record{Name: "Need DBMS notes", OwnerID: owner}, true},
		{"notice without body", models.CollectionNotices, models.Record{Name: "Holiday", OwnerID: owner}, false},
		{"notice with content", models.CollectionNotices, models.Record{Name: "Holiday", Description: "Friday off", OwnerID: owner}, true},
		{"notice with image", models.CollectionNotices, models.Record{Name: "Holiday", ImageURL: "http://x/n.jpg", OwnerID: owner}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := recordstore.New(db, tt.coll).Insert(ctx, tt.rec)
			if tt.ok {
				if err != nil {
					t.Fatalf("Insert: %v", err)
				}
				if got.ID.IsZero() || got.CreatedAt.IsZero() || got.Collection != tt.coll {
					t.Errorf("defaults not filled: %+v", got)
				}
				return
			}
			if !errors.Is(err, recordstore.ErrInvalid) {
				t.Errorf("got %v, want ErrInvalid", err)
			}
		})
	}
}

func TestFetch_OrderTagAndLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	owner := primitive.NewObjectID()
	base := time.Now().Add(-time.Hour)

	fx.CreateRecord(ctx, models.CollectionDocuments, "oldest", owner, base, models.TagNotes)
	fx.CreateRecord(ctx, models.CollectionDocuments, "middle", owner, base.Add(time.Minute), models.TagMST)
	fx.CreateRecord(ctx, models.CollectionDocuments, "newest", owner, base.Add(2*time.Minute), models.TagNotes, models.TagAssignments)

	s := recordstore.New(db, models.CollectionDocuments)

	all, err := s.Fetch(ctx, recordstore.FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(all) != 3 || all[0].Name != "newest" || all[2].Name != "oldest" {
		t.Errorf("order: %+v", all)
	}

	notes, err := s.Fetch(ctx, recordstore.FetchOptions{Tag: models.TagNotes})
	if err != nil {
		t.Fatalf("Fetch tag: %v", err)
	}
	if len(notes) != 2 || notes[0].Name != "newest" || notes[1].Name != "oldest" {
		t.Errorf("tag filter: %+v", notes)
	}

	one, err := s.Fetch(ctx, recordstore.FetchOptions{Limit: 1})
	if err != nil {
		t.Fatalf("Fetch limit: %v", err)
	}
	if len(one) != 1 || one[0].Name != "newest" {
		t.Errorf("limit: %+v", one)
	}
}

func TestFetch_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	got, err := recordstore.New(db, models.CollectionRequests).Fetch(ctx, recordstore.FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestBackend_FetchAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	owner := primitive.NewObjectID()

	n := fx.CreateRecord(ctx, models.CollectionNotices, "Exam", owner, time.Now())

	b := recordstore.NewBackend(db)
	if err := b.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	var f catalog.Fetcher = b
	var d catalog.Deleter = b

	got, err := f.FetchResources(ctx, catalog.Query{Collection: models.CollectionNotices})
	if err != nil || len(got) != 1 {
		t.Fatalf("FetchResources: %v %v", got, err)
	}
	if err := d.DeleteRecord(ctx, models.CollectionNotices, n.ID); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if _, err := b.Store(models.CollectionNotices).GetByID(ctx, n.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetByID after delete: %v", err)
	}

	if _, err := f.FetchResources(context.Background(), catalog.Query{Collection: "albums"}); !errors.Is(err, recordstore.ErrInvalid) {
		t.Errorf("unknown collection: got %v", err)
	}
}
