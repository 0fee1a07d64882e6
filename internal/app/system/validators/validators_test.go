package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/studyshare/internal/app/system/validators"
	"github.com/dalemusser/studyshare/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool)
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"users", "documents", "notices", "requests", "audit_events"} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestUsersValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		name    string
		doc     bson.M
		wantErr bool
	}{
		{"valid", bson.M{"full_name": "Priya", "email": "priya@example.com", "email_ci": "priya@example.com", "auth_method": "password", "created_at": time.Now()}, false},
		{"missing email", bson.M{"full_name": "Priya", "auth_method": "password"}, true},
		{"unknown auth method", bson.M{"full_name": "Priya", "email_ci": "p@example.com", "auth_method": "clever"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection("users").InsertOne(ctx, tt.doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("insert error: got %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecordValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	valid := func() bson.M {
		return bson.M{
			"collection": "notices",
			"name":       "Holiday",
			"tags":       bson.A{"Exam"},
			"owner_id":   primitive.NewObjectID(),
			"created_at": time.Now(),
		}
	}

	tests := []struct {
		name    string
		mutate  func(bson.M)
		wantErr bool
	}{
		{"valid", func(bson.M) {}, false},
		{"null tags", func(d bson.M) { d["tags"] = nil }, false},
		{"wrong collection", func(d bson.M) { d["collection"] = "documents" }, true},
		{"missing owner", func(d bson.M) { delete(d, "owner_id") }, true},
		{"numeric tag", func(d bson.M) { d["tags"] = bson.A{1} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid()
			tt.mutate(doc)
			_, err := db.Collection("notices").InsertOne(ctx, doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("insert error: got %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
