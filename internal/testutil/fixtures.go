package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/studyshare/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, _ := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a password user. The hash is not a real bcrypt hash;
// use the users store when a test needs to sign in.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: "x",
		AuthMethod:   models.AuthMethodPassword,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateRecord inserts a record into its collection. createdAt lets tests
// control ordering.
func (f *Fixtures) CreateRecord(ctx context.Context, coll models.Collection, name string, owner primitive.ObjectID, createdAt time.Time, tags ...string) models.Record {
	f.t.Helper()

	if tags == nil {
		tags = []string{}
	}
	r := models.Record{
		ID:         primitive.NewObjectID(),
		Collection: coll,
		Name:       name,
		NameCI:     text.Fold(name),
		Tags:       tags,
		UploadedBy: "fixture@test.com",
		OwnerID:    owner,
		CreatedAt:  createdAt.UTC(),
	}
	if coll == models.CollectionDocuments {
		r.FilePath = "documents/fixture/" + name
		r.MimeType = "application/pdf"
		r.SizeBytes = 1
	}
	if _, err := f.db.Collection(string(coll)).InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test record: %v", err)
	}
	return r
}
