package catalog

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/studyshare/internal/domain/models"
)

// Query selects which records a screen fetches from the backend.
type Query struct {
	Collection models.Collection
	Tag        string // server-side containment filter, empty for none
	Limit      int64  // zero for no limit
}

// Fetcher returns records most-recent-first.
type Fetcher interface {
	FetchResources(ctx context.Context, q Query) ([]models.Record, error)
}

// Deleter removes one record from the backend.
type Deleter interface {
	DeleteRecord(ctx context.Context, collection models.Collection, id primitive.ObjectID) error
}

// Storage resolves storage locators into URLs or bytes.
type Storage interface {
	PublicURL(path string) string
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	Download(ctx context.Context, path string) (io.ReadCloser, error)
}

// Opener opens a URL in an external viewer.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// Sharer hands a local URI or URL to the platform share mechanism.
type Sharer interface {
	Share(ctx context.Context, uri string) error
}

// LocalFiles writes downloaded content into scoped local storage and returns
// the URI of the written file.
type LocalFiles interface {
	Save(name string, r io.Reader) (string, error)
}

// Confirmer asks the user a yes/no question and blocks until answered.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Messenger shows a transient message to the user.
type Messenger interface {
	Message(text string)
}

// Identity reports the signed-in user. An empty ID means nobody is signed in.
type Identity interface {
	UserID() string
}
