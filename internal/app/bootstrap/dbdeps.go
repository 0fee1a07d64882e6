// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/studyshare/internal/app/system/genai"
	"github.com/dalemusser/studyshare/internal/app/system/objstore"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and back-end dependencies for this WAFFLE app.
//
// WAFFLE passes this struct to EnsureSchema, Startup, BuildHandler and
// Shutdown after ConnectDB has filled it in.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Storage is the configured object store. Local is set as well when the
	// backend is local, so the /files routes can serve it.
	Storage objstore.Store
	Local   *objstore.Local

	AI genai.Completer
}
