// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	auditstore "github.com/dalemusser/studyshare/internal/app/store/audit"
	recordstore "github.com/dalemusser/studyshare/internal/app/store/records"
	userstore "github.com/dalemusser/studyshare/internal/app/store/users"
	"github.com/dalemusser/studyshare/internal/app/system/genai"
	"github.com/dalemusser/studyshare/internal/app/system/objstore"
	"github.com/dalemusser/studyshare/internal/app/system/timeouts"
	"github.com/dalemusser/studyshare/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens MongoDB and the object store and builds the AI client.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().ApplyURI(appCfg.MongoURI)
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", appCfg.MongoMaxPoolSize))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		AI: genai.New(genai.Config{
			APIKey:  appCfg.GeminiAPIKey,
			Model:   appCfg.GeminiModel,
			BaseURL: appCfg.GeminiBaseURL,
			Timeout: appCfg.GeminiTimeout,
		}),
	}

	switch appCfg.StorageType {
	case StorageMinIO:
		store, err := objstore.NewMinIO(ctx, objstore.MinIOConfig{
			Endpoint:        appCfg.StorageMinIOEndpoint,
			AccessKeyID:     appCfg.StorageMinIOAccessKey,
			SecretAccessKey: appCfg.StorageMinIOSecretKey,
			Bucket:          appCfg.StorageMinIOBucket,
			UseSSL:          appCfg.StorageMinIOUseSSL,
			PublicURL:       appCfg.StoragePublicURL,
		})
		if err != nil {
			_ = client.Disconnect(context.Background())
			return DBDeps{}, fmt.Errorf("open minio storage: %w", err)
		}
		deps.Storage = store
	default:
		local, err := objstore.NewLocal(objstore.LocalConfig{
			Root:       appCfg.StorageLocalPath,
			BaseURL:    appCfg.StorageLocalURL,
			SigningKey: appCfg.signingKey(),
		})
		if err != nil {
			_ = client.Disconnect(context.Background())
			return DBDeps{}, fmt.Errorf("open local storage: %w", err)
		}
		deps.Storage = local
		deps.Local = local
	}
	logger.Info("object storage ready", zap.String("type", appCfg.StorageType))

	return deps, nil
}

// EnsureSchema creates collections with their validators and the indexes
// every store relies on. It is safe to run on each start.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	if err := validators.EnsureAll(ctx, db, logger); err != nil {
		return fmt.Errorf("validators: %w", err)
	}

	if err := userstore.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	if err := recordstore.NewBackend(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("records indexes: %w", err)
	}
	if err := auditstore.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}

	logger.Info("schema ensured")
	return nil
}
