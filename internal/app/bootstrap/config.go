// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/studyshare/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Storage backends.
const (
	StorageLocal = "local"
	StorageMinIO = "minio"
)

// appConfigKeys defines the configuration keys for StudyShare.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: STUDYSHARE_MONGO_URI, STUDYSHARE_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "studyshare", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "studyshare-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	// File storage configuration
	{Name: "storage_type", Default: StorageLocal, Desc: "Storage backend: 'local' or 'minio'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "http://localhost:8080/files", Desc: "Public URL prefix for local files"},
	{Name: "storage_signing_key", Default: "", Desc: "HMAC key for local signed links (blank reuses session_key)"},

	// MinIO configuration
	{Name: "storage_minio_endpoint", Default: "", Desc: "MinIO/S3 endpoint host:port"},
	{Name: "storage_minio_access_key", Default: "", Desc: "MinIO access key"},
	{Name: "storage_minio_secret_key", Default: "", Desc: "MinIO secret key"},
	{Name: "storage_minio_bucket", Default: "studyshare", Desc: "MinIO bucket name"},
	{Name: "storage_minio_use_ssl", Default: false, Desc: "Use HTTPS to reach MinIO"},
	{Name: "storage_public_url", Default: "", Desc: "Public URL prefix for bucket objects (blank derives it)"},

	{Name: "signed_url_ttl", Default: "24h", Desc: "Longest lifetime of a signed link"},
	{Name: "upload_max_mb", Default: 25, Desc: "Largest accepted upload in MB"},

	// Generative AI
	{Name: "gemini_api_key", Default: "", Desc: "Gemini API key (blank disables the assistant)"},
	{Name: "gemini_model", Default: "gemini-1.5-flash", Desc: "Gemini model name"},
	{Name: "gemini_base_url", Default: "https://generativelanguage.googleapis.com/v1beta", Desc: "Gemini REST base URL"},
	{Name: "gemini_timeout", Default: "30s", Desc: "Timeout for one model call"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Content event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Base URL for OAuth callbacks
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Externally reachable base URL"},

	// Rate limits
	{Name: "rate_auth_per_minute", Default: 20, Desc: "Sign-in and sign-up requests per client address per minute (0 disables)"},
	{Name: "rate_ai_per_minute", Default: 10, Desc: "Assistant and notice requests per user per minute (0 disables)"},

	// Handler timeouts
	{Name: "timeout_ping", Default: "", Desc: "Health check timeout (e.g., 2s)"},
	{Name: "timeout_short", Default: "", Desc: "Single-document read timeout (e.g., 5s)"},
	{Name: "timeout_medium", Default: "", Desc: "List query timeout (e.g., 10s)"},
	{Name: "timeout_long", Default: "", Desc: "Upload, model call and cleanup timeout (e.g., 30s)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STUDYSHARE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STUDYSHARE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		// File storage
		StorageType:       appValues.String("storage_type"),
		StorageLocalPath:  appValues.String("storage_local_path"),
		StorageLocalURL:   appValues.String("storage_local_url"),
		StorageSigningKey: appValues.String("storage_signing_key"),

		// MinIO
		StorageMinIOEndpoint:  appValues.String("storage_minio_endpoint"),
		StorageMinIOAccessKey: appValues.String("storage_minio_access_key"),
		StorageMinIOSecretKey: appValues.String("storage_minio_secret_key"),
		StorageMinIOBucket:    appValues.String("storage_minio_bucket"),
		StorageMinIOUseSSL:    appValues.Bool("storage_minio_use_ssl"),
		StoragePublicURL:      appValues.String("storage_public_url"),

		SignedURLTTL: appValues.Duration("signed_url_ttl", 24*time.Hour),
		UploadMaxMB:  appValues.Int("upload_max_mb"),

		// Generative AI
		GeminiAPIKey:  appValues.String("gemini_api_key"),
		GeminiModel:   appValues.String("gemini_model"),
		GeminiBaseURL: appValues.String("gemini_base_url"),
		GeminiTimeout: appValues.Duration("gemini_timeout", 30*time.Second),

		// Audit logging
		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		// Google OAuth
		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		BaseURL: appValues.String("base_url"),

		RateAuthPerMinute: appValues.Int("rate_auth_per_minute"),
		RateAIPerMinute:   appValues.Int("rate_ai_per_minute"),

		TimeoutPing:   appValues.Duration("timeout_ping", 0),
		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// StudyShare validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and checks that the chosen
// storage backend is fully configured.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.SessionKey == "" {
		return errors.New("session_key is required")
	}

	switch appCfg.StorageType {
	case StorageLocal:
		if appCfg.StorageLocalPath == "" {
			return errors.New("storage_local_path is required for local storage")
		}
		if len(appCfg.signingKey()) < 32 {
			return errors.New("storage_signing_key (or session_key) must be at least 32 bytes for local storage")
		}
	case StorageMinIO:
		var missing []string
		if appCfg.StorageMinIOEndpoint == "" {
			missing = append(missing, "storage_minio_endpoint")
		}
		if appCfg.StorageMinIOAccessKey == "" {
			missing = append(missing, "storage_minio_access_key")
		}
		if appCfg.StorageMinIOSecretKey == "" {
			missing = append(missing, "storage_minio_secret_key")
		}
		if appCfg.StorageMinIOBucket == "" {
			missing = append(missing, "storage_minio_bucket")
		}
		if len(missing) > 0 {
			return fmt.Errorf("minio storage requires %v", missing)
		}
	default:
		return fmt.Errorf("storage_type must be %q or %q, got %q", StorageLocal, StorageMinIO, appCfg.StorageType)
	}

	if appCfg.UploadMaxMB <= 0 {
		return fmt.Errorf("upload_max_mb must be positive, got %d", appCfg.UploadMaxMB)
	}
	if appCfg.SignedURLTTL <= 0 {
		return errors.New("signed_url_ttl must be positive")
	}
	if !auditlog.ValidMode(appCfg.AuditLogAuth) || !auditlog.ValidMode(appCfg.AuditLogAdmin) {
		return fmt.Errorf("audit_log_auth and audit_log_admin must be one of all, db, log, off")
	}
	if appCfg.RateAuthPerMinute < 0 || appCfg.RateAIPerMinute < 0 {
		return errors.New("rate limits must not be negative")
	}
	if (appCfg.GoogleClientID == "") != (appCfg.GoogleClientSecret == "") {
		return errors.New("google_client_id and google_client_secret must be set together")
	}
	if appCfg.GeminiAPIKey == "" {
		logger.Warn("gemini_api_key is empty; assistant and notice summaries will answer with fallback text")
	}
	return nil
}
