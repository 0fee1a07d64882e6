// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig is where everything specific to StudyShare lives: the
// database, object storage, the generative AI endpoint, sessions, sign-in
// providers and audit settings.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: studyshare-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// File storage configuration
	StorageType       string // "local" or "minio"
	StorageLocalPath  string // Local storage directory (e.g., "./uploads")
	StorageLocalURL   string // Public prefix for local files (e.g., "http://localhost:8080/files")
	StorageSigningKey string // HMAC key for local signed links; blank reuses SessionKey

	// MinIO configuration (only used if StorageType is "minio")
	StorageMinIOEndpoint  string
	StorageMinIOAccessKey string
	StorageMinIOSecretKey string
	StorageMinIOBucket    string
	StorageMinIOUseSSL    bool
	StoragePublicURL      string // Externally reachable bucket prefix; derived when blank

	SignedURLTTL time.Duration // Upper bound for signed links handed out by /api/links
	UploadMaxMB  int           // Largest accepted upload

	// Generative AI (Gemini generateContent)
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	// Audit logging
	AuditLogAuth  string // "all", "db", "log", or "off"
	AuditLogAdmin string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth callbacks
	BaseURL string // e.g., "https://studyshare.example.com" or "http://localhost:8080"

	// Per-minute request limits; zero disables.
	RateAuthPerMinute int // sign-up and sign-in, per client address
	RateAIPerMinute   int // assistant and notice endpoints, per user

	// Handler timeouts; zero keeps the default.
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}

// uploadMaxBytes converts UploadMaxMB into bytes.
func (c AppConfig) uploadMaxBytes() int64 {
	return int64(c.UploadMaxMB) << 20
}

// signingKey is the key for local signed links.
func (c AppConfig) signingKey() []byte {
	if c.StorageSigningKey != "" {
		return []byte(c.StorageSigningKey)
	}
	return []byte(c.SessionKey)
}
