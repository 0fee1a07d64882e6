// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	activityfeature "github.com/dalemusser/studyshare/internal/app/features/activity"
	assistantfeature "github.com/dalemusser/studyshare/internal/app/features/assistant"
	authgooglefeature "github.com/dalemusser/studyshare/internal/app/features/authgoogle"
	errorsfeature "github.com/dalemusser/studyshare/internal/app/features/errors"
	filesfeature "github.com/dalemusser/studyshare/internal/app/features/files"
	healthfeature "github.com/dalemusser/studyshare/internal/app/features/health"
	loginfeature "github.com/dalemusser/studyshare/internal/app/features/login"
	logoutfeature "github.com/dalemusser/studyshare/internal/app/features/logout"
	noticesfeature "github.com/dalemusser/studyshare/internal/app/features/notices"
	recordsfeature "github.com/dalemusser/studyshare/internal/app/features/records"
	requestsfeature "github.com/dalemusser/studyshare/internal/app/features/requests"
	screensfeature "github.com/dalemusser/studyshare/internal/app/features/screens"
	uploadfeature "github.com/dalemusser/studyshare/internal/app/features/upload"
	auditstore "github.com/dalemusser/studyshare/internal/app/store/audit"
	recordstore "github.com/dalemusser/studyshare/internal/app/store/records"
	userstore "github.com/dalemusser/studyshare/internal/app/store/users"
	"github.com/dalemusser/studyshare/internal/app/system/auditlog"
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"github.com/dalemusser/studyshare/internal/app/system/notify"
	"github.com/dalemusser/studyshare/internal/app/system/ratelimit"
	"github.com/dalemusser/studyshare/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// StudyShare applies session middleware and mounts the JSON API: auth,
// collections, screens, uploads, notices, requests, the assistant, and the
// local file server when storage is local.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	db := deps.MongoDatabase
	users := userstore.New(db)
	backend := recordstore.NewBackend(db)
	audit := newAuditLogger(appCfg, deps, logger)
	feed := notify.NewFeed(notify.DefaultCapacity, logger)
	maxBytes := appCfg.uploadMaxBytes()

	authLimit := ratelimit.Middleware(ratelimit.New(appCfg.RateAuthPerMinute, time.Minute),
		ratelimit.ByIP, "Too many sign-in attempts. Please wait a minute and try again.")
	aiLimit := ratelimit.Middleware(ratelimit.New(appCfg.RateAIPerMinute, time.Minute),
		ratelimit.ByUser, "Too many requests. Please wait a minute and try again.")

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, appCfg.StorageType, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	googleHandler := authgooglefeature.NewHandler(users, sessionMgr, errLog, audit,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, appCfg.SessionKey, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	loginHandler := loginfeature.NewHandler(users, sessionMgr, errLog, audit, googleHandler.IsConfigured(), logger)
	r.With(authLimit).Mount("/api/auth", loginfeature.Routes(loginHandler))
	r.Mount("/api/me", loginfeature.MeRoutes(loginHandler, sessionMgr))

	// Reads the audit_events collection, which only holds rows when an audit
	// category is configured to persist.
	activityHandler := activityfeature.NewHandler(auditstore.New(db), errLog, logger)
	r.Mount("/api/me/activity", activityfeature.Routes(activityHandler, sessionMgr))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, audit, logger)
	r.Mount("/api/auth/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Catalog: raw collections, link minting, and the per-screen views.
	recordsHandler := recordsfeature.NewHandler(backend, deps.Storage, audit, errLog, logger)
	recordsHandler.MaxLinkTTL = appCfg.SignedURLTTL
	r.Mount("/api/collections", recordsfeature.Routes(recordsHandler, sessionMgr))
	r.Mount("/api/links", recordsfeature.LinkRoutes(recordsHandler))

	screensHandler := screensfeature.NewHandler(backend, deps.Storage, audit, appCfg.SessionKey, errLog, logger)
	r.Mount("/api/screens", screensfeature.Routes(screensHandler))

	// Content creation
	uploadHandler := uploadfeature.NewHandler(backend.Store(models.CollectionDocuments), deps.Storage, audit, maxBytes, errLog, logger)
	r.Mount("/api/upload", uploadfeature.Routes(uploadHandler, sessionMgr))

	noticesHandler := noticesfeature.NewHandler(backend.Store(models.CollectionNotices), deps.Storage, deps.AI, feed, audit, maxBytes, errLog, logger)
	r.With(aiLimit).Mount("/api/notices", noticesfeature.Routes(noticesHandler, sessionMgr))
	r.Mount("/api/notifications", noticesfeature.NotificationRoutes(noticesHandler))

	requestsHandler := requestsfeature.NewHandler(backend.Store(models.CollectionRequests), feed, audit, errLog, logger)
	r.Mount("/api/requests", requestsfeature.Routes(requestsHandler, sessionMgr))

	assistantHandler := assistantfeature.NewHandler(deps.AI, maxBytes, errLog, logger)
	r.With(aiLimit).Mount("/api/assistant", assistantfeature.Routes(assistantHandler, sessionMgr))

	// Local object storage is served by the app itself; MinIO links point
	// straight at the bucket.
	if deps.Local != nil {
		filesHandler := filesfeature.NewHandler(deps.Local, errLog, logger)
		r.Mount(filesfeature.MountPath, filesfeature.Routes(filesHandler))
	}

	return r, nil
}

// newAuditLogger builds the audit logger. The database sink is only passed
// when some category persists to it.
func newAuditLogger(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *auditlog.Logger {
	cfg := auditlog.Config{Auth: appCfg.AuditLogAuth, Admin: appCfg.AuditLogAdmin}
	if deps.MongoDatabase == nil || !needsSink(cfg) {
		return auditlog.New(nil, logger, cfg)
	}
	return auditlog.New(auditstore.New(deps.MongoDatabase), logger, cfg)
}

func needsSink(cfg auditlog.Config) bool {
	for _, m := range []string{cfg.Auth, cfg.Admin} {
		if m == auditlog.ModeAll || m == auditlog.ModeDB {
			return true
		}
	}
	return false
}
