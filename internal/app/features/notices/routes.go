// internal/app/features/notices/routes.go
package notices

import (
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/notices. Listing and deleting go through
// /api/screens/notices.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Post("/summarize", h.HandleSummarize)
	})
	return r
}

// NotificationRoutes is mounted at /api/notifications.
func NotificationRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeNotifications)
	return r
}
