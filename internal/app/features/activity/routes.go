// internal/app/features/activity/routes.go
package activity

import (
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/me/activity.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeActivity)
	return r
}
