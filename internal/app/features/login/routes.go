// internal/app/features/login/routes.go
package login

import (
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/auth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeOptions)
	r.Post("/signup", h.HandleSignup)
	r.Post("/login", h.HandleLogin)
	return r
}

// MeRoutes is mounted at /api/me.
func MeRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeMe)
	return r
}
