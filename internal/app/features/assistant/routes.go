// internal/app/features/assistant/routes.go
package assistant

import (
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/assistant.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/chat", h.HandleChat)
		pr.Post("/solutions", h.HandleSolutions)
	})
	return r
}
