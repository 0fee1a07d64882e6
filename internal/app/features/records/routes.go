// internal/app/features/records/routes.go
package records

import (
	"github.com/dalemusser/studyshare/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/collections. Reads are public; deletes need a
// signed-in owner.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Get("/{collection}", h.ServeList)
	r.Get("/{collection}/{id}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Delete("/{collection}/{id}", h.HandleDelete)
	})
	return r
}

// LinkRoutes is mounted at /api/links.
func LinkRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLink)
	return r
}
