// internal/app/features/files/routes.go
package files

import "github.com/go-chi/chi/v5"

// Routes is mounted at MountPath.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/signed/{token}", h.ServeSigned)
	r.Get("/*", h.ServePublic)
	return r
}
