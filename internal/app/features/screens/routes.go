// internal/app/features/screens/routes.go
package screens

import "github.com/go-chi/chi/v5"

// Routes is mounted at /api/screens. Listing is public; ownership for
// deletes is enforced by the controller against the session user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeIndex)
	r.Get("/{screen}", h.ServeScreen)
	r.Post("/{screen}/records/{id}/{action}", h.HandleAction)
	return r
}
