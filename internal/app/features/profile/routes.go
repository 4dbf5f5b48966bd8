// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /users.
func Routes(h *Handler, az *auth.Authorizer) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(az.RequireBearer)
		pr.Get("/me", h.ServeProfile)
		pr.Put("/me", h.HandleUpdate)
	})
	return r
}
