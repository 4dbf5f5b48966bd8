// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /study-groups. Every endpoint needs a bearer token.
func Routes(h *Handler, az *auth.Authorizer) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(az.RequireBearer)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}", h.ServeView)
		pr.Put("/{id}/join", h.HandleJoin)
		pr.Put("/{id}/leave", h.HandleLeave)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
