// internal/app/features/studysessions/routes.go
package studysessions

import (
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /study-sessions. The GET and DELETE share the
// {id} segment: a group id for GET, a session id for DELETE.
func Routes(h *Handler, az *auth.Authorizer) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(az.RequireBearer)

		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}", h.ServeByGroup)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
