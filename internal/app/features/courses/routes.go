// internal/app/features/courses/routes.go
package courses

import (
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /courses.
func Routes(h *Handler, az *auth.Authorizer) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(az.RequireBearer)
		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
	})
	return r
}
