// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /audit-events. Callers only ever see their own
// events.
func Routes(h *Handler, az *auth.Authorizer) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(az.RequireBearer)
		pr.Get("/", h.ServeList)
	})

	return r
}
