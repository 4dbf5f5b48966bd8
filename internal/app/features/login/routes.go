// internal/app/features/login/routes.go
package login

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /auth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/signup", h.HandleSignup)

	var login http.Handler = http.HandlerFunc(h.HandleLogin)
	if h.Limiter != nil {
		login = h.Limiter.ByIP(h.rateLimited)(login)
	}
	r.Method(http.MethodPost, "/login", login)
	return r
}
