// internal/app/features/groups/groupview.go
package groups

import (
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/system/jsonio"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeView handles GET /study-groups/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	d, err := h.Svc.GetGroup(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "get study group", err)
		return
	}
	jsonio.Write(w, http.StatusOK, d)
}
