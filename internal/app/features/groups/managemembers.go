// internal/app/features/groups/managemembers.go
package groups

import (
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/jsonio"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleJoin handles PUT /study-groups/{id}/join.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CallerID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	g, err := h.Svc.JoinGroup(ctx, uid, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "join study group", err)
		return
	}
	h.AuditLog.MemberJoined(ctx, r, uid, g.ID)
	jsonio.Write(w, http.StatusOK, g)
}

// HandleLeave handles PUT /study-groups/{id}/leave.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CallerID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	g, err := h.Svc.LeaveGroup(ctx, uid, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "leave study group", err)
		return
	}
	h.AuditLog.MemberLeft(ctx, r, uid, g.ID)
	jsonio.Write(w, http.StatusOK, g)
}
