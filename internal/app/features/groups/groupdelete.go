// internal/app/features/groups/groupdelete.go
package groups

import (
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/jsonio"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

type deleteResponse struct {
	Msg             string `json:"msg"`
	SessionsRemoved int64  `json:"sessionsRemoved"`
}

// HandleDelete handles DELETE /study-groups/{id}. Only the host may delete;
// the group's sessions go with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CallerID(w, r)
	if !ok {
		return
	}
	// Sessions and group are removed in one transaction.
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long)
	defer cancel()

	res, err := h.Svc.DeleteGroup(ctx, uid, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "delete study group", err)
		return
	}
	h.AuditLog.GroupDeleted(ctx, r, uid, res.GroupID, res.SessionsRemoved)
	jsonio.Write(w, http.StatusOK, deleteResponse{Msg: "Study group deleted", SessionsRemoved: res.SessionsRemoved})
}
