// internal/app/features/groups/groupnew.go
package groups

import (
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/services/studygroups"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/jsonio"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
)

// HandleCreate handles POST /study-groups.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CallerID(w, r)
	if !ok {
		return
	}
	var in studygroups.CreateGroupInput
	if err := jsonio.Decode(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "decode study group", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	g, err := h.Svc.CreateGroup(ctx, uid, in)
	if err != nil {
		h.ErrLog.Respond(w, r, "create study group", err)
		return
	}
	h.AuditLog.GroupCreated(ctx, r, uid, g.ID, g.CourseID, g.Name)
	jsonio.Write(w, http.StatusCreated, g)
}
