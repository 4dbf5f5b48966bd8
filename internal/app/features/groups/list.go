// internal/app/features/groups/list.go
package groups

import (
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/services/studygroups"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/jsonio"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/domain/models"
)

// ServeList handles GET /study-groups?course=&language=&skillLevel=&type=my|discover.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CallerID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	q := r.URL.Query()
	groups, err := h.Svc.ListGroups(ctx, uid, studygroups.ListQuery{
		Course:     q.Get("course"),
		Language:   q.Get("language"),
		SkillLevel: q.Get("skillLevel"),
		Type:       q.Get("type"),
	})
	if err != nil {
		h.ErrLog.Respond(w, r, "list study groups", err)
		return
	}
	jsonio.Write(w, http.StatusOK, listResponse[models.GroupDetail]{Data: groups})
}
