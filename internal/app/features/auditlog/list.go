// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/studyhub/internal/app/store/audit"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/jsonio"
	"github.com/dalemusser/studyhub/internal/app/system/normalize"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

var categories = []string{audit.CategoryAuth, audit.CategoryActivity}

// ServeList handles GET /audit-events: the caller's own events, newest
// first. Optional filters are category, type, group and limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CallerID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	filter := audit.QueryFilter{
		UserID:    &uid,
		Category:  normalize.QueryParam(q.Get("category")),
		EventType: normalize.QueryParam(q.Get("type")),
		Limit:     defaultLimit,
	}
	if filter.Category != "" && !lo.Contains(categories, filter.Category) {
		h.ErrLog.LogBadRequest(w, r, "category must be auth or activity")
		return
	}
	if raw := normalize.QueryParam(q.Get("group")); raw != "" {
		gid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "group must be a valid id")
			return
		}
		filter.GroupID = &gid
	}
	if raw := normalize.QueryParam(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.ErrLog.LogBadRequest(w, r, "limit must be a positive number")
			return
		}
		filter.Limit = int64(min(n, maxLimit))
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events", err)
		return
	}
	jsonio.Write(w, http.StatusOK, listResponse{Data: lo.Map(events, func(e audit.Event, _ int) eventItem {
		return toItem(e)
	})})
}
