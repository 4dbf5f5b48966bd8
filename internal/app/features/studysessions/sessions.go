// internal/app/features/studysessions/sessions.go
package studysessions

import (
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/services/studysessions"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/jsonio"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type listResponse struct {
	Data []models.StudySession `json:"data"`
}

// HandleCreate handles POST /study-sessions.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CallerID(w, r)
	if !ok {
		return
	}
	var in studysessions.CreateSessionInput
	if err := jsonio.Decode(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "decode study session", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	ss, err := h.Svc.CreateSession(ctx, uid, in)
	if err != nil {
		h.ErrLog.Respond(w, r, "create study session", err)
		return
	}
	h.AuditLog.SessionCreated(ctx, r, uid, ss.GroupID, ss.ID)
	jsonio.Write(w, http.StatusCreated, ss)
}

// ServeByGroup handles GET /study-sessions/{id}, where id is the group.
func (h *Handler) ServeByGroup(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CallerID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	list, err := h.Svc.ListSessionsByGroup(ctx, uid, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "list study sessions", err)
		return
	}
	jsonio.Write(w, http.StatusOK, listResponse{Data: list})
}

// HandleDelete handles DELETE /study-sessions/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CallerID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	ss, err := h.Svc.DeleteSession(ctx, uid, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "delete study session", err)
		return
	}
	h.AuditLog.SessionDeleted(ctx, r, uid, ss.GroupID, ss.ID)
	jsonio.Write(w, http.StatusOK, jsonio.Message{Msg: "Study session deleted"})
}
