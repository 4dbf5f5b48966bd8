// internal/app/features/courses/handler.go
package courses

import (
	"net/http"

	apierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	coursesvc "github.com/dalemusser/studyhub/internal/app/services/courses"
	"github.com/dalemusser/studyhub/internal/app/system/auditlog"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/jsonio"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the /courses endpoints.
type Handler struct {
	Svc      *coursesvc.Service
	AuditLog *auditlog.Logger
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(svc *coursesvc.Service, audit *auditlog.Logger, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type listResponse struct {
	Data []models.Course `json:"data"`
}

// ServeList handles GET /courses. Courses come back ordered by code.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	list, err := h.Svc.List(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "list courses", err)
		return
	}
	if list == nil {
		list = []models.Course{}
	}
	jsonio.Write(w, http.StatusOK, listResponse{Data: list})
}

// HandleCreate handles POST /courses.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CallerID(w, r)
	if !ok {
		return
	}
	var in coursesvc.CreateCourseInput
	if err := jsonio.Decode(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "decode course", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	c, err := h.Svc.Create(ctx, in)
	if err != nil {
		h.ErrLog.Respond(w, r, "create course", err)
		return
	}
	h.AuditLog.CourseCreated(ctx, r, uid, c.ID, c.Code)
	jsonio.Write(w, http.StatusCreated, c)
}
