// internal/app/features/groups/handler.go
package groups

import (
	apierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/services/studygroups"
	"github.com/dalemusser/studyhub/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler serves the /study-groups endpoints. It performs no business
// logic: every decision is made by the study group service.
type Handler struct {
	Svc      *studygroups.Service
	AuditLog *auditlog.Logger
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler is called from BuildHandler once the stores are wired.
func NewHandler(svc *studygroups.Service, audit *auditlog.Logger, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}

// listResponse wraps collection responses.
type listResponse[T any] struct {
	Data []T `json:"data"`
}
