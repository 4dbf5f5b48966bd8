// internal/app/features/studysessions/handler.go
package studysessions

import (
	apierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/services/studysessions"
	"github.com/dalemusser/studyhub/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler serves the /study-sessions endpoints.
type Handler struct {
	Svc      *studysessions.Service
	AuditLog *auditlog.Logger
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(svc *studysessions.Service, audit *auditlog.Logger, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}
