// internal/app/features/profile/handler.go
package profile

import (
	apierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/services/accounts"
	"github.com/dalemusser/studyhub/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler owns the /users/me handlers.
type Handler struct {
	Svc      *accounts.Service
	AuditLog *auditlog.Logger
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(svc *accounts.Service, audit *auditlog.Logger, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}
