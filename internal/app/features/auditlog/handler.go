// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	apierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Querier reads audit events. *audit.Store and the in-memory backend both
// satisfy it.
type Querier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
}

type Handler struct {
	Events Querier
	Log    *zap.Logger
	ErrLog *apierrors.ErrorLogger
}

// NewHandler constructs an audit event feed handler.
func NewHandler(events Querier, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events: events,
		Log:    logger,
		ErrLog: errLog,
	}
}
