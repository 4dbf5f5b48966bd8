// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/system/apperr"
	"github.com/dalemusser/studyhub/internal/app/system/jsonio"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorLogger writes classified errors as {"msg": ...} responses and logs
// the unclassified ones before they become a 500.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

// Respond maps err to its status. op names the failed operation in logs.
func (e *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, op string, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		e.LogServerError(w, r, op, err)
		return
	}
	e.Log.Debug("request rejected",
		zap.String("op", op),
		zap.String("kind", kind.String()),
		zap.String("path", r.URL.Path),
		zap.String("msg", apperr.Message(err)))
	jsonio.Error(w, kind.Status(), apperr.Message(err))
}

// LogBadRequest responds 400 with msg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	e.Log.Debug("bad request", zap.String("path", r.URL.Path), zap.String("msg", msg))
	jsonio.Error(w, http.StatusBadRequest, msg)
}

// LogServerError logs err at Error and responds 500 without leaking it.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	e.Log.Error(op,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())))
	jsonio.Error(w, http.StatusInternalServerError, apperr.Message(err))
}
