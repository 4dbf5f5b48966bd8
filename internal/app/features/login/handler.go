// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"

	apierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/services/accounts"
	"github.com/dalemusser/studyhub/internal/app/system/auditlog"
	"github.com/dalemusser/studyhub/internal/app/system/jsonio"
	"github.com/dalemusser/studyhub/internal/app/system/ratelimit"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves signup and login under /auth.
type Handler struct {
	Svc      *accounts.Service
	AuditLog *auditlog.Logger
	ErrLog   *apierrors.ErrorLogger
	Limiter  *ratelimit.Limiter
	Log      *zap.Logger
}

// NewHandler builds a Handler. limiter bounds login attempts per client IP
// and may be nil to disable limiting.
func NewHandler(svc *accounts.Service, audit *auditlog.Logger, errLog *apierrors.ErrorLogger, limiter *ratelimit.Limiter, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		AuditLog: audit,
		ErrLog:   errLog,
		Limiter:  limiter,
		Log:      logger,
	}
}

// HandleSignup handles POST /auth/signup.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in accounts.SignupInput
	if err := jsonio.Decode(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "decode signup", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	res, err := h.Svc.Signup(ctx, in)
	if err != nil {
		h.ErrLog.Respond(w, r, "signup", err)
		return
	}
	h.AuditLog.Signup(ctx, r, res.User.ID)
	jsonio.Write(w, http.StatusCreated, res)
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in accounts.LoginInput
	if err := jsonio.Decode(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "decode login", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	res, err := h.Svc.Login(ctx, in)
	if err != nil {
		var lf *accounts.LoginFailure
		if errors.As(err, &lf) {
			switch lf.Reason {
			case accounts.ReasonUnknownEmail:
				h.AuditLog.LoginFailedUserNotFound(ctx, r, lf.Email)
			case accounts.ReasonWrongPassword:
				h.AuditLog.LoginFailedWrongPassword(ctx, r, lf.UserID)
			}
		}
		h.ErrLog.Respond(w, r, "login", err)
		return
	}
	h.AuditLog.LoginSuccess(ctx, r, res.User.ID)
	jsonio.Write(w, http.StatusOK, res)
}

// rateLimited rejects a login over the per-IP limit.
func (h *Handler) rateLimited(w http.ResponseWriter, r *http.Request) {
	h.AuditLog.LoginFailedRateLimit(r.Context(), r)
	h.Log.Info("login rate limited", zap.String("ip", ratelimit.ClientIP(r)))
	jsonio.Error(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
}
