// internal/app/features/profile/profile.go
package profile

import (
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/services/accounts"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/jsonio"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeProfile handles GET /users/me.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CallerID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	u, err := h.Svc.Profile(ctx, uid)
	if err != nil {
		h.ErrLog.Respond(w, r, "load profile", err)
		return
	}
	jsonio.Write(w, http.StatusOK, u)
}

// HandleUpdate handles PUT /users/me. Name and password may change together;
// a new password needs the current one.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CallerID(w, r)
	if !ok {
		return
	}
	var in accounts.UpdateProfileInput
	if err := jsonio.Decode(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "decode profile", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	u, changedPassword, err := h.Svc.UpdateProfile(ctx, uid, in)
	if err != nil {
		h.ErrLog.Respond(w, r, "update profile", err)
		return
	}
	if changedPassword {
		h.AuditLog.PasswordChanged(ctx, r, uid)
		h.Log.Info("password changed", zap.String("user_id", uid.Hex()))
	}
	jsonio.Write(w, http.StatusOK, u)
}
