package errors_test

import (
	"errors"
	"net/http"
	"testing"

	apierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/system/apperr"
	"github.com/dalemusser/studyhub/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRespond(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantLogged bool
	}{
		{"validation", apperr.ValidationErr("Name is required."), http.StatusBadRequest, "Name is required.", false},
		{"not found", apperr.NotFoundErr("Study group not found"), http.StatusNotFound, "Study group not found", false},
		{"conflict", apperr.ConflictErr("Already a member of this group"), http.StatusConflict, "Already a member of this group", false},
		{"forbidden", apperr.ForbiddenErr("nope"), http.StatusForbidden, "nope", false},
		{"auth", apperr.AuthErr("Invalid email or password"), http.StatusUnauthorized, "Invalid email or password", false},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "internal error", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.ErrorLevel)
			el := apierrors.NewErrorLogger(zap.New(core))
			rec := testutil.NewRecorder()

			el.Respond(rec, testutil.NewJSONRequest("GET", "/x", nil), "op", tt.err)

			rec.AssertStatus(t, tt.wantStatus)
			rec.AssertMsg(t, tt.wantMsg)
			if got := logs.Len() > 0; got != tt.wantLogged {
				t.Errorf("logged at error = %v, want %v", got, tt.wantLogged)
			}
		})
	}
}

func TestLogBadRequest(t *testing.T) {
	el := apierrors.NewErrorLogger(nil)
	rec := testutil.NewRecorder()
	el.LogBadRequest(rec, testutil.NewJSONRequest("POST", "/x", nil), "bad")
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertMsg(t, "bad")
}
