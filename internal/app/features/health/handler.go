package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/system/jsonio"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MongoPinger pings the primary of a Mongo deployment.
type MongoPinger struct {
	Client *mongo.Client
}

func (p MongoPinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx, readpref.Primary())
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Store Pinger
	Log   *zap.Logger
}

// NewHandler constructs a health Handler with the store pinger and logger.
func NewHandler(store Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		Store: store,
		Log:   logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected" }
//
// On store failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Ping)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		h.Log.Error("health-check: store ping failed", zap.Error(err))
		jsonio.Write(w, http.StatusServiceUnavailable, healthResponse{
			Status:   "error",
			Database: "disconnected",
			Message:  "Database unavailable",
			Error:    err.Error(),
		})
		return
	}

	jsonio.Write(w, http.StatusOK, healthResponse{Status: "ok", Database: "connected"})
}
