// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/studyhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// eventItem is one audit event as returned to its owner. IP and user agent
// are left out.
type eventItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	GroupID       string            `json:"groupId,omitempty"`
	SessionID     string            `json:"sessionId,omitempty"`
	CourseID      string            `json:"courseId,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

func hexOrEmpty(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}

func toItem(e audit.Event) eventItem {
	return eventItem{
		ID:            e.ID.Hex(),
		Timestamp:     e.Timestamp,
		Category:      e.Category,
		EventType:     e.EventType,
		GroupID:       hexOrEmpty(e.GroupID),
		SessionID:     hexOrEmpty(e.SessionID),
		CourseID:      hexOrEmpty(e.CourseID),
		Success:       e.Success,
		FailureReason: e.FailureReason,
		Details:       e.Details,
	}
}

type listResponse struct {
	Data []eventItem `json:"data"`
}
