// internal/app/policy/grouppolicy.go
package grouppolicy

import (
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CanDeleteGroup reports whether userID may delete g. Only the host can.
func CanDeleteGroup(g models.StudyGroup, userID primitive.ObjectID) bool {
	return g.IsHost(userID)
}

// CanUseSessions reports whether userID may schedule or list sessions in g.
func CanUseSessions(g models.StudyGroup, userID primitive.ObjectID) bool {
	return g.HasMember(userID)
}

// CanDeleteSession reports whether userID may delete s:
//   - the session's creator always can
//   - the host of the owning group can
//
// g is nil when the owning group no longer exists; then only the creator can.
func CanDeleteSession(s models.StudySession, g *models.StudyGroup, userID primitive.ObjectID) bool {
	if s.CreatorID == userID {
		return true
	}
	return g != nil && g.IsHost(userID)
}
