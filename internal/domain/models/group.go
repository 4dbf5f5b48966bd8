// internal/domain/models/group.go
package models

import (
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudyGroup is a user-created group tied to one course.
//
// NOTE:
//   - MemberIDs is a set; it never holds the same user twice.
//   - The creator is the host and is always a member.
type StudyGroup struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"-"`
	Description string               `bson:"description" json:"description"`
	CreatorID   primitive.ObjectID   `bson:"creator_id" json:"creatorId"`
	CourseID    primitive.ObjectID   `bson:"course_id" json:"courseId"`
	Language    string               `bson:"language" json:"language"`
	SkillLevel  string               `bson:"skill_level" json:"skillLevel"`
	MemberIDs   []primitive.ObjectID `bson:"member_ids" json:"memberIds"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// HasMember reports whether userID is in the member set.
func (g StudyGroup) HasMember(userID primitive.ObjectID) bool {
	return lo.Contains(g.MemberIDs, userID)
}

// IsHost reports whether userID created the group.
func (g StudyGroup) IsHost(userID primitive.ObjectID) bool {
	return g.CreatorID == userID
}

// Skill levels a group may declare. The empty string means unspecified.
const (
	SkillBeginner     = "Beginner"
	SkillIntermediate = "Intermediate"
	SkillAdvanced     = "Advanced"
)

// SkillLevels lists the accepted non-empty skill levels.
var SkillLevels = []string{SkillBeginner, SkillIntermediate, SkillAdvanced}

// GroupFilter narrows a group listing. Zero-valued fields do not constrain.
type GroupFilter struct {
	CourseID   *primitive.ObjectID
	Language   string // case-insensitive substring match
	SkillLevel string // exact match
	MemberID   *primitive.ObjectID
}

// GroupDetail is a group with its course and members resolved for display.
// Course is nil when the referenced course no longer exists.
type GroupDetail struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	CreatorID   primitive.ObjectID `json:"creatorId"`
	Course      *Course            `json:"course"`
	Language    string             `json:"language"`
	SkillLevel  string             `json:"skillLevel"`
	Members     []UserSummary      `json:"members"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}
