// internal/domain/models/studysession.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultSessionLocation is stored when a session is created without a location.
const DefaultSessionLocation = "To be decided"

// StudySession is a scheduled meeting of a study group.
//
// Date is the calendar day of the meeting (UTC). StartTime is optional free
// text such as "18:30" or "after class"; DurationMinutes an optional
// positive length.
type StudySession struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	GroupID         primitive.ObjectID `bson:"group_id" json:"groupId"`
	CreatorID       primitive.ObjectID `bson:"creator_id" json:"creatorId"`
	Date            time.Time          `bson:"date" json:"date"`
	StartTime       string             `bson:"start_time,omitempty" json:"startTime,omitempty"`
	DurationMinutes *int               `bson:"duration_minutes,omitempty" json:"duration,omitempty"`
	Topic           string             `bson:"topic" json:"topic"`
	Location        string             `bson:"location" json:"location"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
