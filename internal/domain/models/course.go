// internal/domain/models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course is a class that study groups attach to.
// CodeCI is the folded code and is unique across courses.
type Course struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Code        string             `bson:"code" json:"code"`
	CodeCI      string             `bson:"code_ci" json:"-"`
	Description string             `bson:"description" json:"description"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
