// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account holder. Email is stored normalized (trimmed, lowercase)
// and is unique.
type User struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Summary returns the public projection of the user.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary is the identity shown wherever a user is referenced.
type UserSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}
