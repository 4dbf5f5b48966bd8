// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/studyhub/internal/app/system/normalize"
	"github.com/dalemusser/studyhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// Create inserts u with a fresh ID, normalized name/email and timestamps.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

// UpdateName sets a new display name.
func (s *Store) UpdateName(ctx context.Context, id primitive.ObjectID, name string) error {
	return s.set(ctx, id, bson.M{"name": normalize.Name(name)})
}

// UpdatePasswordHash replaces the stored password hash.
func (s *Store) UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	return s.set(ctx, id, bson.M{"password_hash": hash})
}

func (s *Store) set(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SummariesByIDs returns the public identity of each existing user in ids.
// Unknown ids are absent from the map.
func (s *Store) SummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "name": 1, "email": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.UserSummary
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, cur.Err()
}
