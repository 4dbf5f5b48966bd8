// internal/app/store/courses/coursestore.go
package coursestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/studyhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound      = errors.New("course not found")
	ErrDuplicateCode = errors.New("a course with this code already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("courses")}
}

// Create inserts c. Codes are unique by their folded form.
func (s *Store) Create(ctx context.Context, c models.Course) (models.Course, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CodeCI = text.Fold(c.Code)
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Course{}, ErrDuplicateCode
		}
		return models.Course{}, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Course, error) {
	var c models.Course
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Course{}, ErrNotFound
		}
		return models.Course{}, err
	}
	return c, nil
}

// List returns every course ordered by code.
func (s *Store) List(ctx context.Context) ([]models.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "code_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	courses := []models.Course{}
	if err := cur.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// GetByIDs returns the existing courses among ids keyed by id.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Course, error) {
	out := make(map[primitive.ObjectID]models.Course, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var c models.Course
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	return out, cur.Err()
}
