// internal/app/store/studysessions/sessionstore.go
package studysessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("study session not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("study_sessions")}
}

func (s *Store) Create(ctx context.Context, ss models.StudySession) (models.StudySession, error) {
	now := time.Now().UTC()
	ss.ID = primitive.NewObjectID()
	ss.CreatedAt = now
	ss.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, ss); err != nil {
		return models.StudySession{}, err
	}
	return ss, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.StudySession, error) {
	var ss models.StudySession
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ss); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.StudySession{}, ErrNotFound
		}
		return models.StudySession{}, err
	}
	return ss, nil
}

// ListByGroup returns a group's sessions by date, then creation time, then id.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.StudySession, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	sessions := []models.StudySession{}
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Delete removes one session. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByGroup removes every session of a group.
// Returns the number of documents deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
