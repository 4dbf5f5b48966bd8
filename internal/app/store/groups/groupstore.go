// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound        = errors.New("study group not found")
	ErrAlreadyMember   = errors.New("user is already a member of the group")
	ErrNotMember       = errors.New("user is not a member of the group")
	ErrHostCannotLeave = errors.New("the host cannot leave the group")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("study_groups")}
}

// Create inserts g. The creator is always placed in the member set.
func (s *Store) Create(ctx context.Context, g models.StudyGroup) (models.StudyGroup, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	g.MemberIDs = lo.Uniq(append([]primitive.ObjectID{g.CreatorID}, g.MemberIDs...))
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.StudyGroup{}, err
	}
	return g, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.StudyGroup, error) {
	var g models.StudyGroup
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.StudyGroup{}, ErrNotFound
		}
		return models.StudyGroup{}, err
	}
	return g, nil
}

// Find returns the groups matching every set field of f, oldest first.
func (s *Store) Find(ctx context.Context, f models.GroupFilter) ([]models.StudyGroup, error) {
	cur, err := s.c.Find(ctx, filterDoc(f), options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	groups := []models.StudyGroup{}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func filterDoc(f models.GroupFilter) bson.M {
	q := bson.M{}
	if f.CourseID != nil {
		q["course_id"] = *f.CourseID
	}
	if f.Language != "" {
		q["language"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Language), Options: "i"}
	}
	if f.SkillLevel != "" {
		q["skill_level"] = f.SkillLevel
	}
	if f.MemberID != nil {
		q["member_ids"] = *f.MemberID
	}
	return q
}

// AddMember atomically adds userID to the member set and returns the
// updated group. The update only matches while userID is absent.
func (s *Store) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) (models.StudyGroup, error) {
	var g models.StudyGroup
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": groupID, "member_ids": bson.M{"$ne": userID}},
		bson.M{
			"$addToSet": bson.M{"member_ids": userID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&g)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.StudyGroup{}, err
	}
	if _, gerr := s.GetByID(ctx, groupID); gerr != nil {
		return models.StudyGroup{}, gerr
	}
	return models.StudyGroup{}, ErrAlreadyMember
}

// RemoveMember atomically removes userID from the member set and returns
// the updated group. The host is never removed.
func (s *Store) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) (models.StudyGroup, error) {
	var g models.StudyGroup
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": groupID, "member_ids": userID, "creator_id": bson.M{"$ne": userID}},
		bson.M{
			"$pull": bson.M{"member_ids": userID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&g)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.StudyGroup{}, err
	}
	cur, gerr := s.GetByID(ctx, groupID)
	if gerr != nil {
		return models.StudyGroup{}, gerr
	}
	if cur.IsHost(userID) {
		return models.StudyGroup{}, ErrHostCannotLeave
	}
	return models.StudyGroup{}, ErrNotMember
}

// Touch bumps updated_at on the group, or returns ErrNotFound if it no longer
// exists. Inside a transaction the write also conflicts with a concurrent
// delete of the same group.
func (s *Store) Touch(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a group by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
