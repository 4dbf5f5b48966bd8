package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts documents directly into a test database, bypassing the
// stores so store tests start from known state.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

// CreateUser creates a test user. The password hash is a placeholder.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateCourse creates a test course.
func (f *Fixtures) CreateCourse(ctx context.Context, name, code string) models.Course {
	f.t.Helper()
	now := time.Now().UTC()
	c := models.Course{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Code:      code,
		CodeCI:    text.Fold(code),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "courses", c)
	return c
}

// CreateGroup creates a test group hosted by creatorID with the given
// extra members.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, creatorID, courseID primitive.ObjectID, members ...primitive.ObjectID) models.StudyGroup {
	f.t.Helper()
	now := time.Now().UTC()
	g := models.StudyGroup{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatorID: creatorID,
		CourseID:  courseID,
		MemberIDs: append([]primitive.ObjectID{creatorID}, members...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "study_groups", g)
	return g
}

// CreateSession creates a test session for groupID on date.
func (f *Fixtures) CreateSession(ctx context.Context, groupID, creatorID primitive.ObjectID, topic string, date time.Time) models.StudySession {
	f.t.Helper()
	now := time.Now().UTC()
	s := models.StudySession{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		CreatorID: creatorID,
		Date:      date,
		Topic:     topic,
		Location:  models.DefaultSessionLocation,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "study_sessions", s)
	return s
}
