// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth     = "auth"
	CategoryActivity = "activity"
)

// Auth event types
const (
	EventSignup                   = "signup"
	EventLoginSuccess             = "login_success"
	EventLoginFailedUserNotFound  = "login_failed_user_not_found"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLoginFailedRateLimit     = "login_failed_rate_limit"
	EventPasswordChanged          = "password_changed"
)

// Activity event types
const (
	EventCourseCreated  = "course_created"
	EventGroupCreated   = "group_created"
	EventGroupDeleted   = "group_deleted"
	EventMemberJoined   = "member_joined"
	EventMemberLeft     = "member_left"
	EventSessionCreated = "session_created"
	EventSessionDeleted = "session_deleted"
)

// Event represents an audit event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// Who acted. Nil for failed logins of unknown accounts.
	UserID *primitive.ObjectID `bson:"user_id,omitempty"`

	// What it touched
	GroupID   *primitive.ObjectID `bson:"group_id,omitempty"`
	SessionID *primitive.ObjectID `bson:"session_id,omitempty"`
	CourseID  *primitive.ObjectID `bson:"course_id,omitempty"`

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	UserID    *primitive.ObjectID
	GroupID   *primitive.ObjectID
	Category  string
	EventType string
	Since     *time.Time
	Limit     int64
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query returns matching events, most recent first. Limit defaults to 100.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["user_id"] = *filter.UserID
	}
	if filter.GroupID != nil {
		query["group_id"] = *filter.GroupID
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.EventType != "" {
		query["event_type"] = filter.EventType
	}
	if filter.Since != nil {
		query["timestamp"] = bson.M{"$gte": *filter.Since}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
