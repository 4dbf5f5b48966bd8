// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/studyhub/internal/app/store/audit"
	"github.com/dalemusser/studyhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination settings for a category.
const (
	ModeAll = "all" // store + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// Config holds audit logging configuration per category.
type Config struct {
	// Auth covers signup, login and password events.
	Auth string
	// Activity covers course, group, membership and session changes.
	Activity string
}

// Sink persists audit events. *audit.Store and the in-memory backend
// both satisfy it.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger records audit events to a Sink and to zap according to Config.
type Logger struct {
	sink   Sink
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. sink may be nil, which disables the db
// destination.
func New(sink Sink, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{sink: sink, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.GroupID != nil {
		fields = append(fields, zap.String("group_id", event.GroupID.Hex()))
	}
	if event.SessionID != nil {
		fields = append(fields, zap.String("session_id", event.SessionID.Hex()))
	}
	if event.CourseID != nil {
		fields = append(fields, zap.String("course_id", event.CourseID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the category's setting.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryActivity:
		setting = l.config.Activity
	}
	if setting == "" {
		setting = ModeAll
	}
	if setting == ModeOff {
		return
	}

	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.sink != nil {
		if err := l.sink.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, e audit.Event) audit.Event {
	if r != nil {
		e.IP = ratelimit.ClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	return e
}

// --- Authentication Events ---

func (l *Logger) Signup(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSignup,
		UserID:    &userID,
		Success:   true,
	}))
}

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		Success:   true,
	}))
}

// LoginFailedUserNotFound logs a login attempt for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		FailureReason: "user not found",
		Details:       map[string]string{"attempted_email": attemptedEmail},
	}))
}

func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        &userID,
		FailureReason: "wrong password",
	}))
}

func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		FailureReason: "rate limited",
	}))
}

func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventPasswordChanged,
		UserID:    &userID,
		Success:   true,
	}))
}

// --- Activity Events ---

func (l *Logger) CourseCreated(ctx context.Context, r *http.Request, actorID, courseID primitive.ObjectID, code string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryActivity,
		EventType: audit.EventCourseCreated,
		UserID:    &actorID,
		CourseID:  &courseID,
		Success:   true,
		Details:   map[string]string{"code": code},
	}))
}

func (l *Logger) GroupCreated(ctx context.Context, r *http.Request, actorID, groupID, courseID primitive.ObjectID, name string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryActivity,
		EventType: audit.EventGroupCreated,
		UserID:    &actorID,
		GroupID:   &groupID,
		CourseID:  &courseID,
		Success:   true,
		Details:   map[string]string{"name": name},
	}))
}

// GroupDeleted logs a group deletion together with the sessions it took.
func (l *Logger) GroupDeleted(ctx context.Context, r *http.Request, actorID, groupID primitive.ObjectID, sessionsRemoved int64) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryActivity,
		EventType: audit.EventGroupDeleted,
		UserID:    &actorID,
		GroupID:   &groupID,
		Success:   true,
		Details:   map[string]string{"sessions_removed": strconv.FormatInt(sessionsRemoved, 10)},
	}))
}

func (l *Logger) MemberJoined(ctx context.Context, r *http.Request, userID, groupID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryActivity,
		EventType: audit.EventMemberJoined,
		UserID:    &userID,
		GroupID:   &groupID,
		Success:   true,
	}))
}

func (l *Logger) MemberLeft(ctx context.Context, r *http.Request, userID, groupID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryActivity,
		EventType: audit.EventMemberLeft,
		UserID:    &userID,
		GroupID:   &groupID,
		Success:   true,
	}))
}

func (l *Logger) SessionCreated(ctx context.Context, r *http.Request, actorID, groupID, sessionID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryActivity,
		EventType: audit.EventSessionCreated,
		UserID:    &actorID,
		GroupID:   &groupID,
		SessionID: &sessionID,
		Success:   true,
	}))
}

func (l *Logger) SessionDeleted(ctx context.Context, r *http.Request, actorID, groupID, sessionID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryActivity,
		EventType: audit.EventSessionDeleted,
		UserID:    &actorID,
		GroupID:   &groupID,
		SessionID: &sessionID,
		Success:   true,
	}))
}
