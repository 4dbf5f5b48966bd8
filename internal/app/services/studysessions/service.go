// internal/app/services/studysessions/service.go
package studysessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/studyhub/internal/app/policy/grouppolicy"
	groupstore "github.com/dalemusser/studyhub/internal/app/store/groups"
	studysessionstore "github.com/dalemusser/studyhub/internal/app/store/studysessions"
	"github.com/dalemusser/studyhub/internal/app/system/apperr"
	"github.com/dalemusser/studyhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studyhub/internal/app/system/inputval"
	"github.com/dalemusser/studyhub/internal/app/system/normalize"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgGroupIDRequired = "groupId is required."
	msgGroupNotFound   = "Study group not found"
	msgSessionNotFound = "Study session not found"
	msgNotMemberCreate = "You must be a member of this group to create sessions"
	msgNotMemberList   = "You must be a member of this group to view its sessions"
	msgCannotDelete    = "Only the session creator or the group host can delete this session"
	msgDateInvalid     = "Date must be a valid date."
)

// Accepted date layouts, tried in order. All are read as UTC.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

type SessionStore interface {
	Create(ctx context.Context, ss models.StudySession) (models.StudySession, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.StudySession, error)
	ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.StudySession, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// GroupStore loads the parent group. Touch must fail with
// groupstore.ErrNotFound once the group is gone.
type GroupStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.StudyGroup, error)
	Touch(ctx context.Context, id primitive.ObjectID) error
}

// Transactor runs fn as a single unit of work.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service owns the study session lifecycle.
type Service struct {
	sessions SessionStore
	groups   GroupStore
	tx       Transactor
}

func New(sessions SessionStore, groups GroupStore, tx Transactor) *Service {
	return &Service{sessions: sessions, groups: groups, tx: tx}
}

// CreateSessionInput is the body of a create request.
type CreateSessionInput struct {
	GroupID   string `json:"groupId"`
	Date      string `json:"date" validate:"required" label:"Date"`
	Topic     string `json:"topic" validate:"max=200" label:"Topic"`
	StartTime string `json:"startTime" validate:"max=20" label:"Start time"`
	Duration  *int   `json:"duration" validate:"omitempty,gt=0,max=1440" label:"Duration"`
	Location  string `json:"location" validate:"max=200" label:"Location"`
}

// CreateSession schedules a session in a group userID belongs to. Group
// existence and membership are checked before the remaining fields. The
// insert runs in a transaction that first touches the group, so it cannot
// land after the group's cascade delete.
func (s *Service) CreateSession(ctx context.Context, userID primitive.ObjectID, in CreateSessionInput) (models.StudySession, error) {
	gidStr := normalize.QueryParam(in.GroupID)
	if gidStr == "" {
		return models.StudySession{}, apperr.ValidationErr(msgGroupIDRequired)
	}
	gid, err := primitive.ObjectIDFromHex(gidStr)
	if err != nil {
		return models.StudySession{}, apperr.NotFoundErr(msgGroupNotFound)
	}
	g, err := s.groups.GetByID(ctx, gid)
	if err != nil {
		return models.StudySession{}, groupErr(err)
	}
	if !grouppolicy.CanUseSessions(g, userID) {
		return models.StudySession{}, apperr.ForbiddenErr(msgNotMemberCreate)
	}

	in.Date = strings.TrimSpace(in.Date)
	in.Topic = htmlsanitize.PlainText(in.Topic)
	in.StartTime = htmlsanitize.PlainText(in.StartTime)
	in.Location = htmlsanitize.PlainText(in.Location)
	if err := inputval.Validate(in).Err(); err != nil {
		return models.StudySession{}, err
	}
	date, ok := parseDate(in.Date)
	if !ok {
		return models.StudySession{}, apperr.ValidationErr(msgDateInvalid)
	}
	if in.Location == "" {
		in.Location = models.DefaultSessionLocation
	}

	var ss models.StudySession
	err = s.tx.Run(ctx, func(ctx context.Context) error {
		if err := s.groups.Touch(ctx, g.ID); err != nil {
			return groupErr(err)
		}
		created, err := s.sessions.Create(ctx, models.StudySession{
			GroupID:         g.ID,
			CreatorID:       userID,
			Date:            date,
			StartTime:       in.StartTime,
			DurationMinutes: in.Duration,
			Topic:           in.Topic,
			Location:        in.Location,
		})
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		ss = created
		return nil
	})
	if err != nil {
		return models.StudySession{}, err
	}
	return ss, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ListSessionsByGroup returns a group's sessions ordered by date. Only
// members may list them.
func (s *Service) ListSessionsByGroup(ctx context.Context, userID primitive.ObjectID, groupID string) ([]models.StudySession, error) {
	gid, err := primitive.ObjectIDFromHex(normalize.QueryParam(groupID))
	if err != nil {
		return nil, apperr.NotFoundErr(msgGroupNotFound)
	}
	g, err := s.groups.GetByID(ctx, gid)
	if err != nil {
		return nil, groupErr(err)
	}
	if !grouppolicy.CanUseSessions(g, userID) {
		return nil, apperr.ForbiddenErr(msgNotMemberList)
	}
	list, err := s.sessions.ListByGroup(ctx, gid)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return list, nil
}

// DeleteSession removes a session when userID created it or hosts its
// group. A session whose group is gone can be removed by its creator only.
// The deleted session is returned.
func (s *Service) DeleteSession(ctx context.Context, userID primitive.ObjectID, sessionID string) (models.StudySession, error) {
	sid, err := primitive.ObjectIDFromHex(normalize.QueryParam(sessionID))
	if err != nil {
		return models.StudySession{}, apperr.NotFoundErr(msgSessionNotFound)
	}
	ss, err := s.sessions.GetByID(ctx, sid)
	if err != nil {
		if errors.Is(err, studysessionstore.ErrNotFound) {
			return models.StudySession{}, apperr.NotFoundErr(msgSessionNotFound)
		}
		return models.StudySession{}, fmt.Errorf("load session: %w", err)
	}

	var owner *models.StudyGroup
	if ss.CreatorID != userID {
		g, err := s.groups.GetByID(ctx, ss.GroupID)
		switch {
		case err == nil:
			owner = &g
		case !errors.Is(err, groupstore.ErrNotFound):
			return models.StudySession{}, fmt.Errorf("load group: %w", err)
		}
	}
	if !grouppolicy.CanDeleteSession(ss, owner, userID) {
		return models.StudySession{}, apperr.ForbiddenErr(msgCannotDelete)
	}

	n, err := s.sessions.Delete(ctx, sid)
	if err != nil {
		return models.StudySession{}, fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return models.StudySession{}, apperr.NotFoundErr(msgSessionNotFound)
	}
	return ss, nil
}

func groupErr(err error) error {
	if errors.Is(err, groupstore.ErrNotFound) {
		return apperr.NotFoundErr(msgGroupNotFound)
	}
	return fmt.Errorf("load group: %w", err)
}
