// internal/app/services/studygroups/service.go
package studygroups

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/studyhub/internal/app/policy/grouppolicy"
	coursestore "github.com/dalemusser/studyhub/internal/app/store/courses"
	groupstore "github.com/dalemusser/studyhub/internal/app/store/groups"
	"github.com/dalemusser/studyhub/internal/app/system/apperr"
	"github.com/dalemusser/studyhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studyhub/internal/app/system/inputval"
	"github.com/dalemusser/studyhub/internal/app/system/normalize"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgGroupNotFound  = "Study group not found"
	msgCourseNotFound = "Course not found"
	msgAlreadyMember  = "Already a member of this group"
	msgNotMember      = "You are not a member of this group"
	msgHostLeave      = "the host cannot leave the group; delete it instead"
	msgNotHost        = "Only the host can delete this group"
)

// List modes for ListQuery.Type.
const (
	TypeMy       = "my"
	TypeDiscover = "discover"
)

type GroupStore interface {
	Create(ctx context.Context, g models.StudyGroup) (models.StudyGroup, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.StudyGroup, error)
	Find(ctx context.Context, f models.GroupFilter) ([]models.StudyGroup, error)
	AddMember(ctx context.Context, groupID, userID primitive.ObjectID) (models.StudyGroup, error)
	RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) (models.StudyGroup, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type SessionStore interface {
	DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error)
}

type CourseStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Course, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Course, error)
}

type UserStore interface {
	SummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error)
}

// Transactor runs fn so that its writes commit or fail together.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service owns the study group lifecycle.
type Service struct {
	groups   GroupStore
	sessions SessionStore
	courses  CourseStore
	users    UserStore
	tx       Transactor
	log      *zap.Logger
}

func New(groups GroupStore, sessions SessionStore, courses CourseStore, users UserStore, tx Transactor, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{groups: groups, sessions: sessions, courses: courses, users: users, tx: tx, log: log}
}

// ListQuery carries the raw query-string filters.
type ListQuery struct {
	Course     string
	Language   string
	SkillLevel string
	Type       string
}

// ListGroups returns the populated groups matching q. A course value that is
// not a valid id matches nothing.
func (s *Service) ListGroups(ctx context.Context, callerID primitive.ObjectID, q ListQuery) ([]models.GroupDetail, error) {
	var f models.GroupFilter
	if c := normalize.QueryParam(q.Course); c != "" {
		oid, err := primitive.ObjectIDFromHex(c)
		if err != nil {
			return []models.GroupDetail{}, nil
		}
		f.CourseID = &oid
	}
	f.Language = normalize.QueryParam(q.Language)
	f.SkillLevel = normalize.QueryParam(q.SkillLevel)
	if normalize.QueryParam(q.Type) == TypeMy {
		f.MemberID = &callerID
	}

	groups, err := s.groups.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("find groups: %w", err)
	}
	return s.populate(ctx, groups)
}

// GetGroup returns one populated group.
func (s *Service) GetGroup(ctx context.Context, groupID string) (models.GroupDetail, error) {
	g, err := s.load(ctx, groupID)
	if err != nil {
		return models.GroupDetail{}, err
	}
	out, err := s.populate(ctx, []models.StudyGroup{g})
	if err != nil {
		return models.GroupDetail{}, err
	}
	return out[0], nil
}

// populate resolves each group's course and member summaries in two
// batched lookups. Members whose user record is gone are omitted.
func (s *Service) populate(ctx context.Context, groups []models.StudyGroup) ([]models.GroupDetail, error) {
	if len(groups) == 0 {
		return []models.GroupDetail{}, nil
	}
	courseIDs := lo.Uniq(lo.Map(groups, func(g models.StudyGroup, _ int) primitive.ObjectID { return g.CourseID }))
	memberIDs := lo.Uniq(lo.FlatMap(groups, func(g models.StudyGroup, _ int) []primitive.ObjectID { return g.MemberIDs }))

	courses, err := s.courses.GetByIDs(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	users, err := s.users.SummariesByIDs(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	return lo.Map(groups, func(g models.StudyGroup, _ int) models.GroupDetail {
		d := models.GroupDetail{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			CreatorID:   g.CreatorID,
			Language:    g.Language,
			SkillLevel:  g.SkillLevel,
			Members:     []models.UserSummary{},
			CreatedAt:   g.CreatedAt,
			UpdatedAt:   g.UpdatedAt,
		}
		if c, ok := courses[g.CourseID]; ok {
			d.Course = &c
		}
		for _, id := range g.MemberIDs {
			if u, ok := users[id]; ok {
				d.Members = append(d.Members, u)
			}
		}
		return d
	}), nil
}

// CreateGroupInput is the body of a create request.
type CreateGroupInput struct {
	Name        string `json:"name" validate:"required,max=100" label:"Name"`
	Course      string `json:"course" validate:"required,objectid" label:"Course"`
	Language    string `json:"language" validate:"max=50" label:"Language"`
	SkillLevel  string `json:"skillLevel" validate:"skilllevel" label:"Skill level"`
	Description string `json:"description" validate:"max=1000" label:"Description"`
}

func (in CreateGroupInput) clean() CreateGroupInput {
	in.Name = normalize.Name(htmlsanitize.PlainText(in.Name))
	in.Course = normalize.QueryParam(in.Course)
	in.Language = normalize.Name(htmlsanitize.PlainText(in.Language))
	in.SkillLevel = normalize.QueryParam(in.SkillLevel)
	in.Description = htmlsanitize.PlainText(in.Description)
	return in
}

// CreateGroup creates a group hosted by userID, who becomes its first member.
func (s *Service) CreateGroup(ctx context.Context, userID primitive.ObjectID, in CreateGroupInput) (models.StudyGroup, error) {
	in = in.clean()
	if err := inputval.Validate(in).Err(); err != nil {
		return models.StudyGroup{}, err
	}
	courseID, _ := primitive.ObjectIDFromHex(in.Course)
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, coursestore.ErrNotFound) {
			return models.StudyGroup{}, apperr.NotFoundErr(msgCourseNotFound)
		}
		return models.StudyGroup{}, fmt.Errorf("load course: %w", err)
	}

	g, err := s.groups.Create(ctx, models.StudyGroup{
		Name:        in.Name,
		Description: in.Description,
		CreatorID:   userID,
		CourseID:    courseID,
		Language:    in.Language,
		SkillLevel:  in.SkillLevel,
		MemberIDs:   []primitive.ObjectID{userID},
	})
	if err != nil {
		return models.StudyGroup{}, fmt.Errorf("create group: %w", err)
	}
	return g, nil
}

// JoinGroup adds userID to the group's members.
func (s *Service) JoinGroup(ctx context.Context, userID primitive.ObjectID, groupID string) (models.StudyGroup, error) {
	gid, err := parseGroupID(groupID)
	if err != nil {
		return models.StudyGroup{}, err
	}
	g, err := s.groups.AddMember(ctx, gid, userID)
	if err != nil {
		return models.StudyGroup{}, mapStoreErr("join group", err)
	}
	return g, nil
}

// LeaveGroup removes userID from the group's members. The host cannot leave.
func (s *Service) LeaveGroup(ctx context.Context, userID primitive.ObjectID, groupID string) (models.StudyGroup, error) {
	gid, err := parseGroupID(groupID)
	if err != nil {
		return models.StudyGroup{}, err
	}
	g, err := s.groups.RemoveMember(ctx, gid, userID)
	if err != nil {
		return models.StudyGroup{}, mapStoreErr("leave group", err)
	}
	return g, nil
}

// DeleteResult reports what DeleteGroup removed.
type DeleteResult struct {
	GroupID         primitive.ObjectID
	SessionsRemoved int64
}

// DeleteGroup removes the group and all of its sessions in one transaction.
// Only the host may delete.
func (s *Service) DeleteGroup(ctx context.Context, userID primitive.ObjectID, groupID string) (DeleteResult, error) {
	g, err := s.load(ctx, groupID)
	if err != nil {
		return DeleteResult{}, err
	}
	if !grouppolicy.CanDeleteGroup(g, userID) {
		return DeleteResult{}, apperr.ForbiddenErr(msgNotHost)
	}

	res := DeleteResult{GroupID: g.ID}
	err = s.tx.Run(ctx, func(ctx context.Context) error {
		n, err := s.sessions.DeleteByGroup(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}
		deleted, err := s.groups.Delete(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		if deleted == 0 {
			return apperr.NotFoundErr(msgGroupNotFound)
		}
		res.SessionsRemoved = n
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	s.log.Debug("group deleted",
		zap.String("group_id", g.ID.Hex()),
		zap.Int64("sessions_removed", res.SessionsRemoved))
	return res, nil
}

func (s *Service) load(ctx context.Context, groupID string) (models.StudyGroup, error) {
	gid, err := parseGroupID(groupID)
	if err != nil {
		return models.StudyGroup{}, err
	}
	g, err := s.groups.GetByID(ctx, gid)
	if err != nil {
		return models.StudyGroup{}, mapStoreErr("load group", err)
	}
	return g, nil
}

// parseGroupID treats a malformed id as a group that does not exist.
func parseGroupID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(normalize.QueryParam(id))
	if err != nil {
		return primitive.NilObjectID, apperr.NotFoundErr(msgGroupNotFound)
	}
	return oid, nil
}

func mapStoreErr(op string, err error) error {
	switch {
	case errors.Is(err, groupstore.ErrNotFound):
		return apperr.NotFoundErr(msgGroupNotFound)
	case errors.Is(err, groupstore.ErrAlreadyMember):
		return apperr.ConflictErr(msgAlreadyMember)
	case errors.Is(err, groupstore.ErrNotMember):
		return apperr.ConflictErr(msgNotMember)
	case errors.Is(err, groupstore.ErrHostCannotLeave):
		return apperr.ConflictErr(msgHostLeave)
	}
	return fmt.Errorf("%s: %w", op, err)
}
