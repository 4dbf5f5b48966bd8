package groups_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	apierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/features/groups"
	"github.com/dalemusser/studyhub/internal/app/services/studygroups"
	"github.com/dalemusser/studyhub/internal/app/store/audit"
	"github.com/dalemusser/studyhub/internal/app/store/memstore"
	"github.com/dalemusser/studyhub/internal/app/system/auditlog"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type env struct {
	db     *memstore.DB
	h      *groups.Handler
	course models.Course
	host   models.User
	member models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	db := memstore.New()
	logger := zap.NewNop()
	svc := studygroups.New(db.Groups(), db.Sessions(), db.Courses(), db.Users(), db, logger)
	al := auditlog.New(db.Audit(), logger, auditlog.Config{Auth: auditlog.ModeDB, Activity: auditlog.ModeDB})
	h := groups.NewHandler(svc, al, apierrors.NewErrorLogger(logger), logger)

	c, _ := db.Courses().Create(ctx, models.Course{Name: "Intro", Code: "CS101"})
	host, _ := db.Users().Create(ctx, models.User{Name: "Host", Email: "host@example.com", PasswordHash: "x"})
	member, _ := db.Users().Create(ctx, models.User{Name: "Member", Email: "member@example.com", PasswordHash: "x"})
	return &env{db: db, h: h, course: c, host: host, member: member}
}

func (e *env) createGroup(t *testing.T) models.StudyGroup {
	t.Helper()
	rec := testutil.NewRecorder()
	req := testutil.NewAuthenticatedRequest("POST", "/study-groups", map[string]any{
		"name":       "Algorithms",
		"course":     e.course.ID.Hex(),
		"skillLevel": "Beginner",
	}, e.host.ID)
	e.h.HandleCreate(rec, req)
	rec.AssertStatus(t, http.StatusCreated)
	var g models.StudyGroup
	rec.Decode(t, &g)
	return g
}

func (e *env) events(t *testing.T, eventType string) []audit.Event {
	t.Helper()
	ev, err := e.db.Audit().Query(context.Background(), audit.QueryFilter{EventType: eventType})
	if err != nil {
		t.Fatalf("query audit: %v", err)
	}
	return ev
}

func TestHandleCreate(t *testing.T) {
	e := newEnv(t)
	g := e.createGroup(t)

	if g.CreatorID != e.host.ID || len(g.MemberIDs) != 1 {
		t.Errorf("unexpected group %+v", g)
	}
	if n := len(e.events(t, audit.EventGroupCreated)); n != 1 {
		t.Errorf("group_created events = %d, want 1", n)
	}
}

func TestHandleCreate_Errors(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name   string
		body   any
		status int
		msg    string
	}{
		{"missing course", map[string]any{"name": "G"}, http.StatusBadRequest, "Course is required."},
		{"missing name", map[string]any{"course": e.course.ID.Hex()}, http.StatusBadRequest, "Name is required."},
		{"unknown course", map[string]any{"name": "G", "course": primitive.NewObjectID().Hex()}, http.StatusNotFound, "Course not found"},
		{"malformed json", "{", http.StatusBadRequest, "invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			e.h.HandleCreate(rec, testutil.NewAuthenticatedRequest("POST", "/study-groups", tt.body, e.host.ID))
			rec.AssertStatus(t, tt.status)
			rec.AssertMsg(t, tt.msg)
		})
	}
}

func TestServeList(t *testing.T) {
	e := newEnv(t)
	g := e.createGroup(t)

	rec := testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/study-groups?course="+e.course.ID.Hex(), nil, e.member.ID))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Data []models.GroupDetail `json:"data"`
	}
	rec.Decode(t, &body)
	if len(body.Data) != 1 || body.Data[0].ID != g.ID {
		t.Fatalf("data = %+v", body.Data)
	}
	if body.Data[0].Course == nil || body.Data[0].Course.Code != "CS101" {
		t.Errorf("course not populated")
	}
	if len(body.Data[0].Members) != 1 || body.Data[0].Members[0].Email != "host@example.com" {
		t.Errorf("members = %+v", body.Data[0].Members)
	}

	rec = testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/study-groups?type=my", nil, e.member.ID))
	rec.Decode(t, &body)
	if len(body.Data) != 0 {
		t.Errorf("my groups for non-member = %d, want 0", len(body.Data))
	}
}

func TestServeList_NoPasswordHashesLeak(t *testing.T) {
	e := newEnv(t)
	e.createGroup(t)

	rec := testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/study-groups", nil, e.host.ID))
	var raw struct {
		Data []struct {
			Members []map[string]any `json:"members"`
		} `json:"data"`
	}
	rec.Decode(t, &raw)
	for _, m := range raw.Data[0].Members {
		for k := range m {
			if k != "id" && k != "name" && k != "email" {
				t.Errorf("unexpected member field %q", k)
			}
		}
	}
}

func TestJoinLeave(t *testing.T) {
	e := newEnv(t)
	g := e.createGroup(t)

	join := func() *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("PUT", "/study-groups/"+g.ID.Hex()+"/join", nil, e.member.ID), "id", g.ID.Hex())
		e.h.HandleJoin(rec, req)
		return rec
	}
	leave := func(uid primitive.ObjectID) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("PUT", "/study-groups/"+g.ID.Hex()+"/leave", nil, uid), "id", g.ID.Hex())
		e.h.HandleLeave(rec, req)
		return rec
	}

	rec := join()
	rec.AssertStatus(t, http.StatusOK)
	var updated models.StudyGroup
	rec.Decode(t, &updated)
	if !updated.HasMember(e.member.ID) {
		t.Error("member should have joined")
	}

	rec = join()
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertMsg(t, "Already a member of this group")

	leave(e.host.ID).AssertStatus(t, http.StatusConflict)
	leave(e.member.ID).AssertStatus(t, http.StatusOK)

	rec = leave(e.member.ID)
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertMsg(t, "You are not a member of this group")

	if n := len(e.events(t, audit.EventMemberJoined)); n != 1 {
		t.Errorf("member_joined events = %d, want 1", n)
	}
	if n := len(e.events(t, audit.EventMemberLeft)); n != 1 {
		t.Errorf("member_left events = %d, want 1", n)
	}
}

func TestServeView_NotFound(t *testing.T) {
	e := newEnv(t)
	id := primitive.NewObjectID().Hex()
	rec := testutil.NewRecorder()
	e.h.ServeView(rec, testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("GET", "/study-groups/"+id, nil, e.host.ID), "id", id))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertMsg(t, "Study group not found")
}

func TestHandleDelete(t *testing.T) {
	e := newEnv(t)
	g := e.createGroup(t)
	e.db.Sessions().Create(context.Background(), models.StudySession{GroupID: g.ID, CreatorID: e.host.ID, Date: time.Now()})

	del := func(uid primitive.ObjectID) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("DELETE", "/study-groups/"+g.ID.Hex(), nil, uid), "id", g.ID.Hex())
		e.h.HandleDelete(rec, req)
		return rec
	}

	rec := del(e.member.ID)
	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertMsg(t, "Only the host can delete this group")

	rec = del(e.host.ID)
	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		SessionsRemoved int64 `json:"sessionsRemoved"`
	}
	rec.Decode(t, &body)
	if body.SessionsRemoved != 1 {
		t.Errorf("sessionsRemoved = %d, want 1", body.SessionsRemoved)
	}

	del(e.host.ID).AssertStatus(t, http.StatusNotFound)
}

func TestHandleDelete_PaddedIDAuditsGroup(t *testing.T) {
	e := newEnv(t)
	g := e.createGroup(t)

	padded := " " + g.ID.Hex() + " "
	rec := testutil.NewRecorder()
	req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("DELETE", "/study-groups/"+g.ID.Hex(), nil, e.host.ID), "id", padded)
	e.h.HandleDelete(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	ev := e.events(t, audit.EventGroupDeleted)
	if len(ev) != 1 {
		t.Fatalf("GroupDeleted events = %d, want 1", len(ev))
	}
	if ev[0].GroupID == nil || *ev[0].GroupID != g.ID {
		t.Errorf("audited group = %v, want %s", ev[0].GroupID, g.ID.Hex())
	}
}

func TestRoutes_RequireBearer(t *testing.T) {
	e := newEnv(t)
	az, err := auth.NewAuthorizer("routes-test-secret-0123456789abcdef", time.Hour, bcrypt.MinCost, zap.NewNop())
	if err != nil {
		t.Fatalf("NewAuthorizer: %v", err)
	}
	router := groups.Routes(e.h, az)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest("GET", "/", nil))
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertMsg(t, "Authorization token missing")

	tok, _ := az.Issue(e.host.ID)
	req := testutil.NewJSONRequest("POST", "/", map[string]any{"name": "G", "course": e.course.ID.Hex()})
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	var g models.StudyGroup
	rec.Decode(t, &g)
	req = testutil.NewJSONRequest("GET", "/"+g.ID.Hex(), nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)
}
