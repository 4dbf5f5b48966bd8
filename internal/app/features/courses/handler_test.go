package courses_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dalemusser/studyhub/internal/app/features/courses"
	apierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	coursesvc "github.com/dalemusser/studyhub/internal/app/services/courses"
	"github.com/dalemusser/studyhub/internal/app/store/audit"
	"github.com/dalemusser/studyhub/internal/app/store/memstore"
	"github.com/dalemusser/studyhub/internal/app/system/auditlog"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(db *memstore.DB) *courses.Handler {
	logger := zap.NewNop()
	al := auditlog.New(db.Audit(), logger, auditlog.Config{Auth: auditlog.ModeOff, Activity: auditlog.ModeDB})
	return courses.NewHandler(coursesvc.New(db.Courses()), al, apierrors.NewErrorLogger(logger), logger)
}

func TestCourses_CreateAndList(t *testing.T) {
	db := memstore.New()
	h := newHandler(db)
	uid := primitive.NewObjectID()

	for _, body := range []map[string]string{
		{"name": "Operating Systems", "code": "CS330"},
		{"name": "Intro to CS", "code": "cs101", "description": "basics"},
	} {
		rec := testutil.NewRecorder()
		h.HandleCreate(rec, testutil.NewAuthenticatedRequest("POST", "/courses", body, uid))
		rec.AssertStatus(t, http.StatusCreated)
	}

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/courses", nil, uid))
	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Data []models.Course `json:"data"`
	}
	rec.Decode(t, &body)
	if len(body.Data) != 2 || body.Data[0].Code != "CS101" || body.Data[1].Code != "CS330" {
		t.Errorf("courses = %+v", body.Data)
	}

	ev, _ := db.Audit().Query(context.Background(), audit.QueryFilter{EventType: audit.EventCourseCreated})
	if len(ev) != 2 {
		t.Errorf("course_created events = %d, want 2", len(ev))
	}
}

func TestCourses_EmptyList(t *testing.T) {
	h := newHandler(memstore.New())
	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/courses", nil, primitive.NewObjectID()))
	rec.AssertStatus(t, http.StatusOK)
	if got := rec.Body.String(); got != "{\"data\":[]}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestCourses_CreateErrors(t *testing.T) {
	h := newHandler(memstore.New())
	uid := primitive.NewObjectID()

	first := testutil.NewRecorder()
	h.HandleCreate(first, testutil.NewAuthenticatedRequest("POST", "/courses", map[string]string{"name": "Intro", "code": "CS101"}, uid))
	first.AssertStatus(t, http.StatusCreated)

	tests := []struct {
		name   string
		body   map[string]string
		status int
		msg    string
	}{
		{"missing name", map[string]string{"code": "CS200"}, http.StatusBadRequest, "Name is required."},
		{"missing code", map[string]string{"name": "Data"}, http.StatusBadRequest, "Code is required."},
		{"duplicate code", map[string]string{"name": "Again", "code": "cs101"}, http.StatusConflict, "course code already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, testutil.NewAuthenticatedRequest("POST", "/courses", tt.body, uid))
			rec.AssertStatus(t, tt.status)
			rec.AssertMsg(t, tt.msg)
		})
	}
}
