package bootstrap

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/studyhub/internal/app/store/memstore"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type client struct {
	t     *testing.T
	h     http.Handler
	token string
}

func (c client) do(method, path string, body any) *testutil.ResponseRecorder {
	c.t.Helper()
	req := testutil.NewJSONRequest(method, path, body)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := testutil.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return rec
}

func newMemoryApp(t *testing.T) (http.Handler, *memstore.DB) {
	t.Helper()
	cfg := validConfig()
	cfg.StoreBackend = BackendMemory
	cfg.BcryptCost = bcrypt.MinCost
	cfg.AuditLogActivity = "db"

	deps, err := ConnectDB(context.Background(), nil, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if err := EnsureSchema(context.Background(), nil, cfg, deps, zap.NewNop()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	h, err := BuildHandler(nil, cfg, deps, zap.NewNop())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	t.Cleanup(func() { _ = Shutdown(context.Background(), nil, cfg, deps, zap.NewNop()) })
	return h, deps.Memory
}

func signup(t *testing.T, h http.Handler, name, email string) client {
	t.Helper()
	rec := client{t: t, h: h}.do("POST", "/auth/signup", map[string]string{"name": name, "email": email, "password": "secret1"})
	rec.AssertStatus(t, http.StatusCreated)
	var body struct {
		Token string `json:"token"`
	}
	rec.Decode(t, &body)
	return client{t: t, h: h, token: body.Token}
}

func TestBuildHandler_Health(t *testing.T) {
	h, _ := newMemoryApp(t)
	rec := client{t: t, h: h}.do("GET", "/health", nil)
	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Status string `json:"status"`
	}
	rec.Decode(t, &body)
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}

func TestBuildHandler_RequiresToken(t *testing.T) {
	h, _ := newMemoryApp(t)
	anon := client{t: t, h: h}

	for _, path := range []string{"/study-groups", "/courses", "/users/me"} {
		rec := anon.do("GET", path, nil)
		rec.AssertStatus(t, http.StatusUnauthorized)
		rec.AssertMsg(t, "Authorization token missing")
	}

	bad := client{t: t, h: h, token: "not-a-jwt"}
	rec := bad.do("GET", "/study-groups", nil)
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertMsg(t, "Invalid or expired token")
}

func TestBuildHandler_UnknownRoute(t *testing.T) {
	h, _ := newMemoryApp(t)
	rec := client{t: t, h: h}.do("GET", "/nowhere", nil)
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertMsg(t, "not found")
}

// TestBuildHandler_StudyGroupLifecycle walks a course, a group, a member and a
// session through to the cascading group delete.
func TestBuildHandler_StudyGroupLifecycle(t *testing.T) {
	h, db := newMemoryApp(t)
	alice := signup(t, h, "Alice", "alice@example.com")
	bob := signup(t, h, "Bob", "bob@example.com")
	carol := signup(t, h, "Carol", "carol@example.com")

	rec := alice.do("POST", "/courses", map[string]string{"name": "Intro to CS", "code": "CS101"})
	rec.AssertStatus(t, http.StatusCreated)
	var course models.Course
	rec.Decode(t, &course)

	rec = alice.do("POST", "/study-groups", map[string]string{"name": "G", "course": course.ID.Hex(), "skillLevel": "Beginner"})
	rec.AssertStatus(t, http.StatusCreated)
	var group models.StudyGroup
	rec.Decode(t, &group)
	gid := group.ID.Hex()

	bob.do("PUT", "/study-groups/"+gid+"/join", nil).AssertStatus(t, http.StatusOK)
	bob.do("PUT", "/study-groups/"+gid+"/join", nil).AssertStatus(t, http.StatusConflict)

	rec = bob.do("GET", "/study-groups?type=my", nil)
	rec.AssertStatus(t, http.StatusOK)
	var mine struct {
		Data []models.GroupDetail `json:"data"`
	}
	rec.Decode(t, &mine)
	if len(mine.Data) != 1 || len(mine.Data[0].Members) != 2 {
		t.Fatalf("bob's groups = %+v", mine.Data)
	}

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	carol.do("POST", "/study-sessions", map[string]string{"groupId": gid, "date": tomorrow}).AssertStatus(t, http.StatusForbidden)

	rec = alice.do("POST", "/study-sessions", map[string]string{"groupId": gid, "date": tomorrow, "topic": "Recursion"})
	rec.AssertStatus(t, http.StatusCreated)
	var session models.StudySession
	rec.Decode(t, &session)
	if session.Location != "To be decided" {
		t.Errorf("location = %q, want default", session.Location)
	}
	sid := session.ID.Hex()

	rec = bob.do("GET", "/study-sessions/"+gid, nil)
	rec.AssertStatus(t, http.StatusOK)

	rec = bob.do("DELETE", "/study-sessions/"+sid, nil)
	rec.AssertStatus(t, http.StatusForbidden)

	bob.do("DELETE", "/study-groups/"+gid, nil).AssertStatus(t, http.StatusForbidden)

	rec = alice.do("DELETE", "/study-groups/"+gid, nil)
	rec.AssertStatus(t, http.StatusOK)
	var deleted struct {
		SessionsRemoved int64 `json:"sessionsRemoved"`
	}
	rec.Decode(t, &deleted)
	if deleted.SessionsRemoved != 1 {
		t.Errorf("sessionsRemoved = %d, want 1", deleted.SessionsRemoved)
	}

	alice.do("GET", "/study-groups/"+gid, nil).AssertStatus(t, http.StatusNotFound)
	alice.do("GET", "/study-sessions/"+gid, nil).AssertStatus(t, http.StatusNotFound)
	alice.do("DELETE", "/study-sessions/"+sid, nil).AssertStatus(t, http.StatusNotFound)

	if left, _ := db.Sessions().ListByGroup(context.Background(), group.ID); len(left) != 0 {
		t.Errorf("sessions left for deleted group = %d", len(left))
	}

	rec = alice.do("GET", "/audit-events?category=activity", nil)
	rec.AssertStatus(t, http.StatusOK)
	var feed struct {
		Data []struct {
			EventType string `json:"eventType"`
		} `json:"data"`
	}
	rec.Decode(t, &feed)
	want := []string{"group_deleted", "session_created", "group_created", "course_created"}
	if len(feed.Data) != len(want) {
		t.Fatalf("alice's activity = %+v, want %v", feed.Data, want)
	}
	for i, w := range want {
		if feed.Data[i].EventType != w {
			t.Errorf("activity[%d] = %s, want %s", i, feed.Data[i].EventType, w)
		}
	}
}
