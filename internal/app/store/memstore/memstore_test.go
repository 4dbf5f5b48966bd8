package memstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/studyhub/internal/app/store/audit"
	coursestore "github.com/dalemusser/studyhub/internal/app/store/courses"
	groupstore "github.com/dalemusser/studyhub/internal/app/store/groups"
	"github.com/dalemusser/studyhub/internal/app/store/memstore"
	userstore "github.com/dalemusser/studyhub/internal/app/store/users"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCourses_DuplicateCodeIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	courses := memstore.New().Courses()

	if _, err := courses.Create(ctx, models.Course{Name: "Intro", Code: "CS101"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := courses.Create(ctx, models.Course{Name: "Intro again", Code: "cs101"})
	if !errors.Is(err, coursestore.ErrDuplicateCode) {
		t.Errorf("err = %v, want ErrDuplicateCode", err)
	}
}

func TestCourses_ListSortedByCode(t *testing.T) {
	ctx := context.Background()
	courses := memstore.New().Courses()
	for _, code := range []string{"MATH200", "CS101", "BIO110"} {
		if _, err := courses.Create(ctx, models.Course{Name: code, Code: code}); err != nil {
			t.Fatalf("Create %s failed: %v", code, err)
		}
	}
	list, err := courses.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"BIO110", "CS101", "MATH200"}
	for i, c := range list {
		if c.Code != want[i] {
			t.Errorf("list[%d] = %s, want %s", i, c.Code, want[i])
		}
	}
}

func TestGroups_Membership(t *testing.T) {
	ctx := context.Background()
	groups := memstore.New().Groups()
	host, other := primitive.NewObjectID(), primitive.NewObjectID()

	g, err := groups.Create(ctx, models.StudyGroup{Name: "Algo", CreatorID: host, CourseID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(g.MemberIDs) != 1 || g.MemberIDs[0] != host {
		t.Fatalf("members = %v, want [host]", g.MemberIDs)
	}

	if _, err := groups.AddMember(ctx, g.ID, other); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if _, err := groups.AddMember(ctx, g.ID, other); !errors.Is(err, groupstore.ErrAlreadyMember) {
		t.Errorf("second AddMember err = %v, want ErrAlreadyMember", err)
	}
	if _, err := groups.RemoveMember(ctx, g.ID, host); !errors.Is(err, groupstore.ErrHostCannotLeave) {
		t.Errorf("RemoveMember(host) err = %v, want ErrHostCannotLeave", err)
	}
	updated, err := groups.RemoveMember(ctx, g.ID, other)
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if updated.HasMember(other) {
		t.Error("other should no longer be a member")
	}
	if _, err := groups.RemoveMember(ctx, g.ID, other); !errors.Is(err, groupstore.ErrNotMember) {
		t.Errorf("RemoveMember again err = %v, want ErrNotMember", err)
	}
	if _, err := groups.AddMember(ctx, primitive.NewObjectID(), other); !errors.Is(err, groupstore.ErrNotFound) {
		t.Errorf("AddMember(missing) err = %v, want ErrNotFound", err)
	}
}

func TestGroups_ReturnedSlicesDoNotAliasState(t *testing.T) {
	ctx := context.Background()
	groups := memstore.New().Groups()
	g, _ := groups.Create(ctx, models.StudyGroup{Name: "Algo", CreatorID: primitive.NewObjectID()})

	g.MemberIDs[0] = primitive.NewObjectID()

	stored, err := groups.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.MemberIDs[0] != stored.CreatorID {
		t.Error("mutating a returned group changed stored state")
	}
}

func TestGroups_FindFilters(t *testing.T) {
	ctx := context.Background()
	groups := memstore.New().Groups()
	course := primitive.NewObjectID()
	member := primitive.NewObjectID()

	a, _ := groups.Create(ctx, models.StudyGroup{Name: "A", CreatorID: member, CourseID: course, Language: "English", SkillLevel: models.SkillBeginner})
	groups.Create(ctx, models.StudyGroup{Name: "B", CreatorID: primitive.NewObjectID(), CourseID: course, Language: "Spanish"})
	groups.Create(ctx, models.StudyGroup{Name: "C", CreatorID: primitive.NewObjectID(), CourseID: primitive.NewObjectID(), Language: "english"})

	tests := []struct {
		name   string
		filter models.GroupFilter
		want   int
	}{
		{"none", models.GroupFilter{}, 3},
		{"course", models.GroupFilter{CourseID: &course}, 2},
		{"language substring any case", models.GroupFilter{Language: "ENG"}, 2},
		{"language is literal", models.GroupFilter{Language: "e.g"}, 0},
		{"skill", models.GroupFilter{SkillLevel: models.SkillBeginner}, 1},
		{"member", models.GroupFilter{MemberID: &member}, 1},
		{"combined", models.GroupFilter{CourseID: &course, Language: "span"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := groups.Find(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Find failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}

	got, _ := groups.Find(ctx, models.GroupFilter{MemberID: &member})
	if len(got) == 1 && got[0].ID != a.ID {
		t.Errorf("member filter returned %s, want %s", got[0].ID.Hex(), a.ID.Hex())
	}
}

func TestSessions_ListByGroupOrdersByDate(t *testing.T) {
	ctx := context.Background()
	sessions := memstore.New().Sessions()
	gid := primitive.NewObjectID()

	for _, d := range []string{"2024-03-05", "2024-01-10", "2024-02-20"} {
		date, _ := time.Parse("2006-01-02", d)
		if _, err := sessions.Create(ctx, models.StudySession{GroupID: gid, Date: date, Topic: d}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	sessions.Create(ctx, models.StudySession{GroupID: primitive.NewObjectID(), Date: time.Now()})

	list, err := sessions.ListByGroup(ctx, gid)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	want := []string{"2024-01-10", "2024-02-20", "2024-03-05"}
	if len(list) != len(want) {
		t.Fatalf("len = %d, want %d", len(list), len(want))
	}
	for i, ss := range list {
		if ss.Topic != want[i] {
			t.Errorf("list[%d] = %s, want %s", i, ss.Topic, want[i])
		}
	}

	n, err := sessions.DeleteByGroup(ctx, gid)
	if err != nil || n != 3 {
		t.Errorf("DeleteByGroup = %d, %v; want 3, nil", n, err)
	}
}

func TestUsers_EmailNormalizedAndUnique(t *testing.T) {
	ctx := context.Background()
	users := memstore.New().Users()

	u, err := users.Create(ctx, models.User{Name: "  Ada   Lovelace ", Email: " Ada@Example.com ", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.Email != "ada@example.com" || u.Name != "Ada Lovelace" {
		t.Errorf("got name=%q email=%q", u.Name, u.Email)
	}
	if _, err := users.Create(ctx, models.User{Name: "Other", Email: "ADA@example.com"}); !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
	if _, err := users.GetByEmail(ctx, "ADA@EXAMPLE.COM"); err != nil {
		t.Errorf("GetByEmail failed: %v", err)
	}
	if err := users.UpdateName(ctx, primitive.NewObjectID(), "x"); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("UpdateName(missing) err = %v, want ErrNotFound", err)
	}
}

func TestRun_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	groups, sessions := db.Groups(), db.Sessions()

	g, _ := groups.Create(ctx, models.StudyGroup{Name: "Algo", CreatorID: primitive.NewObjectID()})
	sessions.Create(ctx, models.StudySession{GroupID: g.ID, Date: time.Now()})

	boom := errors.New("boom")
	err := db.Run(ctx, func(ctx context.Context) error {
		if _, err := sessions.DeleteByGroup(ctx, g.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Run err = %v, want boom", err)
	}
	if list, _ := sessions.ListByGroup(ctx, g.ID); len(list) != 1 {
		t.Errorf("sessions after rollback = %d, want 1", len(list))
	}

	err = db.Run(ctx, func(ctx context.Context) error {
		if _, err := sessions.DeleteByGroup(ctx, g.ID); err != nil {
			return err
		}
		_, err := groups.Delete(ctx, g.ID)
		return err
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := groups.GetByID(ctx, g.ID); !errors.Is(err, groupstore.ErrNotFound) {
		t.Errorf("group should be gone, err = %v", err)
	}
}

func TestRun_RollbackKeepsWritesMadeOutsideIt(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	users := db.Users()

	started, release := make(chan struct{}), make(chan struct{})
	runDone := make(chan error, 1)
	go func() {
		runDone <- db.Run(ctx, func(ctx context.Context) error {
			if _, err := users.Create(ctx, models.User{Name: "Ada", Email: "ada@example.com"}); err != nil {
				return err
			}
			close(started)
			<-release
			return errors.New("boom")
		})
	}()
	<-started

	createDone := make(chan error, 1)
	go func() {
		_, err := users.Create(ctx, models.User{Name: "Bob", Email: "bob@example.com"})
		createDone <- err
	}()
	select {
	case err := <-createDone:
		t.Fatalf("write outside Run finished while Run was open (err %v)", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	if err := <-runDone; err == nil {
		t.Fatal("Run should report fn's error")
	}
	if err := <-createDone; err != nil {
		t.Fatalf("Create(bob) failed: %v", err)
	}
	if _, err := users.GetByEmail(ctx, "bob@example.com"); err != nil {
		t.Errorf("bob lost on rollback: %v", err)
	}
	if _, err := users.GetByEmail(ctx, "ada@example.com"); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("ada should be rolled back, err = %v", err)
	}
}

func TestRun_NestedRunJoinsOuter(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	g, _ := db.Groups().Create(ctx, models.StudyGroup{Name: "Algo", CreatorID: primitive.NewObjectID()})

	err := db.Run(ctx, func(ctx context.Context) error {
		if err := db.Run(ctx, func(ctx context.Context) error {
			_, err := db.Groups().Delete(ctx, g.ID)
			return err
		}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("Run should report fn's error")
	}
	if _, err := db.Groups().GetByID(ctx, g.ID); err != nil {
		t.Errorf("inner delete should roll back with the outer Run: %v", err)
	}
}

func TestGroups_Touch(t *testing.T) {
	ctx := context.Background()
	groups := memstore.New().Groups()
	g, _ := groups.Create(ctx, models.StudyGroup{Name: "Algo", CreatorID: primitive.NewObjectID()})

	if err := groups.Touch(ctx, g.ID); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	if got, _ := groups.GetByID(ctx, g.ID); got.UpdatedAt.Before(g.UpdatedAt) {
		t.Errorf("UpdatedAt moved backwards: %v < %v", got.UpdatedAt, g.UpdatedAt)
	}
	if err := groups.Touch(ctx, primitive.NewObjectID()); !errors.Is(err, groupstore.ErrNotFound) {
		t.Errorf("Touch(missing) err = %v, want ErrNotFound", err)
	}
}

func TestAudit_QueryNewestFirst(t *testing.T) {
	ctx := context.Background()
	a := memstore.New().Audit()
	uid := primitive.NewObjectID()
	base := time.Now().UTC()

	a.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &uid, Timestamp: base})
	a.Log(ctx, audit.Event{Category: audit.CategoryActivity, EventType: audit.EventGroupCreated, UserID: &uid, Timestamp: base.Add(time.Second)})
	a.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedUserNotFound, Timestamp: base.Add(2 * time.Second)})

	events, err := a.Query(ctx, audit.QueryFilter{UserID: &uid})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].EventType != audit.EventGroupCreated {
		t.Errorf("first event = %s, want %s", events[0].EventType, audit.EventGroupCreated)
	}

	limited, _ := a.Query(ctx, audit.QueryFilter{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("limited len = %d, want 1", len(limited))
	}
}
