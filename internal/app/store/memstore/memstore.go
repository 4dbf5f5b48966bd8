// internal/app/store/memstore/memstore.go
//
// Package memstore keeps every collection in process memory. It exposes the
// same method sets and sentinel errors as the Mongo stores so services can run
// against either backend (store_backend=memory, and service/handler tests).
package memstore

import (
	"bytes"
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/studyhub/internal/app/store/audit"
	coursestore "github.com/dalemusser/studyhub/internal/app/store/courses"
	groupstore "github.com/dalemusser/studyhub/internal/app/store/groups"
	studysessionstore "github.com/dalemusser/studyhub/internal/app/store/studysessions"
	userstore "github.com/dalemusser/studyhub/internal/app/store/users"
	"github.com/dalemusser/studyhub/internal/app/system/normalize"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DB holds all collections behind one mutex. Values are stored by copy and
// slices are cloned on the way in and out, so callers never alias state.
//
// txMu orders writes against Run: writes outside a Run share it, Run holds
// it exclusively, so a rollback only ever discards the Run's own writes.
type DB struct {
	mu   sync.Mutex
	txMu sync.RWMutex

	courses  map[primitive.ObjectID]models.Course
	groups   map[primitive.ObjectID]models.StudyGroup
	sessions map[primitive.ObjectID]models.StudySession
	users    map[primitive.ObjectID]models.User
	events   []audit.Event
}

func New() *DB {
	return &DB{
		courses:  map[primitive.ObjectID]models.Course{},
		groups:   map[primitive.ObjectID]models.StudyGroup{},
		sessions: map[primitive.ObjectID]models.StudySession{},
		users:    map[primitive.ObjectID]models.User{},
	}
}

func (db *DB) Courses() *Courses   { return &Courses{db} }
func (db *DB) Groups() *Groups     { return &Groups{db} }
func (db *DB) Sessions() *Sessions { return &Sessions{db} }
func (db *DB) Users() *Users       { return &Users{db} }
func (db *DB) Audit() *Audit       { return &Audit{db} }

// Ping always succeeds.
func (db *DB) Ping(context.Context) error { return nil }

type snapshot struct {
	courses  map[primitive.ObjectID]models.Course
	groups   map[primitive.ObjectID]models.StudyGroup
	sessions map[primitive.ObjectID]models.StudySession
	users    map[primitive.ObjectID]models.User
	events   []audit.Event
}

func (db *DB) snapshot() snapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return snapshot{
		courses:  copyMap(db.courses),
		groups:   copyMap(db.groups),
		sessions: copyMap(db.sessions),
		users:    copyMap(db.users),
		events:   slices.Clone(db.events),
	}
}

func (db *DB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.courses, db.groups, db.sessions, db.users, db.events = s.courses, s.groups, s.sessions, s.users, s.events
}

type txKey struct{ db *DB }

func (db *DB) inRun(ctx context.Context) bool {
	return ctx.Value(txKey{db}) != nil
}

// Run executes fn as a unit: if fn fails every collection is rolled back to
// its state before the call. Writes made through fn's ctx join the Run; any
// other write waits until it finishes. A nested Run joins the outer one.
func (db *DB) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.inRun(ctx) {
		return fn(ctx)
	}
	db.txMu.Lock()
	defer db.txMu.Unlock()

	before := db.snapshot()
	if err := fn(context.WithValue(ctx, txKey{db}, true)); err != nil {
		db.restore(before)
		return err
	}
	return nil
}

// writeLock blocks while a Run is in flight, unless ctx belongs to it. The
// returned func releases the lock.
func (db *DB) writeLock(ctx context.Context) func() {
	if db.inRun(ctx) {
		return func() {}
	}
	db.txMu.RLock()
	return db.txMu.RUnlock
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func lessID(a, b primitive.ObjectID) bool { return bytes.Compare(a[:], b[:]) < 0 }

/* --------------------------------- courses -------------------------------- */

type Courses struct{ db *DB }

func (s *Courses) Create(ctx context.Context, c models.Course) (models.Course, error) {
	defer s.db.writeLock(ctx)()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c.CodeCI = text.Fold(c.Code)
	for _, existing := range s.db.courses {
		if existing.CodeCI == c.CodeCI {
			return models.Course{}, coursestore.ErrDuplicateCode
		}
	}
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.db.courses[c.ID] = c
	return c, nil
}

func (s *Courses) GetByID(_ context.Context, id primitive.ObjectID) (models.Course, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.courses[id]
	if !ok {
		return models.Course{}, coursestore.ErrNotFound
	}
	return c, nil
}

func (s *Courses) List(_ context.Context) ([]models.Course, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := lo.Values(s.db.courses)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CodeCI != out[j].CodeCI {
			return out[i].CodeCI < out[j].CodeCI
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Courses) GetByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Course, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make(map[primitive.ObjectID]models.Course, len(ids))
	for _, id := range ids {
		if c, ok := s.db.courses[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

/* --------------------------------- groups --------------------------------- */

type Groups struct{ db *DB }

func cloneGroup(g models.StudyGroup) models.StudyGroup {
	g.MemberIDs = slices.Clone(g.MemberIDs)
	return g
}

func (s *Groups) Create(ctx context.Context, g models.StudyGroup) (models.StudyGroup, error) {
	defer s.db.writeLock(ctx)()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	g.MemberIDs = lo.Uniq(append([]primitive.ObjectID{g.CreatorID}, g.MemberIDs...))
	g.CreatedAt = now
	g.UpdatedAt = now
	s.db.groups[g.ID] = cloneGroup(g)
	return g, nil
}

func (s *Groups) GetByID(_ context.Context, id primitive.ObjectID) (models.StudyGroup, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.groups[id]
	if !ok {
		return models.StudyGroup{}, groupstore.ErrNotFound
	}
	return cloneGroup(g), nil
}

func matchGroup(g models.StudyGroup, f models.GroupFilter) bool {
	if f.CourseID != nil && g.CourseID != *f.CourseID {
		return false
	}
	if f.Language != "" && !strings.Contains(strings.ToLower(g.Language), strings.ToLower(f.Language)) {
		return false
	}
	if f.SkillLevel != "" && g.SkillLevel != f.SkillLevel {
		return false
	}
	if f.MemberID != nil && !g.HasMember(*f.MemberID) {
		return false
	}
	return true
}

func (s *Groups) Find(_ context.Context, f models.GroupFilter) ([]models.StudyGroup, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []models.StudyGroup{}
	for _, g := range s.db.groups {
		if matchGroup(g, f) {
			out = append(out, cloneGroup(g))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Groups) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) (models.StudyGroup, error) {
	defer s.db.writeLock(ctx)()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.groups[groupID]
	if !ok {
		return models.StudyGroup{}, groupstore.ErrNotFound
	}
	if g.HasMember(userID) {
		return models.StudyGroup{}, groupstore.ErrAlreadyMember
	}
	g.MemberIDs = append(slices.Clone(g.MemberIDs), userID)
	g.UpdatedAt = time.Now().UTC()
	s.db.groups[groupID] = g
	return cloneGroup(g), nil
}

func (s *Groups) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) (models.StudyGroup, error) {
	defer s.db.writeLock(ctx)()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.groups[groupID]
	if !ok {
		return models.StudyGroup{}, groupstore.ErrNotFound
	}
	if g.IsHost(userID) {
		return models.StudyGroup{}, groupstore.ErrHostCannotLeave
	}
	if !g.HasMember(userID) {
		return models.StudyGroup{}, groupstore.ErrNotMember
	}
	g.MemberIDs = lo.Without(g.MemberIDs, userID)
	g.UpdatedAt = time.Now().UTC()
	s.db.groups[groupID] = g
	return cloneGroup(g), nil
}

func (s *Groups) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	defer s.db.writeLock(ctx)()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.groups[id]; !ok {
		return 0, nil
	}
	delete(s.db.groups, id)
	return 1, nil
}

// Touch bumps the group's UpdatedAt, or returns ErrNotFound if it is gone.
func (s *Groups) Touch(ctx context.Context, id primitive.ObjectID) error {
	defer s.db.writeLock(ctx)()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.groups[id]
	if !ok {
		return groupstore.ErrNotFound
	}
	g.UpdatedAt = time.Now().UTC()
	s.db.groups[id] = g
	return nil
}

/* -------------------------------- sessions -------------------------------- */

type Sessions struct{ db *DB }

func cloneSession(ss models.StudySession) models.StudySession {
	if ss.DurationMinutes != nil {
		d := *ss.DurationMinutes
		ss.DurationMinutes = &d
	}
	return ss
}

func (s *Sessions) Create(ctx context.Context, ss models.StudySession) (models.StudySession, error) {
	defer s.db.writeLock(ctx)()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	now := time.Now().UTC()
	ss.ID = primitive.NewObjectID()
	ss.CreatedAt = now
	ss.UpdatedAt = now
	s.db.sessions[ss.ID] = cloneSession(ss)
	return ss, nil
}

func (s *Sessions) GetByID(_ context.Context, id primitive.ObjectID) (models.StudySession, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ss, ok := s.db.sessions[id]
	if !ok {
		return models.StudySession{}, studysessionstore.ErrNotFound
	}
	return cloneSession(ss), nil
}

func (s *Sessions) ListByGroup(_ context.Context, groupID primitive.ObjectID) ([]models.StudySession, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []models.StudySession{}
	for _, ss := range s.db.sessions {
		if ss.GroupID == groupID {
			out = append(out, cloneSession(ss))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return lessID(a.ID, b.ID)
	})
	return out, nil
}

func (s *Sessions) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	defer s.db.writeLock(ctx)()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.sessions[id]; !ok {
		return 0, nil
	}
	delete(s.db.sessions, id)
	return 1, nil
}

func (s *Sessions) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	defer s.db.writeLock(ctx)()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, ss := range s.db.sessions {
		if ss.GroupID == groupID {
			delete(s.db.sessions, id)
			n++
		}
	}
	return n, nil
}

/* ---------------------------------- users --------------------------------- */

type Users struct{ db *DB }

func (s *Users) Create(ctx context.Context, u models.User) (models.User, error) {
	defer s.db.writeLock(ctx)()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)
	for _, existing := range s.db.users {
		if existing.Email == u.Email {
			return models.User{}, userstore.ErrDuplicateEmail
		}
	}
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.db.users[u.ID] = u
	return u, nil
}

func (s *Users) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return models.User{}, userstore.ErrNotFound
	}
	return u, nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	email = normalize.Email(email)
	for _, u := range s.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, userstore.ErrNotFound
}

func (s *Users) UpdateName(ctx context.Context, id primitive.ObjectID, name string) error {
	return s.update(ctx, id, func(u *models.User) { u.Name = normalize.Name(name) })
}

func (s *Users) UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	return s.update(ctx, id, func(u *models.User) { u.PasswordHash = hash })
}

func (s *Users) update(ctx context.Context, id primitive.ObjectID, apply func(*models.User)) error {
	defer s.db.writeLock(ctx)()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return userstore.ErrNotFound
	}
	apply(&u)
	u.UpdatedAt = time.Now().UTC()
	s.db.users[id] = u
	return nil
}

func (s *Users) SummariesByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := s.db.users[id]; ok {
			out[id] = u.Summary()
		}
	}
	return out, nil
}

/* ---------------------------------- audit --------------------------------- */

type Audit struct{ db *DB }

func (s *Audit) Log(ctx context.Context, e audit.Event) error {
	defer s.db.writeLock(ctx)()
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	s.db.events = append(s.db.events, e)
	return nil
}

func (s *Audit) Query(_ context.Context, f audit.QueryFilter) ([]audit.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := lo.Filter(s.db.events, func(e audit.Event, _ int) bool {
		switch {
		case f.UserID != nil && (e.UserID == nil || *e.UserID != *f.UserID):
			return false
		case f.GroupID != nil && (e.GroupID == nil || *e.GroupID != *f.GroupID):
			return false
		case f.Category != "" && e.Category != f.Category:
			return false
		case f.EventType != "" && e.EventType != f.EventType:
			return false
		case f.Since != nil && e.Timestamp.Before(*f.Since):
			return false
		}
		return true
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return lessID(out[j].ID, out[i].ID)
	})
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
