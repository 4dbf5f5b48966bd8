package grouppolicy

import (
	"testing"

	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGroupPredicates(t *testing.T) {
	host, member, outsider := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	g := models.StudyGroup{CreatorID: host, MemberIDs: []primitive.ObjectID{host, member}}

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"host deletes", CanDeleteGroup(g, host), true},
		{"member deletes", CanDeleteGroup(g, member), false},
		{"member uses sessions", CanUseSessions(g, member), true},
		{"outsider uses sessions", CanUseSessions(g, outsider), false},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestCanDeleteSession(t *testing.T) {
	host, creator, other := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	g := &models.StudyGroup{CreatorID: host, MemberIDs: []primitive.ObjectID{host, creator, other}}
	s := models.StudySession{CreatorID: creator}

	tests := []struct {
		name  string
		group *models.StudyGroup
		user  primitive.ObjectID
		want  bool
	}{
		{"creator", g, creator, true},
		{"host", g, host, true},
		{"third member", g, other, false},
		{"creator of orphan", nil, creator, true},
		{"host of orphan", nil, host, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanDeleteSession(s, tt.group, tt.user); got != tt.want {
				t.Errorf("CanDeleteSession = %v, want %v", got, tt.want)
			}
		})
	}
}
