package txn

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/studyhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "unrelated error", err: errors.New("connection reset by peer"), want: false},
		{
			name: "illegal operation code",
			err:  mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"},
			want: true,
		},
		{
			name: "code 51",
			err:  mongo.CommandError{Code: 51, Message: "Illegal operation"},
			want: true,
		},
		{
			name: "operation not supported in transaction",
			err:  mongo.CommandError{Code: 263, Message: "Cannot run in a multi-document transaction"},
			want: true,
		},
		{
			name: "other command error",
			err:  mongo.CommandError{Code: 11000, Message: "E11000 duplicate key error"},
			want: false,
		},
		{
			name: "replica set wording",
			err:  errors.New("transaction failed because this is not a replica set member"),
			want: true,
		},
		{
			name: "sessions not supported",
			err:  errors.New("session operations are not supported on this server"),
			want: true,
		},
		{
			name: "transaction alone",
			err:  errors.New("transaction aborted"),
			want: false,
		},
		{
			name: "mixed case",
			err:  errors.New("Cannot start Transaction in current Session state"),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRun_CommitsWrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection("txn_probe")
	err := Run(ctx, db, zap.NewNop(), func(ctx context.Context) error {
		_, err := coll.InsertOne(ctx, bson.M{"k": 1})
		return err
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	n, err := coll.CountDocuments(ctx, bson.M{"k": 1})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 document, got %d", n)
	}
}

func TestRunner_PropagatesError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	boom := errors.New("boom")
	r := NewRunner(db, zap.NewNop())
	err := r.Run(ctx, func(ctx context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}
