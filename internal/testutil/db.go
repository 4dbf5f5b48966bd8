package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultTestMongoURI is used when STUDYHUB_TEST_MONGO_URI is unset.
const DefaultTestMongoURI = "mongodb://localhost:27017"

// TestContext returns a context bounded for a single test.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// SetupTestDB connects to the test server and returns a fresh database
// that is dropped when the test ends. The test is skipped when no server
// answers.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("STUDYHUB_TEST_MONGO_URI")
	if uri == "" {
		uri = DefaultTestMongoURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(2*time.Second))
	if err != nil {
		t.Skipf("mongo unavailable (%v); skipping", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("mongo unavailable (%v); skipping", err)
	}

	db := client.Database("studyhub_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}
