// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/studyhub/internal/app/store/memstore"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app. Exactly one of
// the Mongo pair or Memory is set, according to store_backend.
type DBDeps struct {
	StudyHubMongoClient   *mongo.Client
	StudyHubMongoDatabase *mongo.Database

	Memory *memstore.DB
}
