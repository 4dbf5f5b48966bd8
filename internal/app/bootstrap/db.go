// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/studyhub/internal/app/store/memstore"
	"github.com/dalemusser/studyhub/internal/app/system/indexes"
	"github.com/dalemusser/studyhub/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the configured backend. For mongo it connects with the
// configured pool bounds and pings the primary before returning.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	if appCfg.StoreBackend == BackendMemory {
		logger.Info("store backend: memory")
		return DBDeps{Memory: memstore.New()}, nil
	}

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		StudyHubMongoClient:   client,
		StudyHubMongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema attaches collection validators and reconciles indexes. The
// memory backend has no schema to set up.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.StudyHubMongoDatabase
	if db == nil {
		return nil
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		return fmt.Errorf("ensure validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info("schema ready")
	return nil
}
