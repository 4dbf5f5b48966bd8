// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background work started by BuildHandler and disconnects
// the MongoDB client.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	stopBackground()

	if deps.StudyHubMongoClient != nil {
		logger.Info("disconnecting StudyHub MongoDB client")
		if err := deps.StudyHubMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
