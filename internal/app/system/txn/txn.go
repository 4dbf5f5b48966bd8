// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a multi-document transaction when the deployment
// supports one (replica set or sharded cluster). On a standalone server the
// transaction cannot start, so fn runs once without it; callers order their
// writes so a partial run leaves no dangling references.
//
// fn receives a context bound to the session and must pass it to every
// store call that should join the transaction.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Warn("sessions unsupported; running without transaction", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Warn("transactions unsupported; running without transaction", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// Runner binds Run to a database so services can depend on an interface.
type Runner struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewRunner returns a Runner for db.
func NewRunner(db *mongo.Database, log *zap.Logger) *Runner {
	return &Runner{DB: db, Log: log}
}

// Run executes fn via txn.Run.
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return Run(ctx, r.DB, r.Log, fn)
}

// IsNotSupported reports whether err means the server cannot run
// transactions (standalone mongod, or a deployment without sessions).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, // IllegalOperation
			51,  // NoSuchTransaction on some builds
			263: // OperationNotSupportedInTransaction
			return true
		}
	}
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "illegal operation"):
		return true
	case strings.Contains(s, "transaction") &&
		(strings.Contains(s, "replica set") || strings.Contains(s, "session")):
		return true
	case strings.Contains(s, "session") && strings.Contains(s, "not supported"):
		return true
	}
	return false
}
