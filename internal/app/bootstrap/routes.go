// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"sync"

	auditfeature "github.com/dalemusser/studyhub/internal/app/features/auditlog"
	coursesfeature "github.com/dalemusser/studyhub/internal/app/features/courses"
	errorsfeature "github.com/dalemusser/studyhub/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/studyhub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/studyhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/studyhub/internal/app/features/login"
	profilefeature "github.com/dalemusser/studyhub/internal/app/features/profile"
	sessionsfeature "github.com/dalemusser/studyhub/internal/app/features/studysessions"
	"github.com/dalemusser/studyhub/internal/app/services/accounts"
	coursesvc "github.com/dalemusser/studyhub/internal/app/services/courses"
	"github.com/dalemusser/studyhub/internal/app/services/studygroups"
	"github.com/dalemusser/studyhub/internal/app/services/studysessions"
	"github.com/dalemusser/studyhub/internal/app/store/audit"
	coursestore "github.com/dalemusser/studyhub/internal/app/store/courses"
	groupstore "github.com/dalemusser/studyhub/internal/app/store/groups"
	studysessionstore "github.com/dalemusser/studyhub/internal/app/store/studysessions"
	userstore "github.com/dalemusser/studyhub/internal/app/store/users"
	"github.com/dalemusser/studyhub/internal/app/system/auditlog"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/jsonio"
	"github.com/dalemusser/studyhub/internal/app/system/ratelimit"
	"github.com/dalemusser/studyhub/internal/app/system/reqlog"
	"github.com/dalemusser/studyhub/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// services is the wired service layer for one backend.
type services struct {
	accounts *accounts.Service
	courses  *coursesvc.Service
	groups   *studygroups.Service
	sessions *studysessions.Service
	audit    auditlog.Sink
	events   auditfeature.Querier
	pinger   healthfeature.Pinger
}

func buildServices(deps DBDeps, az *auth.Authorizer, logger *zap.Logger) services {
	if m := deps.Memory; m != nil {
		return services{
			accounts: accounts.New(m.Users(), az),
			courses:  coursesvc.New(m.Courses()),
			groups:   studygroups.New(m.Groups(), m.Sessions(), m.Courses(), m.Users(), m, logger),
			sessions: studysessions.New(m.Sessions(), m.Groups(), m),
			audit:    m.Audit(),
			events:   m.Audit(),
			pinger:   m,
		}
	}

	db := deps.StudyHubMongoDatabase
	users := userstore.New(db)
	courses := coursestore.New(db)
	groups := groupstore.New(db)
	sessions := studysessionstore.New(db)
	events := audit.New(db)
	tx := txn.NewRunner(db, logger)
	return services{
		accounts: accounts.New(users, az),
		courses:  coursesvc.New(courses),
		groups:   studygroups.New(groups, sessions, courses, users, tx, logger),
		sessions: studysessions.New(sessions, groups, tx),
		audit:    events,
		events:   events,
		pinger:   healthfeature.MongoPinger{Client: deps.StudyHubMongoClient},
	}
}

var (
	bgMu   sync.Mutex
	bgStop []func()
)

// onShutdown registers f to run from Shutdown.
func onShutdown(f func()) {
	bgMu.Lock()
	defer bgMu.Unlock()
	bgStop = append(bgStop, f)
}

func stopBackground() {
	bgMu.Lock()
	defer bgMu.Unlock()
	for _, f := range bgStop {
		f()
	}
	bgStop = nil
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It wires the stores for the configured
// backend into the services, and mounts one feature router per resource:
// /auth, /users, /courses, /study-groups, /study-sessions, /audit-events
// and /health.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	az, err := auth.NewAuthorizer(appCfg.JWTSecret, appCfg.JWTTTL, appCfg.BcryptCost, logger)
	if err != nil {
		logger.Error("authorizer init failed", zap.Error(err))
		return nil, err
	}

	svc := buildServices(deps, az, logger)
	auditLog := auditlog.New(svc.audit, logger, auditlog.Config{
		Auth:     appCfg.AuditLogAuth,
		Activity: appCfg.AuditLogActivity,
	})
	errLog := errorsfeature.NewErrorLogger(logger)

	limiter := ratelimit.New(appCfg.LoginRateLimit, appCfg.LoginRateWindow)
	onShutdown(limiter.Stop)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(reqlog.Middleware(logger))
	r.Use(middleware.Recoverer)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(svc.pinger, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Accounts
	loginHandler := loginfeature.NewHandler(svc.accounts, auditLog, errLog, limiter, logger)
	r.Mount("/auth", loginfeature.Routes(loginHandler))

	profileHandler := profilefeature.NewHandler(svc.accounts, auditLog, errLog, logger)
	r.Mount("/users", profilefeature.Routes(profileHandler, az))

	// Catalogue
	coursesHandler := coursesfeature.NewHandler(svc.courses, auditLog, errLog, logger)
	r.Mount("/courses", coursesfeature.Routes(coursesHandler, az))

	// Groups and their sessions
	groupsHandler := groupsfeature.NewHandler(svc.groups, auditLog, errLog, logger)
	r.Mount("/study-groups", groupsfeature.Routes(groupsHandler, az))

	sessionsHandler := sessionsfeature.NewHandler(svc.sessions, auditLog, errLog, logger)
	r.Mount("/study-sessions", sessionsfeature.Routes(sessionsHandler, az))

	// Caller's own audit trail
	eventsHandler := auditfeature.NewHandler(svc.events, errLog, logger)
	r.Mount("/audit-events", auditfeature.Routes(eventsHandler, az))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonio.Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonio.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r, nil
}
