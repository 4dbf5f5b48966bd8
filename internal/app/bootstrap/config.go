// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/studyhub/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for StudyHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: STUDYHUB_MONGO_URI, STUDYHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: BackendMongo, Desc: "Storage backend: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "studyhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},

	// Bearer tokens and passwords
	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "HMAC key for bearer tokens (at least 32 characters in prod)"},
	{Name: "jwt_ttl", Default: "1h", Desc: "Bearer token lifetime (e.g., 1h, 30m)"},
	{Name: "bcrypt_cost", Default: 10, Desc: "bcrypt cost for password hashes"},

	// Login throttling
	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts allowed per IP in each window"},
	{Name: "login_rate_window", Default: "1m", Desc: "Login rate limit window"},

	// Database timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for listings"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for multi-collection writes"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: auditlog.ModeAll, Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_activity", Default: auditlog.ModeLog, Desc: "Activity event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// STUDYHUB_* environment variables and command-line flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STUDYHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend:     appValues.String("store_backend"),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:  appValues.String("jwt_secret"),
		JWTTTL:     appValues.Duration("jwt_ttl", time.Hour),
		BcryptCost: appValues.Int("bcrypt_cost"),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", time.Minute),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),

		AuditLogAuth:     appValues.String("audit_log_auth"),
		AuditLogActivity: appValues.String("audit_log_activity"),
	}

	return coreCfg, appCfg, nil
}

var auditModes = []string{auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked only for the mongo backend so that the
// memory backend can run with no database configured.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database must be set")
		}
	case BackendMemory:
		logger.Warn("using in-memory store; data is lost on restart")
	default:
		return fmt.Errorf("unknown store_backend %q (want %q or %q)", appCfg.StoreBackend, BackendMongo, BackendMemory)
	}

	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must be set")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.JWTSecret) < minProdSecretLen {
		return fmt.Errorf("jwt_secret must be at least %d characters in prod", minProdSecretLen)
	}
	if appCfg.JWTTTL <= 0 {
		return fmt.Errorf("jwt_ttl must be positive")
	}
	if appCfg.LoginRateLimit <= 0 || appCfg.LoginRateWindow <= 0 {
		return fmt.Errorf("login_rate_limit and login_rate_window must be positive")
	}

	for key, mode := range map[string]string{
		"audit_log_auth":     appCfg.AuditLogAuth,
		"audit_log_activity": appCfg.AuditLogActivity,
	} {
		if !lo.Contains(auditModes, mode) {
			return fmt.Errorf("%s: unknown mode %q", key, mode)
		}
	}

	return nil
}
