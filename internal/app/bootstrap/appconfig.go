// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// the framework-level settings: ports, TLS, log level, CORS and request
// body limits.
type AppConfig struct {
	// Storage backend: "mongo" or "memory".
	StoreBackend string

	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer token configuration
	JWTSecret  string        // HMAC signing key (must be strong in production)
	JWTTTL     time.Duration // token lifetime
	BcryptCost int

	// Login throttling per client IP
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// Per-operation database timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	// Audit logging destinations: all, db, log, off
	AuditLogAuth     string
	AuditLogActivity string
}

// Storage backends.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// minProdSecretLen is the shortest JWT secret accepted when env is prod.
const minProdSecretLen = 32
