// Package timeouts holds the per-operation deadlines used with
// context.WithTimeout around store calls.
//
//   - Ping: health checks
//   - Short: single-document reads and writes
//   - Medium: listings and reads that resolve references
//   - Long: writes that touch more than one collection
package timeouts

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// Config holds timeout values. Zero fields keep the current value.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
}

func Ping() time.Duration   { return Current().Ping }
func Short() time.Duration  { return Current().Short }
func Medium() time.Duration { return Current().Medium }
func Long() time.Duration   { return Current().Long }

// Current returns a copy of the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// Configure overrides the non-zero fields of cfg. Call it during startup.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		cur.Ping = cfg.Ping
	}
	if cfg.Short > 0 {
		cur.Short = cfg.Short
	}
	if cfg.Medium > 0 {
		cur.Medium = cfg.Medium
	}
	if cfg.Long > 0 {
		cur.Long = cfg.Long
	}
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// WithTimeout derives a context bounded by d from parent.
func WithTimeout(parent context.Context, d func() time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, d())
}
