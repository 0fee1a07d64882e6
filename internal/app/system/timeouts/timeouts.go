// Package timeouts holds the deadlines handlers put on database, storage and
// model calls. Values are process-wide and set once at startup.
//
// Which one to use:
//   - Ping: health checks and connectivity verification
//   - Short: simple single-document reads or lookups
//   - Medium: list queries, moderate writes, multi-step reads
//   - Long: uploads, model calls, deletes that also clean up storage
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// Config holds timeout configuration values.
// Zero values are ignored by Configure.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Defaults is the configuration used until Configure is called.
var Defaults = Config{
	Ping:   DefaultPing,
	Short:  DefaultShort,
	Medium: DefaultMedium,
	Long:   DefaultLong,
}

var (
	mu      sync.RWMutex
	current = Defaults
)

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(current)
}

// Ping bounds health checks against the database.
func Ping() time.Duration { return get(func(c Config) time.Duration { return c.Ping }) }

// Short bounds single-document reads: get by ID, lookup by email.
func Short() time.Duration { return get(func(c Config) time.Duration { return c.Short }) }

// Medium bounds list queries and record inserts.
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }

// Long bounds work that leaves the database: uploads, downloads, model
// calls, and deletes that also remove the stored object.
func Long() time.Duration { return get(func(c Config) time.Duration { return c.Long }) }

// Configure overrides the non-zero fields of cfg. Call it from Startup,
// before handlers run.
//
//	timeouts.Configure(timeouts.Config{Long: 60 * time.Second})
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	merge := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}
	merge(&current.Ping, cfg.Ping)
	merge(&current.Short, cfg.Short)
	merge(&current.Medium, cfg.Medium)
	merge(&current.Long, cfg.Long)
}

// Reset restores Defaults. Tests use it in t.Cleanup.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = Defaults
}

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline, not the caller, ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "download object")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
