// Package storage provides the key-value persistence collaborator and
// the snapshot codec that maps dashboard state onto its keys.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Keys under which the dashboard state is stored. Each key holds one
// JSON document that is rewritten wholesale on every save.
const (
	KeyProjects      = "projects"
	KeyTesters       = "testers"
	KeyCustomers     = "customers"
	KeyTestLeaders   = "testLeaders"
	KeyNotifications = "notifications"
	KeyTransactions  = "transactions"
	KeyRequests      = "requests"
	KeyProjectLogs   = "projectLogs"
)

// AllKeys lists every key in load order.
var AllKeys = []string{
	KeyProjects,
	KeyTesters,
	KeyCustomers,
	KeyTestLeaders,
	KeyNotifications,
	KeyTransactions,
	KeyRequests,
	KeyProjectLogs,
}

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage closed")

// KV is a string-keyed byte store with last-write-wins semantics.
type KV interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error
	// SetMany replaces several keys. Backends apply them atomically where
	// they can; callers must not rely on it.
	SetMany(ctx context.Context, values map[string][]byte) error
	// Ping checks that the store is usable.
	Ping(ctx context.Context) error
	// Close releases the store.
	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
	DriverMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	Path   string
	// GCInterval overrides the Badger value-log GC period.
	GCInterval time.Duration
	// Logger receives backend diagnostics. Nil discards them.
	Logger *zerolog.Logger
}

// Open creates the backend named by opts.Driver and prepares it for use.
func Open(opts Options) (KV, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		s := NewSQLiteKV(opts.Path)
		if err := s.Open(); err != nil {
			return nil, err
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case DriverBadger:
		cfg := DefaultBadgerConfig()
		cfg.Path = opts.Path
		cfg.Logger = opts.Logger
		if opts.GCInterval > 0 {
			cfg.GCInterval = opts.GCInterval
		}
		return OpenBadgerKV(cfg)
	case DriverMemory:
		return NewMemoryKV(), nil
	default:
		return nil, errors.New("unknown storage driver: " + opts.Driver)
	}
}
