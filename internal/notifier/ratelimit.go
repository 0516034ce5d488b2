package notifier

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiter configuration.
type RateLimitConfig struct {
	MaxPerWindow int           // Maximum notifications per window (default: 10)
	Window       time.Duration // Time window (default: 1 minute)
	Enabled      bool
}

// DefaultRateLimitConfig returns default rate limit settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxPerWindow: 10,
		Window:       time.Minute,
		Enabled:      true,
	}
}

func (c RateLimitConfig) normalized() RateLimitConfig {
	if c.MaxPerWindow <= 0 {
		c.MaxPerWindow = 10
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	return c
}

// RateLimiter is a token bucket refilled at MaxPerWindow per Window, with
// a burst of MaxPerWindow.
type RateLimiter struct {
	mu      sync.RWMutex
	limiter *rate.Limiter
	cfg     RateLimitConfig
	dropped atomic.Int64
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	r := &RateLimiter{}
	r.Configure(cfg)
	return r
}

// Configure replaces the limits. The bucket starts full.
func (r *RateLimiter) Configure(cfg RateLimitConfig) {
	cfg = cfg.normalized()
	every := rate.Every(cfg.Window / time.Duration(cfg.MaxPerWindow))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
	r.limiter = rate.NewLimiter(every, cfg.MaxPerWindow)
}

// Allow reports whether one more notification may be sent now.
func (r *RateLimiter) Allow() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.cfg.Enabled {
		return true
	}
	if r.limiter.Allow() {
		return true
	}
	r.dropped.Add(1)
	return false
}

// Stats returns rate limiter statistics.
func (r *RateLimiter) Stats() RateLimitStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RateLimitStats{
		Dropped:      r.dropped.Load(),
		Available:    r.limiter.Tokens(),
		MaxPerWindow: r.cfg.MaxPerWindow,
		Window:       r.cfg.Window,
		Enabled:      r.cfg.Enabled,
	}
}

// RateLimitStats contains rate limiter statistics.
type RateLimitStats struct {
	Dropped      int64         // Total notifications dropped
	Available    float64       // Tokens currently available
	MaxPerWindow int           // Maximum allowed per window
	Window       time.Duration // Window duration
	Enabled      bool          // Whether rate limiting is enabled
}
