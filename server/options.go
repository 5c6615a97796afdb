package server

import (
	"time"

	"golang.org/x/time/rate"
)

// config collects everything an Option can set, with defaults matching
// the spec's recommended values.
type config struct {
	readTimeout    time.Duration
	frameTime      time.Duration
	maxConnections int
	rateLimit      float64
	rateBurst      int
	adminAddr      string
	behavior       Behavior
	concurrent     bool
}

func defaultConfig() config {
	return config{
		readTimeout:    2 * time.Minute,
		frameTime:      10 * time.Millisecond,
		maxConnections: 256,
		rateLimit:      0, // 0 disables per-session rate limiting
		rateBurst:      0,
	}
}

// Option configures a Server at construction time.
type Option func(*config)

// WithTimeout sets the inactivity timeout after which a session is
// considered idle and disconnected.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.readTimeout = d }
}

// WithFrameTime sets the pacing interval between successive passes of the
// engine's drain/reap/sweep cycle.
func WithFrameTime(d time.Duration) Option {
	return func(c *config) { c.frameTime = d }
}

// WithMaxConnections bounds how many sessions may be served concurrently.
func WithMaxConnections(n int) Option {
	return func(c *config) { c.maxConnections = n }
}

// WithRateLimit enables a per-session token-bucket limiter: rate frames
// per second sustained, burst frames permitted instantaneously.
func WithRateLimit(ratePerSecond float64, burst int) Option {
	return func(c *config) {
		c.rateLimit = ratePerSecond
		c.rateBurst = burst
	}
}

// WithAdminAddr records addr as the admin/introspection HTTP address,
// readable through Server.AdminAddr. The engine does not start the admin
// surface itself: the host builds it with admin.New and attaches it with
// Server.SetAdmin.
func WithAdminAddr(addr string) Option {
	return func(c *config) { c.adminAddr = addr }
}

// WithBehavior installs the game-logic callback implementation. Required;
// Create returns an error if it is never supplied.
func WithBehavior(b Behavior) Option {
	return func(c *config) { c.behavior = b }
}

// WithConcurrentBehavior declares that the supplied Behavior performs its
// own synchronization (it implements ConcurrentSafe), so the engine skips
// the default behavior-serializing mutex and invokes callbacks directly
// from worker goroutines.
func WithConcurrentBehavior() Option {
	return func(c *config) { c.concurrent = true }
}

func (c config) newLimiter() *rate.Limiter {
	if c.rateLimit <= 0 {
		return nil
	}
	burst := c.rateBurst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(c.rateLimit), burst)
}
