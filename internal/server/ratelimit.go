package server

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	MaxRequests int           // requests allowed per client per window; 0 disables limiting
	Window      time.Duration // sliding window length
	BlockAfter  int           // failed password attempts before a client is blocked
	BlockTime   time.Duration // first block duration, doubled for each further block
}

// DefaultRateLimitConfig returns the default rate limiting configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 60,
		Window:      time.Minute,
		BlockAfter:  10,
		BlockTime:   5 * time.Minute,
	}
}

// maxBlock caps the exponential block duration.
const maxBlock = 24 * time.Hour

// rateLimiter is a per-client sliding window limiter. Repeated password
// failures additionally block a client with exponential backoff.
type rateLimiter struct {
	mu     sync.Mutex
	config RateLimitConfig
	logger *slog.Logger

	requests map[string][]time.Time
	failures map[string]int
	blocked  map[string]time.Time // block expiry per client
}

func newRateLimiter(config RateLimitConfig, logger *slog.Logger) *rateLimiter {
	defaults := DefaultRateLimitConfig()
	if config.MaxRequests < 0 {
		config.MaxRequests = 0
	}
	if config.Window <= 0 {
		config.Window = defaults.Window
	}
	if config.BlockAfter <= 0 {
		config.BlockAfter = defaults.BlockAfter
	}
	if config.BlockTime <= 0 {
		config.BlockTime = defaults.BlockTime
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &rateLimiter{
		config:   config,
		logger:   logger,
		requests: make(map[string][]time.Time),
		failures: make(map[string]int),
		blocked:  make(map[string]time.Time),
	}
}

// checkResult is the outcome of a rate limit check.
type checkResult struct {
	Allowed    bool
	RetryAfter time.Duration
	IsBlocked  bool
	Reason     string
}

// check records a request from ip and reports whether it may proceed.
func (rl *rateLimiter) check(ip string) checkResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	if expiry, ok := rl.blocked[ip]; ok {
		if now.Before(expiry) {
			return checkResult{
				RetryAfter: expiry.Sub(now),
				IsBlocked:  true,
				Reason:     "too many failed attempts",
			}
		}
		delete(rl.blocked, ip)
	}

	if rl.config.MaxRequests == 0 {
		return checkResult{Allowed: true}
	}

	recent := prune(rl.requests[ip], now.Add(-rl.config.Window))
	if len(recent) >= rl.config.MaxRequests {
		rl.requests[ip] = recent
		retryAfter := recent[0].Add(rl.config.Window).Sub(now)
		if retryAfter <= 0 {
			retryAfter = time.Second
		}
		return checkResult{
			RetryAfter: retryAfter,
			Reason:     "rate limit exceeded",
		}
	}

	rl.requests[ip] = append(recent, now)
	return checkResult{Allowed: true}
}

// recordSuccess clears the failure count for ip.
func (rl *rateLimiter) recordSuccess(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.failures, ip)
	delete(rl.blocked, ip)
}

// recordFailure counts a failed password attempt, blocking ip once the
// count reaches BlockAfter. Every further BlockAfter failures double the
// block duration.
func (rl *rateLimiter) recordFailure(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.failures[ip]++
	count := rl.failures[ip]
	if count < rl.config.BlockAfter {
		return
	}

	blocks := (count - rl.config.BlockAfter) / rl.config.BlockAfter
	duration := rl.config.BlockTime
	for i := 0; i < blocks && duration < maxBlock; i++ {
		duration *= 2
	}
	if duration > maxBlock {
		duration = maxBlock
	}

	rl.blocked[ip] = time.Now().Add(duration)
	rl.logger.Warn("client blocked", "ip", ip, "duration", duration, "failures", count)
}

// cleanup drops expired entries. Called periodically by the server.
func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.config.Window)

	for ip, ts := range rl.requests {
		if recent := prune(ts, windowStart); len(recent) > 0 {
			rl.requests[ip] = recent
		} else {
			delete(rl.requests, ip)
		}
	}

	for ip, expiry := range rl.blocked {
		if now.After(expiry) {
			delete(rl.blocked, ip)
		}
	}

	for ip := range rl.failures {
		_, isBlocked := rl.blocked[ip]
		_, active := rl.requests[ip]
		if !isBlocked && !active {
			delete(rl.failures, ip)
		}
	}
}

// prune returns the timestamps after windowStart.
func prune(ts []time.Time, windowStart time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	return kept
}

// extractIP returns the client address, preferring proxy headers.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
