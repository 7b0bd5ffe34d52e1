package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/shared/server/respond"
)

const (
	// GroupGeneration covers plan generation, which calls the LLM provider.
	GroupGeneration = "GENERATION"
	// GroupExport covers PDF rendering.
	GroupExport = "EXPORT"

	sweepEvery = 256
)

// routeGroups is keyed by method and route relative to /api/v1.
var routeGroups = map[string]string{
	"POST /plans":               GroupGeneration,
	"GET /plans/:id/export/pdf": GroupExport,
}

// RateLimitRule is a token bucket: Rate tokens per second, at most Burst banked.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

func (r RateLimitRule) enabled() bool { return r.Rate > 0 && r.Burst > 0 }

// refill is how long an empty bucket takes to fill up again.
func (r RateLimitRule) refill() time.Duration {
	return time.Duration(float64(r.Burst) / r.Rate * float64(time.Second))
}

type RateLimitConfig struct {
	Rules    map[string]RateLimitRule
	GroupFor func(*gin.Context) string
	Limiter  *RateLimiter
}

// RateLimiter keeps one bucket per client and group. Buckets that have
// been full for a while are swept so the map does not grow with every
// address seen.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	calls   int
	now     func() time.Time
}

type rateBucket struct {
	tokens float64
	last   time.Time
	rule   RateLimitRule
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: make(map[string]*rateBucket), now: now}
}

func DefaultRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		GroupGeneration: {Rate: 0.2, Burst: 3},
		GroupExport:     {Rate: 1, Burst: 5},
	}
}

// GroupForRoute returns the rule group of the matched route, or "" when
// the route is unlimited.
func GroupForRoute(c *gin.Context) string {
	route := strings.TrimPrefix(c.FullPath(), "/api/v1")
	return routeGroups[c.Request.Method+" "+route]
}

// RateLimit rejects requests over their group's budget with 429 and a
// Retry-After header. Requests outside any configured group pass through.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.GroupFor == nil {
		cfg.GroupFor = GroupForRoute
	}
	return func(c *gin.Context) {
		group := cfg.GroupFor(c)
		rule, ok := cfg.Rules[group]
		if group == "" || !ok {
			c.Next()
			return
		}
		wait := cfg.Limiter.Reserve(c.ClientIP()+"|"+group, rule)
		if wait == 0 {
			c.Next()
			return
		}
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many requests", gin.H{
			"retryAfterMs": wait.Milliseconds(),
		})
	}
}

// Reserve takes a token for key. It returns zero when the request may
// proceed, otherwise how long until a token is available.
func (l *RateLimiter) Reserve(key string, rule RateLimitRule) time.Duration {
	if l == nil || !rule.enabled() {
		return 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &rateBucket{tokens: float64(rule.Burst), last: now}
		l.buckets[key] = b
	}
	b.rule = rule
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(rule.Burst), b.tokens+elapsed*rule.Rate)
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return 0
	}
	wait := time.Duration(math.Ceil((1-b.tokens)/rule.Rate*1000)) * time.Millisecond
	if wait < time.Millisecond {
		wait = time.Millisecond
	}
	return wait
}

// Size reports how many buckets are tracked.
func (l *RateLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *RateLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.last) >= b.rule.refill() {
			delete(l.buckets, key)
		}
	}
}
