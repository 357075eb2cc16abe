package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/agentindex/internal/metrics"
)

// Limit is a request budget per client IP for every request whose
// "METHOD /path" starts with Pattern.
type Limit struct {
	Pattern  string
	Requests int
	Window   time.Duration
}

// DefaultLimits are checked in order; the first matching pattern wins, so
// the detail route comes before the listing.
var DefaultLimits = []Limit{
	{"GET /api/agents/", 120, time.Minute},
	{"GET /api/agents", 60, time.Minute},
	{"GET /health", 30, time.Minute},
}

const (
	defaultBlockAfter = 10
	defaultBlockFor   = 24 * time.Hour
	violationWindow   = time.Hour
)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	Limits           []Limit  // nil means DefaultLimits
	Whitelist        []string // IPs or CIDRs exempt from limiting and blocking
	AutoBlockEnabled bool
	BlockAfter       int           // violations within an hour before a block, 0 means 10
	BlockFor         time.Duration // 0 means 24h
}

// RateLimiter counts requests per client IP in fixed redis windows.
// Redis failures let the request through.
type RateLimiter struct {
	client     *redis.Client
	limits     []Limit
	whitelist  ipSet
	autoBlock  bool
	blockAfter int64
	blockFor   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewRateLimiter creates a rate limiter backed by client.
func NewRateLimiter(client *redis.Client, logger zerolog.Logger, cfg RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		client:     client,
		limits:     cfg.Limits,
		whitelist:  parseIPSet(cfg.Whitelist, logger),
		autoBlock:  cfg.AutoBlockEnabled,
		blockAfter: int64(cfg.BlockAfter),
		blockFor:   cfg.BlockFor,
		logger:     logger,
		now:        time.Now,
	}
	if rl.limits == nil {
		rl.limits = DefaultLimits
	}
	if rl.blockAfter <= 0 {
		rl.blockAfter = defaultBlockAfter
	}
	if rl.blockFor <= 0 {
		rl.blockFor = defaultBlockFor
	}
	return rl
}

// decision is the outcome of counting one request.
type decision struct {
	allowed   bool
	remaining int
	resetAt   time.Time
}

// Middleware returns the rate limiting middleware.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		if rl.whitelist.contains(ip) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		if rl.isBlocked(ctx, ip) {
			rl.logger.Warn().
				Str("event", "blocked_request").
				Str("ip", ip).
				Str("path", r.URL.Path).
				Msg("blocked IP attempted request")
			metrics.BlockedRequests.WithLabelValues("ip_blocked").Inc()
			jsonError(w, http.StatusForbidden, "temporarily blocked")
			return
		}

		limit := rl.findLimit(r)
		if limit == nil {
			next.ServeHTTP(w, r)
			return
		}

		d, err := rl.count(ctx, limit, ip)
		if err != nil {
			rl.logger.Warn().Err(err).Str("pattern", limit.Pattern).Msg("rate limit check failed, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(d.resetAt.Unix(), 10))

		if !d.allowed {
			wait := int(math.Ceil(d.resetAt.Sub(rl.now()).Seconds()))
			h.Set("Retry-After", strconv.Itoa(max(wait, 1)))
			metrics.RateLimitHits.WithLabelValues(limit.Pattern).Inc()
			rl.logger.Warn().
				Str("event", "rate_limit_exceeded").
				Str("ip", ip).
				Str("pattern", limit.Pattern).
				Msg("rate limit exceeded")

			rl.recordViolation(ctx, ip)
			jsonError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// findLimit returns the first limit whose pattern prefixes the request.
func (rl *RateLimiter) findLimit(r *http.Request) *Limit {
	key := r.Method + " " + r.URL.Path
	for i := range rl.limits {
		if strings.HasPrefix(key, rl.limits[i].Pattern) {
			return &rl.limits[i]
		}
	}
	return nil
}

// count increments the window counter for ip under limit.
func (rl *RateLimiter) count(ctx context.Context, limit *Limit, ip string) (decision, error) {
	now := rl.now()
	start := now.Truncate(limit.Window)
	key := "ratelimit:" + limit.Pattern + ":" + ip + ":" + strconv.FormatInt(start.Unix(), 10)

	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, limit.Window)
		return nil
	})
	if err != nil {
		return decision{}, err
	}

	n := int(incr.Val())
	return decision{
		allowed:   n <= limit.Requests,
		remaining: max(limit.Requests-n, 0),
		resetAt:   start.Add(limit.Window),
	}, nil
}

// recordViolation counts a rejected request and blocks ip once it has
// been rejected blockAfter times within an hour.
func (rl *RateLimiter) recordViolation(ctx context.Context, ip string) {
	if !rl.autoBlock {
		return
	}

	key := "violations:ip:" + ip
	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, violationWindow)
		return nil
	})
	if err != nil || incr.Val() < rl.blockAfter {
		return
	}

	if err := rl.client.Set(ctx, blockKey(ip), "repeated rate limit violations", rl.blockFor).Err(); err != nil {
		rl.logger.Error().Err(err).Str("ip", ip).Msg("failed to block IP")
		return
	}
	rl.client.Del(ctx, key)
	metrics.BlockedRequests.WithLabelValues("auto_block").Inc()
	rl.logger.Warn().
		Str("event", "ip_auto_blocked").
		Str("ip", ip).
		Int64("violations", incr.Val()).
		Dur("duration", rl.blockFor).
		Msg("IP auto-blocked for repeated violations")
}

func (rl *RateLimiter) isBlocked(ctx context.Context, ip string) bool {
	n, err := rl.client.Exists(ctx, blockKey(ip)).Result()
	return err == nil && n > 0
}

func blockKey(ip string) string {
	return "blocked:ip:" + ip
}

// ClientIP returns the client address. Fly's edge header wins; otherwise
// RemoteAddr, which chi's RealIP middleware has already rewritten from
// forwarding headers.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get("Fly-Client-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ipSet matches addresses against single IPs and CIDR ranges.
type ipSet struct {
	ips  map[string]bool
	nets []*net.IPNet
}

func parseIPSet(entries []string, logger zerolog.Logger) ipSet {
	s := ipSet{ips: make(map[string]bool)}
	for _, entry := range entries {
		if !strings.Contains(entry, "/") {
			s.ips[entry] = true
			continue
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			logger.Warn().Str("entry", entry).Err(err).Msg("invalid CIDR in whitelist")
			continue
		}
		s.nets = append(s.nets, ipNet)
	}
	if len(entries) > 0 {
		logger.Info().Int("ips", len(s.ips)).Int("cidrs", len(s.nets)).Msg("rate limit whitelist configured")
	}
	return s
}

func (s ipSet) contains(addr string) bool {
	if s.ips[addr] {
		return true
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range s.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
