package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
)

const msgTooManyRequests = "Bạn thao tác quá nhanh. Vui lòng thử lại sau giây lát."

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// IdleTTL drops a caller's limiter after this long without requests.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 20,
		BurstSize:         40,
		IdleTTL:           10 * time.Minute,
	}
}

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore keeps one limiter per caller key. Sessions come and go, so
// idle entries are swept at most once per IdleTTL.
type limiterStore struct {
	mu        sync.Mutex
	cfg       RateLimitConfig
	callers   map[string]*callerLimiter
	lastSweep time.Time
}

func newLimiterStore(cfg RateLimitConfig) *limiterStore {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultRateLimitConfig().IdleTTL
	}
	return &limiterStore{
		cfg:     cfg,
		callers: make(map[string]*callerLimiter),
	}
}

func (s *limiterStore) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= s.cfg.IdleTTL {
		for k, cl := range s.callers {
			if now.Sub(cl.lastSeen) >= s.cfg.IdleTTL {
				delete(s.callers, k)
			}
		}
		s.lastSweep = now
	}

	cl, ok := s.callers[key]
	if !ok {
		cl = &callerLimiter{limiter: rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), s.cfg.BurstSize)}
		s.callers[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

func (s *limiterStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.callers)
}

// retryAfter is the whole number of seconds until one token is available.
func retryAfter(l *rate.Limiter, now time.Time) int {
	if l.Limit() <= 0 {
		return 1
	}
	missing := 1 - l.TokensAt(now)
	if missing <= 0 {
		return 1
	}
	return int(math.Ceil(missing / float64(l.Limit())))
}

func rateLimitKey(c echo.Context) string {
	if sess := auth.SessionFromContext(c.Request().Context()); sess != nil {
		return "session:" + sess.ID.String()
	}
	return "ip:" + c.RealIP()
}

// RateLimit throttles per client. Logged-in callers are keyed by session so
// tabs behind one NAT do not starve each other; anonymous callers (the login
// form) are keyed by IP.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	return rateLimit(newLimiterStore(cfg), time.Now)
}

func rateLimit(store *limiterStore, now func() time.Time) echo.MiddlewareFunc {
	limit := strconv.FormatFloat(store.cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			t := now()
			l := store.get(rateLimitKey(c), t)
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)

			if !l.AllowN(t, 1) {
				h.Set("Retry-After", strconv.Itoa(retryAfter(l, t)))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, msgTooManyRequests)
			}
			h.Set("X-RateLimit-Remaining", strconv.Itoa(int(l.TokensAt(t))))
			return next(c)
		}
	}
}
