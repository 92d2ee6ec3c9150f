package mcp

import (
	"crypto/subtle"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultMCPMaxBodyBytes int64 = 1 << 20 // 1MiB

type HTTPHandlerConfig struct {
	AuthToken       string
	RateLimitPerMin int
	MaxBodyBytes    int64
}

// wrapHTTPHandler guards the MCP transport. Requests pass bearer auth first,
// then the per-caller rate limit, then get their body capped.
func wrapHTTPHandler(base http.Handler, cfg HTTPHandlerConfig) http.Handler {
	limited := withRateLimit(withBodyLimit(base, cfg.MaxBodyBytes), newHTTPRateLimiter(cfg.RateLimitPerMin))
	return withBearerAuth(limited, cfg.AuthToken)
}

func withBearerAuth(next http.Handler, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided, ok := strings.CutPrefix(strings.TrimSpace(r.Header.Get("Authorization")), "Bearer ")
		if !ok {
			rejectJSON(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		provided = strings.TrimSpace(provided)
		// An empty configured token matches nothing.
		if token == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			rejectJSON(w, http.StatusForbidden, "invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withBodyLimit(next http.Handler, limit int64) http.Handler {
	if limit <= 0 {
		limit = defaultMCPMaxBodyBytes
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}

func withRateLimit(next http.Handler, limiter *httpRateLimiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter != nil && !limiter.Allow(callerKey(r)) {
			rejectJSON(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// callerKey buckets requests by bearer token and source host, so callers
// sharing a token behind different addresses get separate windows.
func callerKey(r *http.Request) string {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	token, _ := strings.CutPrefix(strings.TrimSpace(r.Header.Get("Authorization")), "Bearer ")
	if token = strings.TrimSpace(token); token == "" {
		return host
	}
	return token + "|" + host
}

// httpRateLimiter counts requests per caller in fixed one-minute windows.
// The window resets lazily on the first request after it expires.
type httpRateLimiter struct {
	mu      sync.Mutex
	limit   int
	windows map[string]requestWindow
}

type requestWindow struct {
	start time.Time
	count int
}

func newHTTPRateLimiter(perMin int) *httpRateLimiter {
	if perMin <= 0 {
		perMin = 60
	}
	return &httpRateLimiter{limit: perMin, windows: make(map[string]requestWindow)}
}

func (l *httpRateLimiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.windows[key]
	if w.start.IsZero() || now.Sub(w.start) >= time.Minute {
		l.windows[key] = requestWindow{start: now, count: 1}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	l.windows[key] = w
	return true
}

func rejectJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
