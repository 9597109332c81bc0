package handlers

import (
	"net"
	"net/http"
	"strings"

	"github.com/pulse/backend/internal/logging"
)

// RateLimiter is the minimal interface required to guard credential endpoints.
type RateLimiter interface {
	Allow(key string) bool
}

// throttled reports whether the request exceeded its allowance for scope, in
// which case a 429 has already been written.
func throttled(limiter RateLimiter, w http.ResponseWriter, r *http.Request, scope string) bool {
	if limiter == nil {
		return false
	}
	ip := clientIP(r)
	if limiter.Allow(scope + ":" + ip) {
		return false
	}

	ctx := r.Context()
	logging.FromContext(ctx).Warn("rate limit exceeded", "scope", scope, "client_ip", ip)
	w.Header().Set("Retry-After", "60")
	respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests, please try again later"})
	return true
}

func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if addr := strings.TrimSpace(r.RemoteAddr); addr != "" {
		return addr
	}
	return "unknown"
}
