package middleware

import (
	"fmt"
	"net"
	"net/http"

	"github.com/orangery/ams/shared/logger"
	"github.com/orangery/ams/shared/middleware/ratelimiter"
	"github.com/orangery/ams/shared/utils"
)

// RateLimit answers 429 once the client identified by getKey runs out of tokens.
func RateLimit(rl *ratelimiter.Limiter, getKey func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := getKey(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(key) {
				logger.Log.Warn("rate limit exceeded", "path", r.URL.Path, "client", key)
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIP takes the client address from RemoteAddr only. Forwarding headers are
// honoured solely when the router installs a trusted RealIP step in front.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}
