package chi

import (
	"math"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

type rateLimitResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"` // minutes
}

// RateLimiter limits requests per client IP. Throttled requests get the same
// JSON error shape as the rest of the API, not the library's plain-text body.
func RateLimiter(maxRequests int, window time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	retryAfter := int(math.Ceil(window.Minutes()))
	return httprate.Limit(
		maxRequests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("rate limit exceeded", zap.String("ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, rateLimitResponse{
				Error:      "Too many requests",
				RetryAfter: retryAfter,
			})
		}),
	)
}
