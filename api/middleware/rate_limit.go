package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/alexriley/storefront-sync/api/responses"
	"github.com/alexriley/storefront-sync/pkg/config"
	pkgerrors "github.com/alexriley/storefront-sync/pkg/errors"
	"github.com/alexriley/storefront-sync/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// CartRateLimit throttles cart mutations per caller with a redis-backed
// fixed window. Signed-in callers are counted by user id, anonymous ones by
// client IP. A limiter failure fails open; losing the throttle is better
// than losing the cart.
func CartRateLimit(cfg config.RateLimitConfig, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.CartWindow <= 0 || cfg.CartUserLimit <= 0 || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			caller := IdentityFromContext(ctx).UID
			if caller == "" {
				caller = "ip:" + clientIP(r)
			}

			allowed, count, err := store.FixedWindowAllow(ctx, "cart:"+caller, int64(cfg.CartUserLimit), cfg.CartWindow)
			if err != nil {
				if logg != nil {
					logg.Warn(ctx, "cart.rate_limit.unavailable")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"attempts":       count,
						"limit":          cfg.CartUserLimit,
						"window_seconds": int(cfg.CartWindow.Seconds()),
					})
					logg.Warn(logCtx, "cart.rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
