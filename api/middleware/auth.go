package middleware

import (
	"net/http"
	"strings"

	"github.com/alexriley/storefront-sync/api/responses"
	pkgAuth "github.com/alexriley/storefront-sync/pkg/auth"
	pkgerrors "github.com/alexriley/storefront-sync/pkg/errors"
	"github.com/alexriley/storefront-sync/pkg/logger"
)

// OptionalAuth verifies a bearer token when one is supplied and seeds the
// request context with the resulting identity. A request with no credentials
// proceeds anonymously; the login guard belongs to the cart core, not the
// transport. A token that is present but invalid is still rejected here.
func OptionalAuth(verifier pkgAuth.TokenVerifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			if logg != nil {
				ctx = logg.WithUserID(ctx, identity.UID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
