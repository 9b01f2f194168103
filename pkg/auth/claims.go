package auth

import "github.com/golang-jwt/jwt/v5"

// Identity is the verified caller identity threaded through request context
// and into the session provider. A zero UID means an anonymous request.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	BackendToken  string
}

// LoggedIn reports whether the identity belongs to an authenticated user.
func (i Identity) LoggedIn() bool {
	return i.UID != ""
}

// AccessTokenClaims represents the typed JWT accepted in dev mode.
type AccessTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	BackendToken  string `json:"backend_token,omitempty"`
	jwt.RegisteredClaims
}
