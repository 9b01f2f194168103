package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	pkgAuth "github.com/alexriley/storefront-sync/pkg/auth"
	"github.com/alexriley/storefront-sync/pkg/logger"
)

type stubVerifier struct {
	identity pkgAuth.Identity
	err      error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (pkgAuth.Identity, error) {
	return s.identity, s.err
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func TestOptionalAuthAnonymousPassesThrough(t *testing.T) {
	var captured pkgAuth.Identity
	handler := OptionalAuth(&stubVerifier{}, quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if captured.LoggedIn() {
		t.Fatalf("expected anonymous identity, got %+v", captured)
	}
}

func TestOptionalAuthSeedsIdentity(t *testing.T) {
	want := pkgAuth.Identity{UID: "user-1", Email: "u@shop.test", EmailVerified: true}
	var captured pkgAuth.Identity
	handler := OptionalAuth(&stubVerifier{identity: want}, quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if captured != want {
		t.Fatalf("unexpected identity %+v", captured)
	}
}

func TestOptionalAuthRejectsInvalidToken(t *testing.T) {
	called := false
	handler := OptionalAuth(&stubVerifier{err: errors.New("expired")}, quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Fatal("next handler must not run for an invalid token")
	}
}
