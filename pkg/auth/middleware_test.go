package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// stubAuthService returns fixed claims or a fixed error.
type stubAuthService struct {
	claims *Claims
	err    error
}

func (s *stubAuthService) ValidateRequest(r *http.Request) (*Claims, error) {
	return s.claims, s.err
}

func validClaims() *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.New().String()},
		AdminScope:       "none",
	}
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	m := NewMiddleware(&stubAuthService{err: errors.New("bad token")}, zap.NewNop())

	called := false
	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/places", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if called {
		t.Error("handler should not be called for invalid token")
	}
}

func TestRequireAuthRejectsUnparsableActor(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"}}
	m := NewMiddleware(&stubAuthService{claims: claims}, zap.NewNop())

	rec := httptest.NewRecorder()
	m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})(rec, httptest.NewRequest(http.MethodPost, "/api/places", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthSetsClaims(t *testing.T) {
	claims := validClaims()
	m := NewMiddleware(&stubAuthService{claims: claims}, zap.NewNop())

	rec := httptest.NewRecorder()
	m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		got, ok := GetClaims(r.Context())
		if !ok || got != claims {
			t.Error("claims not set in context")
		}
	})(rec, httptest.NewRequest(http.MethodPost, "/api/places", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestOptionalAuthPassesThroughAnonymous(t *testing.T) {
	m := NewMiddleware(&stubAuthService{err: errors.New("should not be consulted")}, zap.NewNop())

	rec := httptest.NewRecorder()
	m.OptionalAuth(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetClaims(r.Context()); ok {
			t.Error("anonymous request should have no claims")
		}
	})(rec, httptest.NewRequest(http.MethodGet, "/api/places", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestOptionalAuthRejectsBadToken(t *testing.T) {
	m := NewMiddleware(&stubAuthService{err: errors.New("expired")}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/places", nil)
	req.Header.Set("Authorization", "Bearer expired-token")

	rec := httptest.NewRecorder()
	m.OptionalAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called for a bad supplied token")
	})(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
