// Package auth provides JWT-based authentication for places-engine.
// Identity is issued externally; this package validates bearer tokens
// against configured JWKS endpoints and exposes the acting principal to
// handlers and services through the request context.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/campusconnect/places-engine/pkg/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
)

// Claims represents the JWT claims structure issued by the identity provider.
// It embeds RegisteredClaims for standard JWT fields (sub, iss, exp, etc.)
// and adds the admin scope and home university used for permission decisions.
type Claims struct {
	jwt.RegisteredClaims
	AdminScope   string `json:"admin_scope,omitempty"`   // none | university | app
	UniversityID string `json:"university_id,omitempty"` // Home university UUID
	Email        string `json:"email,omitempty"`         // User email address
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// SetClaims stores JWT claims in the context for downstream handlers.
func SetClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// Actor converts validated claims into the acting principal.
func (c *Claims) Actor() (models.Actor, error) {
	if c.Subject == "" {
		return models.Actor{}, fmt.Errorf("missing subject in JWT claims")
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return models.Actor{}, fmt.Errorf("invalid subject format: %w", err)
	}

	actor := models.Actor{
		ID:         id,
		AdminScope: models.ParseAdminScope(c.AdminScope),
	}
	if c.UniversityID != "" {
		universityID, err := uuid.Parse(c.UniversityID)
		if err != nil {
			return models.Actor{}, fmt.Errorf("invalid university ID format: %w", err)
		}
		actor.UniversityID = universityID
	}
	return actor, nil
}

// ActorFromContext extracts the acting principal from JWT claims in context.
// Returns an error if the request is not authenticated.
func ActorFromContext(ctx context.Context) (models.Actor, error) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return models.Actor{}, fmt.Errorf("authentication required: no claims in context")
	}
	return claims.Actor()
}

// OptionalActorFromContext extracts the acting principal when present.
// Returns nil for unauthenticated requests; read endpoints use this to widen
// visibility for owners and admins without requiring auth.
func OptionalActorFromContext(ctx context.Context) *models.Actor {
	actor, err := ActorFromContext(ctx)
	if err != nil {
		return nil
	}
	return &actor
}
