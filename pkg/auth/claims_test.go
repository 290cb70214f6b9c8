package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/campusconnect/places-engine/pkg/models"
)

func TestClaimsActor(t *testing.T) {
	userID := uuid.New()
	universityID := uuid.New()

	tests := []struct {
		name      string
		claims    Claims
		wantErr   bool
		wantScope models.AdminScope
	}{
		{
			name: "university admin",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
				AdminScope:       "university",
				UniversityID:     universityID.String(),
			},
			wantScope: models.AdminScopeUniversity,
		},
		{
			name: "no scope defaults to none",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
			},
			wantScope: models.AdminScopeNone,
		},
		{
			name: "unknown scope defaults to none",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
				AdminScope:       "superuser",
			},
			wantScope: models.AdminScopeNone,
		},
		{
			name:    "missing subject",
			claims:  Claims{AdminScope: "app"},
			wantErr: true,
		},
		{
			name: "malformed subject",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"},
			},
			wantErr: true,
		},
		{
			name: "malformed university id",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
				UniversityID:     "broken",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, err := tt.claims.Actor()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if actor.ID != userID {
				t.Errorf("actor ID = %s, want %s", actor.ID, userID)
			}
			if actor.AdminScope != tt.wantScope {
				t.Errorf("admin scope = %q, want %q", actor.AdminScope, tt.wantScope)
			}
		})
	}
}

func TestActorFromContext(t *testing.T) {
	if _, err := ActorFromContext(context.Background()); err == nil {
		t.Fatal("expected error without claims in context")
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.New().String()},
		AdminScope:       "app",
	}
	ctx := SetClaims(context.Background(), claims)

	actor, err := ActorFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actor.AdminScope != models.AdminScopeApp {
		t.Errorf("admin scope = %q, want app", actor.AdminScope)
	}

	if opt := OptionalActorFromContext(ctx); opt == nil {
		t.Error("OptionalActorFromContext should return actor when authenticated")
	}
	if opt := OptionalActorFromContext(context.Background()); opt != nil {
		t.Error("OptionalActorFromContext should return nil when unauthenticated")
	}
}
