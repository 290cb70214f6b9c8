package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/campusconnect/places-engine/pkg/auth"
	"github.com/campusconnect/places-engine/pkg/models"
	"github.com/campusconnect/places-engine/pkg/services"
)

// stubAuthService trusts the bearer token as "<user-uuid>|<scope>|<university-uuid>"
// so tests can mint identities without real JWTs.
type stubAuthService struct{}

var _ auth.AuthService = (*stubAuthService)(nil)

func (stubAuthService) ValidateRequest(r *http.Request) (*auth.Claims, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, auth.ErrMissingAuthorization
	}
	parts := strings.SplitN(strings.TrimPrefix(header, "Bearer "), "|", 3)
	if len(parts) != 3 {
		return nil, auth.ErrInvalidAuthFormat
	}
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: parts[0]},
		AdminScope:       parts[1],
		UniversityID:     parts[2],
	}, nil
}

func bearerFor(actor models.Actor) string {
	return fmt.Sprintf("Bearer %s|%s|%s", actor.ID, actor.AdminScope, actor.UniversityID)
}

// stubPlaceService lets each test supply just the methods it exercises.
type stubPlaceService struct {
	create        func(ctx context.Context, input services.CreatePlaceInput, actor models.Actor) (*models.Place, error)
	get           func(ctx context.Context, id uuid.UUID, actor *models.Actor) (*services.PlaceDetail, error)
	listApproved  func(ctx context.Context) ([]*models.Place, error)
	listRoots     func(ctx context.Context) ([]*models.Place, error)
	search        func(ctx context.Context, input services.SearchPlacesInput) ([]*models.Place, error)
	listTypes     func(ctx context.Context) ([]*models.PlaceType, error)
	del           func(ctx context.Context, id uuid.UUID, actor models.Actor) error
	deleteSubtree func(ctx context.Context, id uuid.UUID, actor models.Actor) ([]uuid.UUID, error)
}

var _ services.PlaceService = (*stubPlaceService)(nil)

func (s *stubPlaceService) Create(ctx context.Context, input services.CreatePlaceInput, actor models.Actor) (*models.Place, error) {
	return s.create(ctx, input, actor)
}

func (s *stubPlaceService) Get(ctx context.Context, id uuid.UUID, actor *models.Actor) (*services.PlaceDetail, error) {
	return s.get(ctx, id, actor)
}

func (s *stubPlaceService) ListApproved(ctx context.Context) ([]*models.Place, error) {
	return s.listApproved(ctx)
}

func (s *stubPlaceService) ListRoots(ctx context.Context) ([]*models.Place, error) {
	return s.listRoots(ctx)
}

func (s *stubPlaceService) Search(ctx context.Context, input services.SearchPlacesInput) ([]*models.Place, error) {
	return s.search(ctx, input)
}

func (s *stubPlaceService) ListTypes(ctx context.Context) ([]*models.PlaceType, error) {
	return s.listTypes(ctx)
}

func (s *stubPlaceService) Delete(ctx context.Context, id uuid.UUID, actor models.Actor) error {
	return s.del(ctx, id, actor)
}

func (s *stubPlaceService) DeleteSubtree(ctx context.Context, id uuid.UUID, actor models.Actor) ([]uuid.UUID, error) {
	return s.deleteSubtree(ctx, id, actor)
}

// stubReviewService mirrors stubPlaceService for the review surface.
type stubReviewService struct {
	propose     func(ctx context.Context, placeID uuid.UUID, input services.ProposeUpdateInput, actor models.Actor) (*models.PlaceUpdate, error)
	listPending func(ctx context.Context, actor models.Actor) ([]*models.PlaceUpdate, error)
	get         func(ctx context.Context, id uuid.UUID, actor models.Actor) (*services.UpdateDetail, error)
	approve     func(ctx context.Context, id uuid.UUID, actor models.Actor) (*models.Place, error)
	reject      func(ctx context.Context, id uuid.UUID, actor models.Actor) error
}

var _ services.UpdateReviewService = (*stubReviewService)(nil)

func (s *stubReviewService) Propose(ctx context.Context, placeID uuid.UUID, input services.ProposeUpdateInput, actor models.Actor) (*models.PlaceUpdate, error) {
	return s.propose(ctx, placeID, input, actor)
}

func (s *stubReviewService) ListPending(ctx context.Context, actor models.Actor) ([]*models.PlaceUpdate, error) {
	return s.listPending(ctx, actor)
}

func (s *stubReviewService) Get(ctx context.Context, id uuid.UUID, actor models.Actor) (*services.UpdateDetail, error) {
	return s.get(ctx, id, actor)
}

func (s *stubReviewService) Approve(ctx context.Context, id uuid.UUID, actor models.Actor) (*models.Place, error) {
	return s.approve(ctx, id, actor)
}

func (s *stubReviewService) Reject(ctx context.Context, id uuid.UUID, actor models.Actor) error {
	return s.reject(ctx, id, actor)
}
