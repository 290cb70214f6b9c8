package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusconnect/places-engine/pkg/apperrors"
	"github.com/campusconnect/places-engine/pkg/database"
	"github.com/campusconnect/places-engine/pkg/models"
	"github.com/campusconnect/places-engine/pkg/repositories"
)

// CreatePlaceInput is the candidate field set for a new place. PlaceType is
// free text resolved against the place-type catalog with a get-or-create.
type CreatePlaceInput struct {
	UniversityID      uuid.UUID  `json:"university_id"`
	AcademicUnitID    *uuid.UUID `json:"academic_unit_id"`
	ParentID          *uuid.UUID `json:"parent_id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	History           string     `json:"history"`
	EstablishmentYear *int       `json:"establishment_year"`
	PlaceType         string     `json:"place_type"`
	RelativeLocation  string     `json:"relative_location"`
	Latitude          *float64   `json:"latitude"`
	Longitude         *float64   `json:"longitude"`
	MapsLink          string     `json:"maps_link"`
	UniversityRoot    bool       `json:"university_root"`
	AcademicUnitRoot  bool       `json:"academic_unit_root"`
}

// SearchPlacesInput narrows the public search. Query is free text matched
// against place and university/academic-unit names; it cannot be combined with
// the specific filters. University, AcademicUnit and PlaceType filter by exact
// name; an unknown name is a not-found error.
type SearchPlacesInput struct {
	Query            string
	Name             string
	RelativeLocation string
	University       string
	AcademicUnit     string
	PlaceType        string
}

// PlaceDetail is a place with its direct children and attached media.
type PlaceDetail struct {
	Place    *models.Place        `json:"place"`
	Children []*models.Place      `json:"children"`
	Media    []*models.PlaceMedia `json:"media"`
}

// PlaceService owns the live place tree: creation with invariant validation,
// visibility-aware reads, and the two deletion paths.
type PlaceService interface {
	// Create validates the candidate against the tree and persists it.
	// Admin authors (university or app scope) get an approved place
	// immediately; everyone else a pending one.
	Create(ctx context.Context, input CreatePlaceInput, actor models.Actor) (*models.Place, error)

	// Get returns a place with children and media. Unapproved places are
	// not-found to everyone but their creator and covering admins; actor may
	// be nil for anonymous reads.
	Get(ctx context.Context, id uuid.UUID, actor *models.Actor) (*PlaceDetail, error)

	// ListApproved returns all approved places.
	ListApproved(ctx context.Context) ([]*models.Place, error)

	// ListRoots returns approved parentless places.
	ListRoots(ctx context.Context) ([]*models.Place, error)

	// Search returns approved places matching the input.
	Search(ctx context.Context, input SearchPlacesInput) ([]*models.Place, error)

	// ListTypes returns the place-type catalog.
	ListTypes(ctx context.Context) ([]*models.PlaceType, error)

	// Delete removes a childless place. Creator or covering admin only.
	Delete(ctx context.Context, id uuid.UUID, actor models.Actor) error

	// DeleteSubtree removes a place and every descendant, returning the
	// removed ids. App-scope admins only.
	DeleteSubtree(ctx context.Context, id uuid.UUID, actor models.Actor) ([]uuid.UUID, error)
}

type placeService struct {
	db        database.TxRunner
	placeRepo repositories.PlaceRepository
	typeRepo  repositories.PlaceTypeRepository
	univRepo  repositories.UniversityRepository
	mediaRepo repositories.PlaceMediaRepository
	logger    *zap.Logger
}

// PlaceServiceDeps contains dependencies for PlaceService.
type PlaceServiceDeps struct {
	DB        database.TxRunner
	PlaceRepo repositories.PlaceRepository
	TypeRepo  repositories.PlaceTypeRepository
	UnivRepo  repositories.UniversityRepository
	MediaRepo repositories.PlaceMediaRepository
	Logger    *zap.Logger
}

// NewPlaceService creates a new PlaceService.
func NewPlaceService(deps *PlaceServiceDeps) PlaceService {
	return &placeService{
		db:        deps.DB,
		placeRepo: deps.PlaceRepo,
		typeRepo:  deps.TypeRepo,
		univRepo:  deps.UnivRepo,
		mediaRepo: deps.MediaRepo,
		logger:    deps.Logger,
	}
}

var _ PlaceService = (*placeService)(nil)

func (s *placeService) Create(ctx context.Context, input CreatePlaceInput, actor models.Actor) (*models.Place, error) {
	verr := apperrors.NewValidationError()
	if input.Name == "" {
		verr.Add("name", "Name is required.")
	}
	if input.UniversityID == uuid.Nil {
		verr.Add("university", "University is required.")
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	university, err := s.univRepo.GetByID(ctx, input.UniversityID)
	if err != nil {
		return nil, err
	}
	if university == nil {
		verr.Add("university", "University does not exist.")
		return nil, verr
	}

	status := models.ApprovalPending
	if actor.AdminScope.IsAdmin() {
		status = models.ApprovalApproved
	}

	place := &models.Place{
		UniversityID:      input.UniversityID,
		AcademicUnitID:    input.AcademicUnitID,
		ParentID:          input.ParentID,
		Name:              input.Name,
		Description:       input.Description,
		History:           input.History,
		EstablishmentYear: input.EstablishmentYear,
		RelativeLocation:  input.RelativeLocation,
		Latitude:          input.Latitude,
		Longitude:         input.Longitude,
		MapsLink:          input.MapsLink,
		CreatedBy:         &actor.ID,
		ApprovalStatus:    status,
		UniversityRoot:    input.UniversityRoot,
		AcademicUnitRoot:  input.AcademicUnitRoot,
	}

	// Validation and insert share one transaction so the root-exclusivity
	// check-then-write cannot race a concurrent create.
	err = s.db.InTx(ctx, func(ctx context.Context) error {
		if input.PlaceType != "" {
			placeType, err := s.typeRepo.GetOrCreate(ctx, input.PlaceType)
			if err != nil {
				return err
			}
			place.PlaceTypeID = &placeType.ID
		}

		lookup := NewStoreLookup(s.placeRepo, s.univRepo)
		if err := ValidatePlacement(ctx, lookup, projectionFor(nil, place)); err != nil {
			return err
		}
		return s.placeRepo.Create(ctx, place)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("place created",
		zap.String("place_id", place.ID.String()),
		zap.String("university_id", place.UniversityID.String()),
		zap.String("approval_status", place.ApprovalStatus),
		zap.Bool("university_root", place.UniversityRoot))
	return place, nil
}

func (s *placeService) Get(ctx context.Context, id uuid.UUID, actor *models.Actor) (*PlaceDetail, error) {
	place, err := s.placeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if place == nil {
		return nil, apperrors.ErrNotFound
	}
	if !place.IsApproved() && !canSeeUnapproved(place, actor) {
		return nil, apperrors.ErrNotFound
	}

	children, err := s.placeRepo.ListChildren(ctx, place.ID)
	if err != nil {
		return nil, err
	}
	media, err := s.mediaRepo.ListByPlace(ctx, place.ID)
	if err != nil {
		return nil, err
	}
	return &PlaceDetail{Place: place, Children: children, Media: media}, nil
}

// canSeeUnapproved gates pending/rejected places to their creator and
// covering admins.
func canSeeUnapproved(place *models.Place, actor *models.Actor) bool {
	if actor == nil {
		return false
	}
	return actor.CanManagePlace(place)
}

func (s *placeService) ListApproved(ctx context.Context) ([]*models.Place, error) {
	return s.placeRepo.ListApproved(ctx)
}

func (s *placeService) ListRoots(ctx context.Context) ([]*models.Place, error) {
	return s.placeRepo.ListRoots(ctx)
}

func (s *placeService) Search(ctx context.Context, input SearchPlacesInput) ([]*models.Place, error) {
	hasSpecific := input.Name != "" || input.RelativeLocation != "" ||
		input.University != "" || input.AcademicUnit != "" || input.PlaceType != ""
	if input.Query != "" && hasSpecific {
		verr := apperrors.NewValidationError()
		verr.Add("q", "Cannot use general search with specific fields (university, place_type, name, relative_location, academic_unit).")
		return nil, verr
	}

	filter := repositories.PlaceFilter{
		Query:            input.Query,
		Name:             input.Name,
		RelativeLocation: input.RelativeLocation,
	}
	if input.University != "" {
		university, err := s.univRepo.GetByName(ctx, input.University)
		if err != nil {
			return nil, err
		}
		if university == nil {
			return nil, apperrors.ErrNotFound
		}
		filter.UniversityID = &university.ID
	}
	if input.AcademicUnit != "" {
		unit, err := s.univRepo.GetAcademicUnitByName(ctx, input.AcademicUnit)
		if err != nil {
			return nil, err
		}
		if unit == nil {
			return nil, apperrors.ErrNotFound
		}
		filter.AcademicUnitID = &unit.ID
	}
	if input.PlaceType != "" {
		placeType, err := s.typeRepo.GetByName(ctx, models.NormalizePlaceTypeName(input.PlaceType))
		if err != nil {
			return nil, err
		}
		if placeType == nil {
			return nil, apperrors.ErrNotFound
		}
		filter.PlaceTypeID = &placeType.ID
	}

	return s.placeRepo.Search(ctx, filter)
}

func (s *placeService) ListTypes(ctx context.Context) ([]*models.PlaceType, error) {
	return s.typeRepo.List(ctx)
}

func (s *placeService) Delete(ctx context.Context, id uuid.UUID, actor models.Actor) error {
	err := s.db.InTx(ctx, func(ctx context.Context) error {
		place, err := s.placeRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if place == nil {
			return apperrors.ErrNotFound
		}
		if !actor.CanManagePlace(place) {
			return apperrors.ErrPermissionDenied
		}

		hasChildren, err := s.placeRepo.HasChildren(ctx, id)
		if err != nil {
			return err
		}
		if hasChildren {
			return apperrors.ErrHasChildren
		}
		return s.placeRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("place deleted",
		zap.String("place_id", id.String()),
		zap.String("actor_id", actor.ID.String()))
	return nil
}

func (s *placeService) DeleteSubtree(ctx context.Context, id uuid.UUID, actor models.Actor) ([]uuid.UUID, error) {
	if actor.AdminScope != models.AdminScopeApp {
		return nil, apperrors.ErrPermissionDenied
	}

	var removed []uuid.UUID
	err := s.db.InTx(ctx, func(ctx context.Context) error {
		place, err := s.placeRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if place == nil {
			return apperrors.ErrNotFound
		}

		// Breadth-first walk over parent edges collects every descendant id
		// before anything is removed, so the returned set is complete even
		// with storage-level cascades in play.
		removed = append(removed, place.ID)
		queue := []uuid.UUID{place.ID}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]

			children, err := s.placeRepo.ListChildren(ctx, current)
			if err != nil {
				return err
			}
			for _, child := range children {
				removed = append(removed, child.ID)
				queue = append(queue, child.ID)
			}
		}

		deleted, err := s.placeRepo.DeleteMany(ctx, removed)
		if err != nil {
			return err
		}
		if deleted != int64(len(removed)) {
			return fmt.Errorf("subtree delete removed %d of %d places", deleted, len(removed))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("place subtree deleted",
		zap.String("root_id", id.String()),
		zap.Int("count", len(removed)),
		zap.String("actor_id", actor.ID.String()))
	return removed, nil
}
