package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusconnect/places-engine/pkg/apperrors"
	"github.com/campusconnect/places-engine/pkg/database"
	"github.com/campusconnect/places-engine/pkg/models"
	"github.com/campusconnect/places-engine/pkg/repositories"
)

// ProposeUpdateInput is the staged change set for a live place. Nil fields are
// "leave unchanged"; for strings an explicit empty value also means unchanged.
// PlaceType is free text resolved through the catalog. Nil root flags inherit
// the target place's current flags, so an update that does not mention them is
// root-neutral on approval.
type ProposeUpdateInput struct {
	AcademicUnitID    *uuid.UUID `json:"academic_unit_id"`
	ParentID          *uuid.UUID `json:"parent_id"`
	Name              *string    `json:"name"`
	Description       *string    `json:"description"`
	History           *string    `json:"history"`
	EstablishmentYear *int       `json:"establishment_year"`
	PlaceType         *string    `json:"place_type"`
	RelativeLocation  *string    `json:"relative_location"`
	Latitude          *float64   `json:"latitude"`
	Longitude         *float64   `json:"longitude"`
	MapsLink          *string    `json:"maps_link"`
	UniversityRoot    *bool      `json:"university_root"`
	AcademicUnitRoot  *bool      `json:"academic_unit_root"`
}

// UpdateDetail is a staged update alongside its target place and staged media.
type UpdateDetail struct {
	Update *models.PlaceUpdate  `json:"update"`
	Place  *models.Place        `json:"place"`
	Media  []*models.PlaceMedia `json:"media"`
}

// UpdateReviewService is the state machine over staged place edits:
// pending → approved (merge into the live place) or rejected.
type UpdateReviewService interface {
	// Propose stages an edit against an approved place. Non-admin authors may
	// only stage media; any other field fails validation at this point.
	Propose(ctx context.Context, placeID uuid.UUID, input ProposeUpdateInput, actor models.Actor) (*models.PlaceUpdate, error)

	// ListPending returns pending updates visible to the actor: all of them
	// for app scope, the home university's for university scope.
	ListPending(ctx context.Context, actor models.Actor) ([]*models.PlaceUpdate, error)

	// Get returns an update with its target place and staged media. Author or
	// covering admin only.
	Get(ctx context.Context, id uuid.UUID, actor models.Actor) (*UpdateDetail, error)

	// Approve merges a pending update into its live place atomically,
	// re-validating the merged shape first. On a validation failure the
	// update stays pending.
	Approve(ctx context.Context, id uuid.UUID, actor models.Actor) (*models.Place, error)

	// Reject marks a pending update rejected. The live place and the staged
	// media rows are untouched.
	Reject(ctx context.Context, id uuid.UUID, actor models.Actor) error
}

type updateReviewService struct {
	db         database.TxRunner
	placeRepo  repositories.PlaceRepository
	updateRepo repositories.PlaceUpdateRepository
	typeRepo   repositories.PlaceTypeRepository
	univRepo   repositories.UniversityRepository
	mediaRepo  repositories.PlaceMediaRepository
	logger     *zap.Logger
}

// UpdateReviewServiceDeps contains dependencies for UpdateReviewService.
type UpdateReviewServiceDeps struct {
	DB         database.TxRunner
	PlaceRepo  repositories.PlaceRepository
	UpdateRepo repositories.PlaceUpdateRepository
	TypeRepo   repositories.PlaceTypeRepository
	UnivRepo   repositories.UniversityRepository
	MediaRepo  repositories.PlaceMediaRepository
	Logger     *zap.Logger
}

// NewUpdateReviewService creates a new UpdateReviewService.
func NewUpdateReviewService(deps *UpdateReviewServiceDeps) UpdateReviewService {
	return &updateReviewService{
		db:         deps.DB,
		placeRepo:  deps.PlaceRepo,
		updateRepo: deps.UpdateRepo,
		typeRepo:   deps.TypeRepo,
		univRepo:   deps.UnivRepo,
		mediaRepo:  deps.MediaRepo,
		logger:     deps.Logger,
	}
}

var _ UpdateReviewService = (*updateReviewService)(nil)

func (s *updateReviewService) Propose(ctx context.Context, placeID uuid.UUID, input ProposeUpdateInput, actor models.Actor) (*models.PlaceUpdate, error) {
	place, err := s.placeRepo.GetByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if place == nil || !place.IsApproved() {
		return nil, apperrors.ErrNotFound
	}

	if !actor.AdminScope.IsAdmin() {
		if err := mediaOnlyViolations(input).ErrOrNil(); err != nil {
			return nil, err
		}
	}

	update := &models.PlaceUpdate{
		PlaceID:           place.ID,
		UniversityID:      place.UniversityID,
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
		UpdatedBy:         &actor.ID,
		ApprovalStatus:    models.ApprovalPending,
		UniversityRoot:    place.UniversityRoot,
		AcademicUnitRoot:  place.AcademicUnitRoot,
	}
	if input.UniversityRoot != nil {
		update.UniversityRoot = *input.UniversityRoot
	}
	if input.AcademicUnitRoot != nil {
		update.AcademicUnitRoot = *input.AcademicUnitRoot
	}

	err = s.db.InTx(ctx, func(ctx context.Context) error {
		if input.PlaceType != nil && *input.PlaceType != "" {
			placeType, err := s.typeRepo.GetOrCreate(ctx, *input.PlaceType)
			if err != nil {
				return err
			}
			update.PlaceTypeID = &placeType.ID
		}

		// The proposal is checked against the tree shape it would produce,
		// excluding the target place from the exclusivity scans since
		// approval overwrites that row rather than adding one.
		merged := update.MergeInto(place)
		lookup := NewStoreLookup(s.placeRepo, s.univRepo)
		if err := ValidatePlacement(ctx, lookup, projectionFor(&place.ID, &merged)); err != nil {
			return err
		}
		return s.updateRepo.Create(ctx, update)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("place update proposed",
		zap.String("update_id", update.ID.String()),
		zap.String("place_id", place.ID.String()),
		zap.String("author_id", actor.ID.String()))
	return update, nil
}

// mediaOnlyViolations flags every staged field a non-admin is not allowed to
// touch, keyed by field name.
func mediaOnlyViolations(input ProposeUpdateInput) *apperrors.ValidationError {
	const msg = "Only media updates are allowed for non-admin users."
	verr := apperrors.NewValidationError()

	staged := map[string]bool{
		"academic_unit":      input.AcademicUnitID != nil,
		"parent":             input.ParentID != nil,
		"name":               input.Name != nil,
		"description":        input.Description != nil,
		"history":            input.History != nil,
		"establishment_year": input.EstablishmentYear != nil,
		"place_type":         input.PlaceType != nil,
		"relative_location":  input.RelativeLocation != nil,
		"latitude":           input.Latitude != nil,
		"longitude":          input.Longitude != nil,
		"maps_link":          input.MapsLink != nil,
		"university_root":    input.UniversityRoot != nil,
		"academic_unit_root": input.AcademicUnitRoot != nil,
	}
	for field, set := range staged {
		if set {
			verr.Add(field, msg)
		}
	}
	return verr
}

func (s *updateReviewService) ListPending(ctx context.Context, actor models.Actor) ([]*models.PlaceUpdate, error) {
	switch actor.AdminScope {
	case models.AdminScopeApp:
		return s.updateRepo.ListPending(ctx, nil)
	case models.AdminScopeUniversity:
		return s.updateRepo.ListPending(ctx, &actor.UniversityID)
	default:
		return nil, apperrors.ErrPermissionDenied
	}
}

func (s *updateReviewService) Get(ctx context.Context, id uuid.UUID, actor models.Actor) (*UpdateDetail, error) {
	update, err := s.updateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if update == nil {
		return nil, apperrors.ErrNotFound
	}

	isAuthor := update.UpdatedBy != nil && *update.UpdatedBy == actor.ID
	if !isAuthor && !actor.Covers(update.UniversityID) {
		return nil, apperrors.ErrPermissionDenied
	}

	place, err := s.placeRepo.GetByID(ctx, update.PlaceID)
	if err != nil {
		return nil, err
	}
	media, err := s.mediaRepo.ListByUpdate(ctx, update.ID)
	if err != nil {
		return nil, err
	}
	return &UpdateDetail{Update: update, Place: place, Media: media}, nil
}

func (s *updateReviewService) Approve(ctx context.Context, id uuid.UUID, actor models.Actor) (*models.Place, error) {
	var approved *models.Place
	err := s.db.InTx(ctx, func(ctx context.Context) error {
		update, err := s.updateRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if update == nil {
			return apperrors.ErrNotFound
		}
		if update.ApprovalStatus != models.ApprovalPending {
			return apperrors.ErrUpdateNotPending
		}
		if !actor.Covers(update.UniversityID) {
			return apperrors.ErrPermissionDenied
		}

		place, err := s.placeRepo.GetByID(ctx, update.PlaceID)
		if err != nil {
			return err
		}
		if place == nil {
			return apperrors.ErrNotFound
		}

		// Re-validate against the current tree; it may have changed since
		// the proposal. A failure aborts the transaction and the update
		// remains pending for a later retry.
		merged := update.MergeInto(place)
		lookup := NewStoreLookup(s.placeRepo, s.univRepo)
		if err := ValidatePlacement(ctx, lookup, projectionFor(&place.ID, &merged)); err != nil {
			return err
		}

		if err := s.placeRepo.Update(ctx, &merged); err != nil {
			return err
		}
		if _, err := s.mediaRepo.ReassignToPlace(ctx, update.ID, place.ID); err != nil {
			return err
		}
		reviewed, err := s.updateRepo.MarkReviewed(ctx, update.ID, models.ApprovalApproved, actor.ID)
		if err != nil {
			return err
		}
		if !reviewed {
			return apperrors.ErrUpdateNotPending
		}
		approved = &merged
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("place update approved",
		zap.String("update_id", id.String()),
		zap.String("place_id", approved.ID.String()),
		zap.String("reviewer_id", actor.ID.String()))
	return approved, nil
}

func (s *updateReviewService) Reject(ctx context.Context, id uuid.UUID, actor models.Actor) error {
	err := s.db.InTx(ctx, func(ctx context.Context) error {
		update, err := s.updateRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if update == nil {
			return apperrors.ErrNotFound
		}
		if update.ApprovalStatus != models.ApprovalPending {
			return apperrors.ErrUpdateNotPending
		}
		if !actor.Covers(update.UniversityID) {
			return apperrors.ErrPermissionDenied
		}

		reviewed, err := s.updateRepo.MarkReviewed(ctx, update.ID, models.ApprovalRejected, actor.ID)
		if err != nil {
			return err
		}
		if !reviewed {
			return apperrors.ErrUpdateNotPending
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("place update rejected",
		zap.String("update_id", id.String()),
		zap.String("reviewer_id", actor.ID.String()))
	return nil
}
