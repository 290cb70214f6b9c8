package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campusconnect/places-engine/pkg/apperrors"
	"github.com/campusconnect/places-engine/pkg/models"
	"github.com/campusconnect/places-engine/pkg/repositories"
)

// PlaceProjection is the shape the placement rules run against: either a new
// place or the projected result of merging a staged update onto a live place.
// ID is nil for new places; when set, root-exclusivity scans skip that row so
// a place updating itself does not collide with itself.
type PlaceProjection struct {
	ID                *uuid.UUID
	UniversityID      uuid.UUID
	AcademicUnitID    *uuid.UUID
	ParentID          *uuid.UUID
	EstablishmentYear *int
	UniversityRoot    bool
	AcademicUnitRoot  bool
}

// TreeLookup is the read surface ValidatePlacement needs. Callers on the write
// path supply a transaction-bound implementation so the root lookups hold row
// locks until commit.
type TreeLookup interface {
	GetPlace(ctx context.Context, id uuid.UUID) (*models.Place, error)
	GetAcademicUnit(ctx context.Context, id uuid.UUID) (*models.AcademicUnit, error)
	FindUniversityRoot(ctx context.Context, universityID uuid.UUID, exclude *uuid.UUID) (*models.Place, error)
	FindAcademicUnitRoot(ctx context.Context, academicUnitID uuid.UUID, exclude *uuid.UUID) (*models.Place, error)
}

// ValidatePlacement checks every tree invariant for the candidate and collects
// all violations into one field-keyed validation error. It has no side effects;
// the create path and the approval path both run the same rules through it.
//
// Ordering matters in one spot: the orphan rule (a non-root, parentless place
// is rejected once its university has a root) deliberately does NOT exclude the
// candidate itself, so clearing the root flag on the only root without
// supplying a parent fails here.
func ValidatePlacement(ctx context.Context, lookup TreeLookup, candidate PlaceProjection) error {
	verr := apperrors.NewValidationError()

	if candidate.EstablishmentYear != nil && *candidate.EstablishmentYear > time.Now().Year() {
		verr.Add("establishment_year", "Establishment year cannot be in the future.")
	}

	var academicUnit *models.AcademicUnit
	if candidate.AcademicUnitID != nil {
		var err error
		academicUnit, err = lookup.GetAcademicUnit(ctx, *candidate.AcademicUnitID)
		if err != nil {
			return fmt.Errorf("failed to load academic unit: %w", err)
		}
		if academicUnit == nil {
			verr.Add("academic_unit", "Academic unit does not exist.")
		} else if academicUnit.UniversityID != candidate.UniversityID {
			verr.Add("academic_unit", "Academic unit must belong to the selected university.")
		}
	}

	var parent *models.Place
	if candidate.ParentID != nil {
		if candidate.ID != nil && *candidate.ParentID == *candidate.ID {
			verr.Add("parent", "A place cannot be its own parent.")
		} else {
			var err error
			parent, err = lookup.GetPlace(ctx, *candidate.ParentID)
			if err != nil {
				return fmt.Errorf("failed to load parent place: %w", err)
			}
			if parent == nil {
				verr.Add("parent", "Parent place does not exist.")
			} else if parent.UniversityID != candidate.UniversityID {
				verr.Add("parent", "Parent place must belong to the same university.")
			}
		}
	}

	if candidate.UniversityRoot {
		if candidate.ParentID != nil {
			verr.Add("university_root", "A university root place cannot have a parent.")
		}
		if candidate.AcademicUnitID != nil {
			verr.Add("university_root", "A university root place cannot have an academic unit.")
		}
		existing, err := lookup.FindUniversityRoot(ctx, candidate.UniversityID, candidate.ID)
		if err != nil {
			return fmt.Errorf("failed to look up university root: %w", err)
		}
		if existing != nil {
			verr.Addf("university_root",
				"A university root is already set. Existing root: ID=%s, Name=%s. Cannot register a new root place.",
				existing.ID, existing.Name)
		}
	}

	if candidate.AcademicUnitRoot {
		if candidate.AcademicUnitID == nil {
			verr.Add("academic_unit_root", "An academic unit root place must have an academic unit.")
		} else {
			if parent != nil && parent.UniversityID != candidate.UniversityID {
				verr.Add("academic_unit_root", "An academic unit root place must have a parent in the same university.")
			}
			existing, err := lookup.FindAcademicUnitRoot(ctx, *candidate.AcademicUnitID, candidate.ID)
			if err != nil {
				return fmt.Errorf("failed to look up academic unit root: %w", err)
			}
			if existing != nil {
				verr.Addf("academic_unit_root",
					"An academic unit root is already set. Existing root: ID=%s, Name=%s. Cannot register a new root place.",
					existing.ID, existing.Name)
			}
		}
	}

	// No exclusion here: the candidate itself may be the root it is trying to
	// stop being, in which case the write must still fail.
	if !candidate.UniversityRoot && candidate.ParentID == nil {
		existing, err := lookup.FindUniversityRoot(ctx, candidate.UniversityID, nil)
		if err != nil {
			return fmt.Errorf("failed to look up university root: %w", err)
		}
		if existing != nil {
			verr.Addf("parent",
				"All non-root places must have a parent. University root exists: ID=%s, Name=%s.",
				existing.ID, existing.Name)
		}
	}

	return verr.ErrOrNil()
}

// storeLookup is the repository-backed TreeLookup used on write paths. Inside
// a transaction the root finders lock the rows they return.
type storeLookup struct {
	places       repositories.PlaceRepository
	universities repositories.UniversityRepository
}

// NewStoreLookup creates a TreeLookup backed by the live repositories.
func NewStoreLookup(places repositories.PlaceRepository, universities repositories.UniversityRepository) TreeLookup {
	return &storeLookup{places: places, universities: universities}
}

var _ TreeLookup = (*storeLookup)(nil)

func (l *storeLookup) GetPlace(ctx context.Context, id uuid.UUID) (*models.Place, error) {
	return l.places.GetByID(ctx, id)
}

func (l *storeLookup) GetAcademicUnit(ctx context.Context, id uuid.UUID) (*models.AcademicUnit, error) {
	return l.universities.GetAcademicUnit(ctx, id)
}

func (l *storeLookup) FindUniversityRoot(ctx context.Context, universityID uuid.UUID, exclude *uuid.UUID) (*models.Place, error) {
	return l.places.FindUniversityRoot(ctx, universityID, exclude)
}

func (l *storeLookup) FindAcademicUnitRoot(ctx context.Context, academicUnitID uuid.UUID, exclude *uuid.UUID) (*models.Place, error) {
	return l.places.FindAcademicUnitRoot(ctx, academicUnitID, exclude)
}

// projectionFor builds the projection for an existing or merged place shape.
func projectionFor(id *uuid.UUID, p *models.Place) PlaceProjection {
	return PlaceProjection{
		ID:                id,
		UniversityID:      p.UniversityID,
		AcademicUnitID:    p.AcademicUnitID,
		ParentID:          p.ParentID,
		EstablishmentYear: p.EstablishmentYear,
		UniversityRoot:    p.UniversityRoot,
		AcademicUnitRoot:  p.AcademicUnitRoot,
	}
}
