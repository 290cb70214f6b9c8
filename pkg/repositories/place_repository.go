package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campusconnect/places-engine/pkg/apperrors"
	"github.com/campusconnect/places-engine/pkg/database"
	"github.com/campusconnect/places-engine/pkg/models"
)

// PlaceFilter narrows Search results. Zero values mean "no constraint"; Query
// matches place names and the owning university / academic unit names.
type PlaceFilter struct {
	Query            string
	Name             string
	RelativeLocation string
	UniversityID     *uuid.UUID
	AcademicUnitID   *uuid.UUID
	PlaceTypeID      *uuid.UUID
}

// PlaceRepository manages live place rows. Root-finder methods take row locks
// and are meant to be called inside the write transaction, so that two
// concurrent writes cannot both conclude a root slot is free.
type PlaceRepository interface {
	// Create inserts a place and fills in its generated id and timestamps.
	Create(ctx context.Context, place *models.Place) error

	// GetByID returns a place by id regardless of approval status, or nil.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Place, error)

	// Update persists all mutable columns of an existing place.
	Update(ctx context.Context, place *models.Place) error

	// Delete removes a single place.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteMany removes the given places and returns how many rows went away.
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)

	// HasChildren reports whether any place references id as its parent.
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)

	// ListChildren returns the direct children of a place, any status.
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*models.Place, error)

	// ListApproved returns all approved places ordered by name.
	ListApproved(ctx context.Context) ([]*models.Place, error)

	// ListRoots returns approved places with no parent.
	ListRoots(ctx context.Context) ([]*models.Place, error)

	// Search returns approved places matching the filter.
	Search(ctx context.Context, filter PlaceFilter) ([]*models.Place, error)

	// FindUniversityRoot returns the place currently holding the university
	// root slot, skipping exclude if non-nil, or nil if the slot is free.
	FindUniversityRoot(ctx context.Context, universityID uuid.UUID, exclude *uuid.UUID) (*models.Place, error)

	// FindAcademicUnitRoot is FindUniversityRoot for an academic unit's slot.
	FindAcademicUnitRoot(ctx context.Context, academicUnitID uuid.UUID, exclude *uuid.UUID) (*models.Place, error)
}

type placeRepository struct {
	db *database.DB
}

// NewPlaceRepository creates a new PlaceRepository.
func NewPlaceRepository(db *database.DB) PlaceRepository {
	return &placeRepository{db: db}
}

var _ PlaceRepository = (*placeRepository)(nil)

const placeColumns = `id, university_id, academic_unit_id, parent_id, name, description, history,
	establishment_year, place_type_id, relative_location, latitude, longitude, maps_link,
	created_by, approval_status, university_root, academic_unit_root, created_at, updated_at`

func (r *placeRepository) Create(ctx context.Context, place *models.Place) error {
	query := `
		INSERT INTO places (
			university_id, academic_unit_id, parent_id, name, description, history,
			establishment_year, place_type_id, relative_location, latitude, longitude,
			maps_link, created_by, approval_status, university_root, academic_unit_root
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`

	err := r.db.Querier(ctx).QueryRow(ctx, query,
		place.UniversityID, place.AcademicUnitID, place.ParentID, place.Name,
		place.Description, place.History, place.EstablishmentYear, place.PlaceTypeID,
		place.RelativeLocation, place.Latitude, place.Longitude, place.MapsLink,
		place.CreatedBy, place.ApprovalStatus, place.UniversityRoot, place.AcademicUnitRoot,
	).Scan(&place.ID, &place.CreatedAt, &place.UpdatedAt)
	if err != nil {
		if verr := rootConflictError(err); verr != nil {
			return verr
		}
		return fmt.Errorf("failed to create place: %w", err)
	}
	return nil
}

func (r *placeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE id = $1`
	return scanPlace(r.db.Querier(ctx).QueryRow(ctx, query, id))
}

func (r *placeRepository) Update(ctx context.Context, place *models.Place) error {
	query := `
		UPDATE places SET
			academic_unit_id = $2, parent_id = $3, name = $4, description = $5,
			history = $6, establishment_year = $7, place_type_id = $8,
			relative_location = $9, latitude = $10, longitude = $11, maps_link = $12,
			approval_status = $13, university_root = $14, academic_unit_root = $15,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.Querier(ctx).QueryRow(ctx, query,
		place.ID, place.AcademicUnitID, place.ParentID, place.Name, place.Description,
		place.History, place.EstablishmentYear, place.PlaceTypeID, place.RelativeLocation,
		place.Latitude, place.Longitude, place.MapsLink, place.ApprovalStatus,
		place.UniversityRoot, place.AcademicUnitRoot,
	).Scan(&place.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fmt.Errorf("place %s not found", place.ID)
		}
		if verr := rootConflictError(err); verr != nil {
			return verr
		}
		return fmt.Errorf("failed to update place: %w", err)
	}
	return nil
}

func (r *placeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM places WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("place %s not found", id)
	}
	return nil
}

func (r *placeRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM places WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete places: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *placeRepository) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM places WHERE parent_id = $1)`
	if err := r.db.Querier(ctx).QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check place children: %w", err)
	}
	return exists, nil
}

func (r *placeRepository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*models.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE parent_id = $1 ORDER BY name`
	return r.queryPlaces(ctx, query, parentID)
}

func (r *placeRepository) ListApproved(ctx context.Context) ([]*models.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE approval_status = $1 ORDER BY name`
	return r.queryPlaces(ctx, query, models.ApprovalApproved)
}

func (r *placeRepository) ListRoots(ctx context.Context) ([]*models.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places
		WHERE approval_status = $1 AND parent_id IS NULL
		ORDER BY name`
	return r.queryPlaces(ctx, query, models.ApprovalApproved)
}

func (r *placeRepository) Search(ctx context.Context, filter PlaceFilter) ([]*models.Place, error) {
	query := `
		SELECT ` + qualifyPlaceColumns("p") + `
		FROM places p
		JOIN universities u ON u.id = p.university_id
		LEFT JOIN academic_units au ON au.id = p.academic_unit_id
		WHERE p.approval_status = 'approved'
			AND ($1 = '' OR p.name ILIKE '%' || $1 || '%'
				OR u.name ILIKE '%' || $1 || '%' OR u.short_name ILIKE '%' || $1 || '%'
				OR au.name ILIKE '%' || $1 || '%' OR au.short_name ILIKE '%' || $1 || '%')
			AND ($2 = '' OR p.name ILIKE '%' || $2 || '%')
			AND ($3 = '' OR p.relative_location ILIKE '%' || $3 || '%')
			AND ($4::uuid IS NULL OR p.university_id = $4)
			AND ($5::uuid IS NULL OR p.academic_unit_id = $5)
			AND ($6::uuid IS NULL OR p.place_type_id = $6)
		ORDER BY p.name`

	return r.queryPlaces(ctx, query,
		filter.Query, filter.Name, filter.RelativeLocation,
		filter.UniversityID, filter.AcademicUnitID, filter.PlaceTypeID)
}

func (r *placeRepository) FindUniversityRoot(ctx context.Context, universityID uuid.UUID, exclude *uuid.UUID) (*models.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places
		WHERE university_id = $1 AND university_root
			AND ($2::uuid IS NULL OR id <> $2)
		LIMIT 1
		FOR UPDATE`
	return scanPlace(r.db.Querier(ctx).QueryRow(ctx, query, universityID, exclude))
}

func (r *placeRepository) FindAcademicUnitRoot(ctx context.Context, academicUnitID uuid.UUID, exclude *uuid.UUID) (*models.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places
		WHERE academic_unit_id = $1 AND academic_unit_root
			AND ($2::uuid IS NULL OR id <> $2)
		LIMIT 1
		FOR UPDATE`
	return scanPlace(r.db.Querier(ctx).QueryRow(ctx, query, academicUnitID, exclude))
}

func (r *placeRepository) queryPlaces(ctx context.Context, query string, args ...any) ([]*models.Place, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer rows.Close()

	var places []*models.Place
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, place)
	}
	return places, rows.Err()
}

func scanPlace(row pgx.Row) (*models.Place, error) {
	var p models.Place
	err := row.Scan(
		&p.ID, &p.UniversityID, &p.AcademicUnitID, &p.ParentID, &p.Name,
		&p.Description, &p.History, &p.EstablishmentYear, &p.PlaceTypeID,
		&p.RelativeLocation, &p.Latitude, &p.Longitude, &p.MapsLink,
		&p.CreatedBy, &p.ApprovalStatus, &p.UniversityRoot, &p.AcademicUnitRoot,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan place: %w", err)
	}
	return &p, nil
}

// rootConflictError translates a unique violation on one of the partial root
// indexes into the field-keyed validation error the write paths already
// produce for a taken root slot. The root-finder lock has no row to grab
// before a first root exists, so two concurrent first-root writes can both
// pass validation and race to the index.
func rootConflictError(err error) *apperrors.ValidationError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}

	verr := apperrors.NewValidationError()
	switch pgErr.ConstraintName {
	case "uniq_places_university_root":
		verr.Add("university_root", "A university root is already set. Cannot register a new root place.")
	case "uniq_places_academic_unit_root":
		verr.Add("academic_unit_root", "An academic unit root is already set. Cannot register a new root place.")
	default:
		return nil
	}
	return verr
}

// qualifyPlaceColumns prefixes each place column with a table alias for use in
// joined queries.
func qualifyPlaceColumns(alias string) string {
	return alias + `.id, ` + alias + `.university_id, ` + alias + `.academic_unit_id, ` +
		alias + `.parent_id, ` + alias + `.name, ` + alias + `.description, ` +
		alias + `.history, ` + alias + `.establishment_year, ` + alias + `.place_type_id, ` +
		alias + `.relative_location, ` + alias + `.latitude, ` + alias + `.longitude, ` +
		alias + `.maps_link, ` + alias + `.created_by, ` + alias + `.approval_status, ` +
		alias + `.university_root, ` + alias + `.academic_unit_root, ` +
		alias + `.created_at, ` + alias + `.updated_at`
}
