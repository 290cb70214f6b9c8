package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campusconnect/places-engine/pkg/database"
	"github.com/campusconnect/places-engine/pkg/models"
)

// PlaceUpdateRepository manages staged edit proposals.
type PlaceUpdateRepository interface {
	// Create inserts a proposal and fills in its generated id and timestamps.
	Create(ctx context.Context, update *models.PlaceUpdate) error

	// GetByID returns a proposal by id, or nil.
	GetByID(ctx context.Context, id uuid.UUID) (*models.PlaceUpdate, error)

	// ListPending returns pending proposals, oldest first, optionally scoped
	// to one university.
	ListPending(ctx context.Context, universityID *uuid.UUID) ([]*models.PlaceUpdate, error)

	// MarkReviewed transitions a pending proposal to the given terminal
	// status and records the reviewer. It only touches rows still pending,
	// so a second review of the same proposal affects zero rows.
	MarkReviewed(ctx context.Context, id uuid.UUID, status string, reviewedBy uuid.UUID) (bool, error)
}

type placeUpdateRepository struct {
	db *database.DB
}

// NewPlaceUpdateRepository creates a new PlaceUpdateRepository.
func NewPlaceUpdateRepository(db *database.DB) PlaceUpdateRepository {
	return &placeUpdateRepository{db: db}
}

var _ PlaceUpdateRepository = (*placeUpdateRepository)(nil)

const placeUpdateColumns = `id, place_id, university_id, academic_unit_id, parent_id, name,
	description, history, establishment_year, place_type_id, relative_location, latitude,
	longitude, maps_link, updated_by, approval_status, university_root, academic_unit_root,
	reviewed_by, reviewed_at, created_at, updated_at`

func (r *placeUpdateRepository) Create(ctx context.Context, update *models.PlaceUpdate) error {
	query := `
		INSERT INTO place_updates (
			place_id, university_id, academic_unit_id, parent_id, name, description,
			history, establishment_year, place_type_id, relative_location, latitude,
			longitude, maps_link, updated_by, approval_status, university_root,
			academic_unit_root
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at`

	err := r.db.Querier(ctx).QueryRow(ctx, query,
		update.PlaceID, update.UniversityID, update.AcademicUnitID, update.ParentID,
		update.Name, update.Description, update.History, update.EstablishmentYear,
		update.PlaceTypeID, update.RelativeLocation, update.Latitude, update.Longitude,
		update.MapsLink, update.UpdatedBy, update.ApprovalStatus, update.UniversityRoot,
		update.AcademicUnitRoot,
	).Scan(&update.ID, &update.CreatedAt, &update.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create place update: %w", err)
	}
	return nil
}

func (r *placeUpdateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PlaceUpdate, error) {
	query := `SELECT ` + placeUpdateColumns + ` FROM place_updates WHERE id = $1`
	return scanPlaceUpdate(r.db.Querier(ctx).QueryRow(ctx, query, id))
}

func (r *placeUpdateRepository) ListPending(ctx context.Context, universityID *uuid.UUID) ([]*models.PlaceUpdate, error) {
	query := `SELECT ` + placeUpdateColumns + ` FROM place_updates
		WHERE approval_status = $1
			AND ($2::uuid IS NULL OR university_id = $2)
		ORDER BY created_at`

	rows, err := r.db.Querier(ctx).Query(ctx, query, models.ApprovalPending, universityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending place updates: %w", err)
	}
	defer rows.Close()

	var updates []*models.PlaceUpdate
	for rows.Next() {
		update, err := scanPlaceUpdate(rows)
		if err != nil {
			return nil, err
		}
		updates = append(updates, update)
	}
	return updates, rows.Err()
}

func (r *placeUpdateRepository) MarkReviewed(ctx context.Context, id uuid.UUID, status string, reviewedBy uuid.UUID) (bool, error) {
	query := `
		UPDATE place_updates
		SET approval_status = $2, reviewed_by = $3, reviewed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND approval_status = $4`

	result, err := r.db.Querier(ctx).Exec(ctx, query, id, status, reviewedBy, models.ApprovalPending)
	if err != nil {
		return false, fmt.Errorf("failed to mark place update reviewed: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func scanPlaceUpdate(row pgx.Row) (*models.PlaceUpdate, error) {
	var u models.PlaceUpdate
	err := row.Scan(
		&u.ID, &u.PlaceID, &u.UniversityID, &u.AcademicUnitID, &u.ParentID, &u.Name,
		&u.Description, &u.History, &u.EstablishmentYear, &u.PlaceTypeID,
		&u.RelativeLocation, &u.Latitude, &u.Longitude, &u.MapsLink, &u.UpdatedBy,
		&u.ApprovalStatus, &u.UniversityRoot, &u.AcademicUnitRoot,
		&u.ReviewedBy, &u.ReviewedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan place update: %w", err)
	}
	return &u, nil
}
