package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campusconnect/places-engine/pkg/database"
	"github.com/campusconnect/places-engine/pkg/models"
)

// PlaceMediaRepository manages media attachment rows. A row points at either
// a live place or a pending update; approval moves update media over to the
// place in one statement.
type PlaceMediaRepository interface {
	// Create inserts a media row and fills in its generated id and timestamp.
	Create(ctx context.Context, media *models.PlaceMedia) error

	// ListByPlace returns media attached to a live place, oldest first.
	ListByPlace(ctx context.Context, placeID uuid.UUID) ([]*models.PlaceMedia, error)

	// ListByUpdate returns media attached to a staged update, oldest first.
	ListByUpdate(ctx context.Context, updateID uuid.UUID) ([]*models.PlaceMedia, error)

	// ReassignToPlace moves all media of a staged update onto the live place
	// and returns how many rows moved.
	ReassignToPlace(ctx context.Context, updateID, placeID uuid.UUID) (int64, error)
}

type placeMediaRepository struct {
	db *database.DB
}

// NewPlaceMediaRepository creates a new PlaceMediaRepository.
func NewPlaceMediaRepository(db *database.DB) PlaceMediaRepository {
	return &placeMediaRepository{db: db}
}

var _ PlaceMediaRepository = (*placeMediaRepository)(nil)

const placeMediaColumns = `id, place_id, place_update_id, storage_key, content_type, uploaded_by, uploaded_at`

func (r *placeMediaRepository) Create(ctx context.Context, media *models.PlaceMedia) error {
	query := `
		INSERT INTO place_media (place_id, place_update_id, storage_key, content_type, uploaded_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, uploaded_at`

	err := r.db.Querier(ctx).QueryRow(ctx, query,
		media.PlaceID, media.PlaceUpdateID, media.StorageKey, media.ContentType, media.UploadedBy,
	).Scan(&media.ID, &media.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to create place media: %w", err)
	}
	return nil
}

func (r *placeMediaRepository) ListByPlace(ctx context.Context, placeID uuid.UUID) ([]*models.PlaceMedia, error) {
	query := `SELECT ` + placeMediaColumns + ` FROM place_media WHERE place_id = $1 ORDER BY uploaded_at`
	return r.queryMedia(ctx, query, placeID)
}

func (r *placeMediaRepository) ListByUpdate(ctx context.Context, updateID uuid.UUID) ([]*models.PlaceMedia, error) {
	query := `SELECT ` + placeMediaColumns + ` FROM place_media WHERE place_update_id = $1 ORDER BY uploaded_at`
	return r.queryMedia(ctx, query, updateID)
}

func (r *placeMediaRepository) ReassignToPlace(ctx context.Context, updateID, placeID uuid.UUID) (int64, error) {
	query := `
		UPDATE place_media
		SET place_id = $2, place_update_id = NULL
		WHERE place_update_id = $1`

	result, err := r.db.Querier(ctx).Exec(ctx, query, updateID, placeID)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign place media: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *placeMediaRepository) queryMedia(ctx context.Context, query string, args ...any) ([]*models.PlaceMedia, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query place media: %w", err)
	}
	defer rows.Close()

	var media []*models.PlaceMedia
	for rows.Next() {
		m, err := scanPlaceMedia(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

func scanPlaceMedia(row pgx.Row) (*models.PlaceMedia, error) {
	var m models.PlaceMedia
	err := row.Scan(&m.ID, &m.PlaceID, &m.PlaceUpdateID, &m.StorageKey, &m.ContentType, &m.UploadedBy, &m.UploadedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan place media: %w", err)
	}
	return &m, nil
}
