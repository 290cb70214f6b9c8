package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campusconnect/places-engine/pkg/database"
	"github.com/campusconnect/places-engine/pkg/models"
)

// PlaceTypeRepository manages the lazily-populated place type catalog.
type PlaceTypeRepository interface {
	// GetOrCreate resolves a place type by name, creating it on first
	// reference. The name is normalized (trimmed, lower-cased) before lookup.
	GetOrCreate(ctx context.Context, name string) (*models.PlaceType, error)

	// GetByName returns a place type by normalized name, or nil.
	GetByName(ctx context.Context, name string) (*models.PlaceType, error)

	// List returns all place types ordered by name.
	List(ctx context.Context) ([]*models.PlaceType, error)
}

type placeTypeRepository struct {
	db *database.DB
}

// NewPlaceTypeRepository creates a new PlaceTypeRepository.
func NewPlaceTypeRepository(db *database.DB) PlaceTypeRepository {
	return &placeTypeRepository{db: db}
}

var _ PlaceTypeRepository = (*placeTypeRepository)(nil)

const placeTypeColumns = `id, name, created_at, updated_at`

func (r *placeTypeRepository) GetOrCreate(ctx context.Context, name string) (*models.PlaceType, error) {
	normalized := models.NormalizePlaceTypeName(name)
	if normalized == "" {
		return nil, fmt.Errorf("place type name cannot be empty")
	}

	// DO UPDATE instead of DO NOTHING so the row is always returned, also on
	// conflict.
	query := `
		INSERT INTO place_types (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING ` + placeTypeColumns

	return scanPlaceType(r.db.Querier(ctx).QueryRow(ctx, query, normalized))
}

func (r *placeTypeRepository) GetByName(ctx context.Context, name string) (*models.PlaceType, error) {
	query := `SELECT ` + placeTypeColumns + ` FROM place_types WHERE name = $1`
	return scanPlaceType(r.db.Querier(ctx).QueryRow(ctx, query, models.NormalizePlaceTypeName(name)))
}

func (r *placeTypeRepository) List(ctx context.Context) ([]*models.PlaceType, error) {
	query := `SELECT ` + placeTypeColumns + ` FROM place_types ORDER BY name`

	rows, err := r.db.Querier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list place types: %w", err)
	}
	defer rows.Close()

	var types []*models.PlaceType
	for rows.Next() {
		pt, err := scanPlaceType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, pt)
	}
	return types, rows.Err()
}

func scanPlaceType(row pgx.Row) (*models.PlaceType, error) {
	var pt models.PlaceType
	err := row.Scan(&pt.ID, &pt.Name, &pt.CreatedAt, &pt.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan place type: %w", err)
	}
	return &pt, nil
}
