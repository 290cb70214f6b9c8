package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campusconnect/places-engine/pkg/database"
	"github.com/campusconnect/places-engine/pkg/models"
)

// UniversityRepository provides read access to the university reference data.
// Universities and academic units are seeded externally; the places subsystem
// only resolves them.
type UniversityRepository interface {
	// GetByID returns a university by id, or nil if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*models.University, error)

	// GetByName returns a university by exact name, or nil.
	GetByName(ctx context.Context, name string) (*models.University, error)

	// GetAcademicUnit returns an academic unit by id, or nil.
	GetAcademicUnit(ctx context.Context, id uuid.UUID) (*models.AcademicUnit, error)

	// GetAcademicUnitByName returns an academic unit by exact name, or nil.
	GetAcademicUnitByName(ctx context.Context, name string) (*models.AcademicUnit, error)
}

type universityRepository struct {
	db *database.DB
}

// NewUniversityRepository creates a new UniversityRepository.
func NewUniversityRepository(db *database.DB) UniversityRepository {
	return &universityRepository{db: db}
}

var _ UniversityRepository = (*universityRepository)(nil)

const universityColumns = `id, name, short_name, created_at, updated_at`

func (r *universityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.University, error) {
	query := `SELECT ` + universityColumns + ` FROM universities WHERE id = $1`
	return scanUniversity(r.db.Querier(ctx).QueryRow(ctx, query, id))
}

func (r *universityRepository) GetByName(ctx context.Context, name string) (*models.University, error) {
	query := `SELECT ` + universityColumns + ` FROM universities WHERE name = $1`
	return scanUniversity(r.db.Querier(ctx).QueryRow(ctx, query, name))
}

const academicUnitColumns = `id, university_id, name, short_name, unit_type, created_at, updated_at`

func (r *universityRepository) GetAcademicUnit(ctx context.Context, id uuid.UUID) (*models.AcademicUnit, error) {
	query := `SELECT ` + academicUnitColumns + ` FROM academic_units WHERE id = $1`
	return scanAcademicUnit(r.db.Querier(ctx).QueryRow(ctx, query, id))
}

func (r *universityRepository) GetAcademicUnitByName(ctx context.Context, name string) (*models.AcademicUnit, error) {
	query := `SELECT ` + academicUnitColumns + ` FROM academic_units WHERE name = $1`
	return scanAcademicUnit(r.db.Querier(ctx).QueryRow(ctx, query, name))
}

func scanUniversity(row pgx.Row) (*models.University, error) {
	var u models.University
	err := row.Scan(&u.ID, &u.Name, &u.ShortName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan university: %w", err)
	}
	return &u, nil
}

func scanAcademicUnit(row pgx.Row) (*models.AcademicUnit, error) {
	var au models.AcademicUnit
	err := row.Scan(&au.ID, &au.UniversityID, &au.Name, &au.ShortName, &au.UnitType, &au.CreatedAt, &au.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan academic unit: %w", err)
	}
	return &au, nil
}
