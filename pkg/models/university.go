package models

import (
	"time"

	"github.com/google/uuid"
)

// Academic unit type constants.
const (
	UnitTypeDepartment = "department"
	UnitTypeInstitute  = "institute"
)

// University is the top-level scope for a place hierarchy. Each university
// owns at most one root place.
type University struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ShortName string    `json:"short_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AcademicUnit is a department or institute within a university. Each unit
// owns at most one academic-unit-root place.
type AcademicUnit struct {
	ID           uuid.UUID `json:"id"`
	UniversityID uuid.UUID `json:"university_id"`
	Name         string    `json:"name"`
	ShortName    string    `json:"short_name,omitempty"`
	UnitType     string    `json:"unit_type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
