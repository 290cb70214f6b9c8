package models

import (
	"time"

	"github.com/google/uuid"
)

// PlaceUpdate is a staged edit proposal targeting exactly one live place.
// Staged pointer fields follow blank-means-unchanged: a nil (or empty string)
// value leaves the live field alone at merge time. The two root flags are the
// exception; they are plain booleans with no absent state and are always
// applied on approval.
type PlaceUpdate struct {
	ID                uuid.UUID  `json:"id"`
	PlaceID           uuid.UUID  `json:"place_id"`
	UniversityID      uuid.UUID  `json:"university_id"`
	AcademicUnitID    *uuid.UUID `json:"academic_unit_id,omitempty"`
	ParentID          *uuid.UUID `json:"parent_id,omitempty"`
	Name              *string    `json:"name,omitempty"`
	Description       *string    `json:"description,omitempty"`
	History           *string    `json:"history,omitempty"`
	EstablishmentYear *int       `json:"establishment_year,omitempty"`
	PlaceTypeID       *uuid.UUID `json:"place_type_id,omitempty"`
	RelativeLocation  *string    `json:"relative_location,omitempty"`
	Latitude          *float64   `json:"latitude,omitempty"`
	Longitude         *float64   `json:"longitude,omitempty"`
	MapsLink          *string    `json:"maps_link,omitempty"`
	UpdatedBy         *uuid.UUID `json:"updated_by,omitempty"`
	ApprovalStatus    string     `json:"approval_status"`
	UniversityRoot    bool       `json:"university_root"`
	AcademicUnitRoot  bool       `json:"academic_unit_root"`
	ReviewedBy        *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// MergeInto projects the staged values onto a copy of the live place and
// returns the post-merge shape. The live place is not modified.
func (u *PlaceUpdate) MergeInto(live *Place) Place {
	merged := *live

	if u.AcademicUnitID != nil {
		merged.AcademicUnitID = u.AcademicUnitID
	}
	if u.ParentID != nil {
		merged.ParentID = u.ParentID
	}
	if u.Name != nil && *u.Name != "" {
		merged.Name = *u.Name
	}
	if u.Description != nil && *u.Description != "" {
		merged.Description = *u.Description
	}
	if u.History != nil && *u.History != "" {
		merged.History = *u.History
	}
	if u.EstablishmentYear != nil {
		merged.EstablishmentYear = u.EstablishmentYear
	}
	if u.PlaceTypeID != nil {
		merged.PlaceTypeID = u.PlaceTypeID
	}
	if u.RelativeLocation != nil && *u.RelativeLocation != "" {
		merged.RelativeLocation = *u.RelativeLocation
	}
	if u.Latitude != nil {
		merged.Latitude = u.Latitude
	}
	if u.Longitude != nil {
		merged.Longitude = u.Longitude
	}
	if u.MapsLink != nil && *u.MapsLink != "" {
		merged.MapsLink = *u.MapsLink
	}

	merged.UniversityRoot = u.UniversityRoot
	merged.AcademicUnitRoot = u.AcademicUnitRoot

	return merged
}
