package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Approval status constants, shared by places and place updates.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// PlaceType is a normalized category tag ("building", "library"). Names are
// stored trimmed and lower-cased, unique by name, and created lazily on first
// reference.
type PlaceType struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizePlaceTypeName applies the canonical place-type normalization.
func NormalizePlaceTypeName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Place is a node in a per-university location hierarchy. Parent references
// are weak id links; the tree invariants over them are enforced by the
// placement validator inside the write transaction.
type Place struct {
	ID                uuid.UUID  `json:"id"`
	UniversityID      uuid.UUID  `json:"university_id"`
	AcademicUnitID    *uuid.UUID `json:"academic_unit_id,omitempty"`
	ParentID          *uuid.UUID `json:"parent_id,omitempty"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	History           string     `json:"history,omitempty"`
	EstablishmentYear *int       `json:"establishment_year,omitempty"`
	PlaceTypeID       *uuid.UUID `json:"place_type_id,omitempty"`
	RelativeLocation  string     `json:"relative_location,omitempty"`
	Latitude          *float64   `json:"latitude,omitempty"`
	Longitude         *float64   `json:"longitude,omitempty"`
	MapsLink          string     `json:"maps_link,omitempty"`
	CreatedBy         *uuid.UUID `json:"created_by,omitempty"`
	ApprovalStatus    string     `json:"approval_status"`
	UniversityRoot    bool       `json:"university_root"`
	AcademicUnitRoot  bool       `json:"academic_unit_root"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IsApproved reports whether the place is publicly visible.
func (p *Place) IsApproved() bool {
	return p.ApprovalStatus == ApprovalApproved
}

// PlaceMedia is bookkeeping for a file attached to either a live place or a
// pending place update (never both). Upload and serving are handled by the
// media pipeline; this service only reassigns rows on approval and cascades
// them on deletion.
type PlaceMedia struct {
	ID            uuid.UUID  `json:"id"`
	PlaceID       *uuid.UUID `json:"place_id,omitempty"`
	PlaceUpdateID *uuid.UUID `json:"place_update_id,omitempty"`
	StorageKey    string     `json:"storage_key"`
	ContentType   string     `json:"content_type,omitempty"`
	UploadedBy    *uuid.UUID `json:"uploaded_by,omitempty"`
	UploadedAt    time.Time  `json:"uploaded_at"`
}
