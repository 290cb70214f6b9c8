package models

import "github.com/google/uuid"

// AdminScope is the authority level of an acting principal.
type AdminScope string

const (
	// AdminScopeNone is an ordinary authenticated user.
	AdminScopeNone AdminScope = "none"
	// AdminScopeUniversity grants administration over the actor's home
	// university only.
	AdminScopeUniversity AdminScope = "university"
	// AdminScopeApp grants administration over every university.
	AdminScopeApp AdminScope = "app"
)

// IsAdmin reports whether the scope carries any administrative authority.
func (s AdminScope) IsAdmin() bool {
	return s == AdminScopeUniversity || s == AdminScopeApp
}

// ParseAdminScope normalizes a raw scope string, defaulting to none.
func ParseAdminScope(raw string) AdminScope {
	switch AdminScope(raw) {
	case AdminScopeUniversity:
		return AdminScopeUniversity
	case AdminScopeApp:
		return AdminScopeApp
	default:
		return AdminScopeNone
	}
}

// Actor is the acting principal for a request, supplied by the identity
// provider. UniversityID is the actor's home university and is only
// meaningful for university-scope admins and ownership checks.
type Actor struct {
	ID           uuid.UUID
	UniversityID uuid.UUID
	AdminScope   AdminScope
}

// Covers reports whether the actor's admin scope extends to the given
// university. App scope covers everything; university scope covers only the
// actor's home university.
func (a Actor) Covers(universityID uuid.UUID) bool {
	switch a.AdminScope {
	case AdminScopeApp:
		return true
	case AdminScopeUniversity:
		return a.UniversityID == universityID
	default:
		return false
	}
}

// CanManagePlace reports whether the actor may delete or administer the
// place: a covering admin, or its creator.
func (a Actor) CanManagePlace(p *Place) bool {
	if a.Covers(p.UniversityID) {
		return true
	}
	return p.CreatedBy != nil && *p.CreatedBy == a.ID
}
