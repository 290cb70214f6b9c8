package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestAdminScopeCovers(t *testing.T) {
	home := uuid.New()
	other := uuid.New()

	tests := []struct {
		name       string
		scope      AdminScope
		university uuid.UUID
		want       bool
	}{
		{"app scope covers any university", AdminScopeApp, other, true},
		{"university scope covers home university", AdminScopeUniversity, home, true},
		{"university scope does not cover other universities", AdminScopeUniversity, other, false},
		{"no scope covers nothing", AdminScopeNone, home, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := Actor{ID: uuid.New(), UniversityID: home, AdminScope: tt.scope}
			if got := actor.Covers(tt.university); got != tt.want {
				t.Errorf("Covers() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseAdminScope(t *testing.T) {
	tests := []struct {
		raw  string
		want AdminScope
	}{
		{"app", AdminScopeApp},
		{"university", AdminScopeUniversity},
		{"none", AdminScopeNone},
		{"", AdminScopeNone},
		{"superuser", AdminScopeNone},
	}
	for _, tt := range tests {
		if got := ParseAdminScope(tt.raw); got != tt.want {
			t.Errorf("ParseAdminScope(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCanManagePlace(t *testing.T) {
	university := uuid.New()
	creator := uuid.New()
	place := &Place{ID: uuid.New(), UniversityID: university, CreatedBy: &creator}

	creatorActor := Actor{ID: creator, AdminScope: AdminScopeNone}
	if !creatorActor.CanManagePlace(place) {
		t.Error("creator should manage own place")
	}

	stranger := Actor{ID: uuid.New(), AdminScope: AdminScopeNone}
	if stranger.CanManagePlace(place) {
		t.Error("unrelated user should not manage place")
	}

	uniAdmin := Actor{ID: uuid.New(), UniversityID: university, AdminScope: AdminScopeUniversity}
	if !uniAdmin.CanManagePlace(place) {
		t.Error("university admin should manage place in own university")
	}

	otherUniAdmin := Actor{ID: uuid.New(), UniversityID: uuid.New(), AdminScope: AdminScopeUniversity}
	if otherUniAdmin.CanManagePlace(place) {
		t.Error("university admin should not manage place in another university")
	}

	orphaned := &Place{ID: uuid.New(), UniversityID: university, CreatedBy: nil}
	if stranger.CanManagePlace(orphaned) {
		t.Error("place without creator should only be manageable by admins")
	}
}
