package services

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/campusconnect/places-engine/pkg/models"
	"github.com/campusconnect/places-engine/pkg/repositories"
)

// passthroughTx satisfies database.TxRunner without a database: fn runs
// directly, which is enough for exercising service logic over the in-memory
// repositories below.
type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memPlaceRepo struct {
	places map[uuid.UUID]*models.Place
}

func newMemPlaceRepo() *memPlaceRepo {
	return &memPlaceRepo{places: make(map[uuid.UUID]*models.Place)}
}

var _ repositories.PlaceRepository = (*memPlaceRepo)(nil)

func (r *memPlaceRepo) Create(_ context.Context, place *models.Place) error {
	place.ID = uuid.New()
	clone := *place
	r.places[place.ID] = &clone
	return nil
}

func (r *memPlaceRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Place, error) {
	place, ok := r.places[id]
	if !ok {
		return nil, nil
	}
	clone := *place
	return &clone, nil
}

func (r *memPlaceRepo) Update(_ context.Context, place *models.Place) error {
	clone := *place
	r.places[place.ID] = &clone
	return nil
}

func (r *memPlaceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.places, id)
	return nil
}

func (r *memPlaceRepo) DeleteMany(_ context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := r.places[id]; ok {
			delete(r.places, id)
			n++
		}
	}
	return n, nil
}

func (r *memPlaceRepo) HasChildren(_ context.Context, id uuid.UUID) (bool, error) {
	for _, p := range r.places {
		if p.ParentID != nil && *p.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *memPlaceRepo) ListChildren(_ context.Context, parentID uuid.UUID) ([]*models.Place, error) {
	var children []*models.Place
	for _, p := range r.places {
		if p.ParentID != nil && *p.ParentID == parentID {
			clone := *p
			children = append(children, &clone)
		}
	}
	sortPlaces(children)
	return children, nil
}

func (r *memPlaceRepo) ListApproved(_ context.Context) ([]*models.Place, error) {
	var approved []*models.Place
	for _, p := range r.places {
		if p.IsApproved() {
			clone := *p
			approved = append(approved, &clone)
		}
	}
	sortPlaces(approved)
	return approved, nil
}

func (r *memPlaceRepo) ListRoots(_ context.Context) ([]*models.Place, error) {
	var roots []*models.Place
	for _, p := range r.places {
		if p.IsApproved() && p.ParentID == nil {
			clone := *p
			roots = append(roots, &clone)
		}
	}
	sortPlaces(roots)
	return roots, nil
}

func (r *memPlaceRepo) Search(ctx context.Context, filter repositories.PlaceFilter) ([]*models.Place, error) {
	approved, _ := r.ListApproved(ctx)
	var matched []*models.Place
	for _, p := range approved {
		if filter.UniversityID != nil && p.UniversityID != *filter.UniversityID {
			continue
		}
		if filter.AcademicUnitID != nil && (p.AcademicUnitID == nil || *p.AcademicUnitID != *filter.AcademicUnitID) {
			continue
		}
		if filter.PlaceTypeID != nil && (p.PlaceTypeID == nil || *p.PlaceTypeID != *filter.PlaceTypeID) {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

func (r *memPlaceRepo) FindUniversityRoot(_ context.Context, universityID uuid.UUID, exclude *uuid.UUID) (*models.Place, error) {
	for _, p := range r.places {
		if p.UniversityID == universityID && p.UniversityRoot {
			if exclude != nil && p.ID == *exclude {
				continue
			}
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memPlaceRepo) FindAcademicUnitRoot(_ context.Context, academicUnitID uuid.UUID, exclude *uuid.UUID) (*models.Place, error) {
	for _, p := range r.places {
		if p.AcademicUnitID != nil && *p.AcademicUnitID == academicUnitID && p.AcademicUnitRoot {
			if exclude != nil && p.ID == *exclude {
				continue
			}
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func sortPlaces(places []*models.Place) {
	sort.Slice(places, func(i, j int) bool { return places[i].Name < places[j].Name })
}

type memUpdateRepo struct {
	updates map[uuid.UUID]*models.PlaceUpdate
}

func newMemUpdateRepo() *memUpdateRepo {
	return &memUpdateRepo{updates: make(map[uuid.UUID]*models.PlaceUpdate)}
}

var _ repositories.PlaceUpdateRepository = (*memUpdateRepo)(nil)

func (r *memUpdateRepo) Create(_ context.Context, update *models.PlaceUpdate) error {
	update.ID = uuid.New()
	clone := *update
	r.updates[update.ID] = &clone
	return nil
}

func (r *memUpdateRepo) GetByID(_ context.Context, id uuid.UUID) (*models.PlaceUpdate, error) {
	update, ok := r.updates[id]
	if !ok {
		return nil, nil
	}
	clone := *update
	return &clone, nil
}

func (r *memUpdateRepo) ListPending(_ context.Context, universityID *uuid.UUID) ([]*models.PlaceUpdate, error) {
	var pending []*models.PlaceUpdate
	for _, u := range r.updates {
		if u.ApprovalStatus != models.ApprovalPending {
			continue
		}
		if universityID != nil && u.UniversityID != *universityID {
			continue
		}
		clone := *u
		pending = append(pending, &clone)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return pending, nil
}

func (r *memUpdateRepo) MarkReviewed(_ context.Context, id uuid.UUID, status string, reviewedBy uuid.UUID) (bool, error) {
	update, ok := r.updates[id]
	if !ok || update.ApprovalStatus != models.ApprovalPending {
		return false, nil
	}
	update.ApprovalStatus = status
	update.ReviewedBy = &reviewedBy
	return true, nil
}

type memMediaRepo struct {
	media map[uuid.UUID]*models.PlaceMedia
}

func newMemMediaRepo() *memMediaRepo {
	return &memMediaRepo{media: make(map[uuid.UUID]*models.PlaceMedia)}
}

var _ repositories.PlaceMediaRepository = (*memMediaRepo)(nil)

func (r *memMediaRepo) Create(_ context.Context, media *models.PlaceMedia) error {
	media.ID = uuid.New()
	clone := *media
	r.media[media.ID] = &clone
	return nil
}

func (r *memMediaRepo) ListByPlace(_ context.Context, placeID uuid.UUID) ([]*models.PlaceMedia, error) {
	var out []*models.PlaceMedia
	for _, m := range r.media {
		if m.PlaceID != nil && *m.PlaceID == placeID {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memMediaRepo) ListByUpdate(_ context.Context, updateID uuid.UUID) ([]*models.PlaceMedia, error) {
	var out []*models.PlaceMedia
	for _, m := range r.media {
		if m.PlaceUpdateID != nil && *m.PlaceUpdateID == updateID {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memMediaRepo) ReassignToPlace(_ context.Context, updateID, placeID uuid.UUID) (int64, error) {
	var n int64
	for _, m := range r.media {
		if m.PlaceUpdateID != nil && *m.PlaceUpdateID == updateID {
			m.PlaceID = &placeID
			m.PlaceUpdateID = nil
			n++
		}
	}
	return n, nil
}

type memTypeRepo struct {
	types map[string]*models.PlaceType
}

func newMemTypeRepo() *memTypeRepo {
	return &memTypeRepo{types: make(map[string]*models.PlaceType)}
}

var _ repositories.PlaceTypeRepository = (*memTypeRepo)(nil)

func (r *memTypeRepo) GetOrCreate(_ context.Context, name string) (*models.PlaceType, error) {
	normalized := models.NormalizePlaceTypeName(name)
	if pt, ok := r.types[normalized]; ok {
		clone := *pt
		return &clone, nil
	}
	pt := &models.PlaceType{ID: uuid.New(), Name: normalized}
	r.types[normalized] = pt
	clone := *pt
	return &clone, nil
}

func (r *memTypeRepo) GetByName(_ context.Context, name string) (*models.PlaceType, error) {
	pt, ok := r.types[models.NormalizePlaceTypeName(name)]
	if !ok {
		return nil, nil
	}
	clone := *pt
	return &clone, nil
}

func (r *memTypeRepo) List(_ context.Context) ([]*models.PlaceType, error) {
	var out []*models.PlaceType
	for _, pt := range r.types {
		clone := *pt
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memUnivRepo struct {
	universities map[uuid.UUID]*models.University
	units        map[uuid.UUID]*models.AcademicUnit
}

func newMemUnivRepo() *memUnivRepo {
	return &memUnivRepo{
		universities: make(map[uuid.UUID]*models.University),
		units:        make(map[uuid.UUID]*models.AcademicUnit),
	}
}

var _ repositories.UniversityRepository = (*memUnivRepo)(nil)

func (r *memUnivRepo) addUniversity(name string) uuid.UUID {
	id := uuid.New()
	r.universities[id] = &models.University{ID: id, Name: name}
	return id
}

func (r *memUnivRepo) addUnit(universityID uuid.UUID, name string) uuid.UUID {
	id := uuid.New()
	r.units[id] = &models.AcademicUnit{ID: id, UniversityID: universityID, Name: name, UnitType: models.UnitTypeDepartment}
	return id
}

func (r *memUnivRepo) GetByID(_ context.Context, id uuid.UUID) (*models.University, error) {
	u, ok := r.universities[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (r *memUnivRepo) GetByName(_ context.Context, name string) (*models.University, error) {
	for _, u := range r.universities {
		if u.Name == name {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memUnivRepo) GetAcademicUnit(_ context.Context, id uuid.UUID) (*models.AcademicUnit, error) {
	au, ok := r.units[id]
	if !ok {
		return nil, nil
	}
	clone := *au
	return &clone, nil
}

func (r *memUnivRepo) GetAcademicUnitByName(_ context.Context, name string) (*models.AcademicUnit, error) {
	for _, au := range r.units {
		if au.Name == name {
			clone := *au
			return &clone, nil
		}
	}
	return nil, nil
}
