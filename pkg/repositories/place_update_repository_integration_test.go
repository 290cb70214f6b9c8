//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/places-engine/pkg/models"
	"github.com/campusconnect/places-engine/pkg/testhelpers"
)

func TestPlaceUpdateRepositoryReviewFlow(t *testing.T) {
	db := testhelpers.GetTestDB(t).DB
	places := NewPlaceRepository(db)
	updates := NewPlaceUpdateRepository(db)
	ctx := context.Background()
	uniID := seedUniversity(t, db, "Review Flow University")

	place := &models.Place{UniversityID: uniID, Name: "Main Campus", ApprovalStatus: models.ApprovalApproved, UniversityRoot: true}
	require.NoError(t, places.Create(ctx, place))

	name := "Renamed Campus"
	author := uuid.New()
	update := &models.PlaceUpdate{
		PlaceID:        place.ID,
		UniversityID:   uniID,
		Name:           &name,
		UpdatedBy:      &author,
		ApprovalStatus: models.ApprovalPending,
		UniversityRoot: true,
	}
	require.NoError(t, updates.Create(ctx, update))
	require.NotEqual(t, uuid.Nil, update.ID)

	got, err := updates.GetByID(ctx, update.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Name)
	assert.Equal(t, "Renamed Campus", *got.Name)
	assert.Nil(t, got.Description, "unset staged fields stay NULL")
	assert.Nil(t, got.ReviewedBy)
	assert.Nil(t, got.ReviewedAt)

	reviewer := uuid.New()
	reviewed, err := updates.MarkReviewed(ctx, update.ID, models.ApprovalApproved, reviewer)
	require.NoError(t, err)
	assert.True(t, reviewed)

	again, err := updates.MarkReviewed(ctx, update.ID, models.ApprovalRejected, reviewer)
	require.NoError(t, err)
	assert.False(t, again, "a reviewed update cannot be reviewed twice")

	got, err = updates.GetByID(ctx, update.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, got.ApprovalStatus)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, reviewer, *got.ReviewedBy)
	require.NotNil(t, got.ReviewedAt)
}

func TestPlaceUpdateRepositoryListPendingScope(t *testing.T) {
	db := testhelpers.GetTestDB(t).DB
	places := NewPlaceRepository(db)
	updates := NewPlaceUpdateRepository(db)
	ctx := context.Background()
	uniA := seedUniversity(t, db, "Pending Scope University A")
	uniB := seedUniversity(t, db, "Pending Scope University B")

	placeA := &models.Place{UniversityID: uniA, Name: "A Campus", ApprovalStatus: models.ApprovalApproved, UniversityRoot: true}
	require.NoError(t, places.Create(ctx, placeA))
	placeB := &models.Place{UniversityID: uniB, Name: "B Campus", ApprovalStatus: models.ApprovalApproved, UniversityRoot: true}
	require.NoError(t, places.Create(ctx, placeB))

	for _, p := range []*models.Place{placeA, placeB} {
		author := uuid.New()
		update := &models.PlaceUpdate{
			PlaceID:        p.ID,
			UniversityID:   p.UniversityID,
			UpdatedBy:      &author,
			ApprovalStatus: models.ApprovalPending,
			UniversityRoot: true,
		}
		require.NoError(t, updates.Create(ctx, update))
	}

	scoped, err := updates.ListPending(ctx, &uniA)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, placeA.ID, scoped[0].PlaceID)

	all, err := updates.ListPending(ctx, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(all), 2)
}

func TestPlaceMediaRepositoryReassign(t *testing.T) {
	db := testhelpers.GetTestDB(t).DB
	places := NewPlaceRepository(db)
	updates := NewPlaceUpdateRepository(db)
	media := NewPlaceMediaRepository(db)
	ctx := context.Background()
	uniID := seedUniversity(t, db, "Media Reassign University")

	place := &models.Place{UniversityID: uniID, Name: "Main Campus", ApprovalStatus: models.ApprovalApproved, UniversityRoot: true}
	require.NoError(t, places.Create(ctx, place))

	author := uuid.New()
	update := &models.PlaceUpdate{
		PlaceID:        place.ID,
		UniversityID:   uniID,
		UpdatedBy:      &author,
		ApprovalStatus: models.ApprovalPending,
		UniversityRoot: true,
	}
	require.NoError(t, updates.Create(ctx, update))

	uploader := uuid.New()
	item := &models.PlaceMedia{
		PlaceUpdateID: &update.ID,
		StorageKey:    "updates/" + update.ID.String() + "/front.jpg",
		ContentType:   "image/jpeg",
		UploadedBy:    &uploader,
	}
	require.NoError(t, media.Create(ctx, item))

	staged, err := media.ListByUpdate(ctx, update.ID)
	require.NoError(t, err)
	require.Len(t, staged, 1)

	moved, err := media.ReassignToPlace(ctx, update.ID, place.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved)

	staged, err = media.ListByUpdate(ctx, update.ID)
	require.NoError(t, err)
	assert.Empty(t, staged)

	attached, err := media.ListByPlace(ctx, place.ID)
	require.NoError(t, err)
	require.Len(t, attached, 1)
	assert.Nil(t, attached[0].PlaceUpdateID)
	require.NotNil(t, attached[0].PlaceID)
	assert.Equal(t, place.ID, *attached[0].PlaceID)
}

func TestPlaceTypeRepositoryUpsert(t *testing.T) {
	db := testhelpers.GetTestDB(t).DB
	repo := NewPlaceTypeRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, "  Observatory ")
	require.NoError(t, err)
	assert.Equal(t, "observatory", first.Name)

	second, err := repo.GetOrCreate(ctx, "OBSERVATORY")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "normalized names share one row")

	_, err = repo.GetOrCreate(ctx, "   ")
	require.Error(t, err)
}
