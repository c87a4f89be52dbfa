package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardvault/backend/internal/models"
)

func newWishlistFixture(t *testing.T) (*WishlistService, uuid.UUID) {
	t.Helper()
	db := newTestDB(t)
	catalog := &stubCatalog{cards: map[string]*models.CatalogCard{
		"base1-4":  catalogEntry("base1-4", "Charizard", "320.00"),
		"base1-15": catalogEntry("base1-15", "Venusaur", "45.50"),
	}}
	return NewWishlistService(db, catalog), createTestUser(t, db)
}

func TestWishlistAdd(t *testing.T) {
	svc, userID := newWishlistFixture(t)

	entry, err := svc.Add(context.Background(), userID, models.AddToWishlistRequest{
		CardAPIID: "base1-4",
		MaxPrice:  dec(t, "250.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Priority, "priority defaults to 1")
	assert.Equal(t, "Charizard", entry.Card.Name)
}

func TestWishlistAddRejectsDuplicate(t *testing.T) {
	svc, userID := newWishlistFixture(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, userID, models.AddToWishlistRequest{CardAPIID: "base1-4"})
	require.NoError(t, err)

	_, err = svc.Add(ctx, userID, models.AddToWishlistRequest{CardAPIID: "base1-4"})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestWishlistPriorityValidation(t *testing.T) {
	svc, userID := newWishlistFixture(t)
	ctx := context.Background()

	bad := 6
	_, err := svc.Add(ctx, userID, models.AddToWishlistRequest{CardAPIID: "base1-4", Priority: &bad})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	ok := 5
	entry, err := svc.Add(ctx, userID, models.AddToWishlistRequest{CardAPIID: "base1-4", Priority: &ok})
	require.NoError(t, err)
	assert.Equal(t, 5, entry.Priority)
}

func TestWishlistListOrderedByPriority(t *testing.T) {
	svc, userID := newWishlistFixture(t)
	ctx := context.Background()

	low := 1
	high := 5
	_, err := svc.Add(ctx, userID, models.AddToWishlistRequest{CardAPIID: "base1-4", Priority: &low})
	require.NoError(t, err)
	_, err = svc.Add(ctx, userID, models.AddToWishlistRequest{CardAPIID: "base1-15", Priority: &high})
	require.NoError(t, err)

	entries, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 5, entries[0].Priority)
	assert.Equal(t, "Venusaur", entries[0].Card.Name)
}

func TestWishlistUpdateAndRemove(t *testing.T) {
	svc, userID := newWishlistFixture(t)
	ctx := context.Background()

	entry, err := svc.Add(ctx, userID, models.AddToWishlistRequest{CardAPIID: "base1-4"})
	require.NoError(t, err)

	newPriority := 3
	updated, err := svc.Update(ctx, entry.ID, userID, models.UpdateWishlistRequest{
		Priority: &newPriority,
		MaxPrice: dec(t, "199.99"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Priority)

	require.NoError(t, svc.Remove(ctx, entry.ID, userID))
	err = svc.Remove(ctx, entry.ID, userID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	count, err := svc.Count(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestWishlistCountIsolatedPerUser(t *testing.T) {
	svc, userID := newWishlistFixture(t)
	ctx := context.Background()
	other := createTestUser(t, svc.db)

	_, err := svc.Add(ctx, userID, models.AddToWishlistRequest{CardAPIID: "base1-4"})
	require.NoError(t, err)

	count, err := svc.Count(ctx, other)
	require.NoError(t, err)
	assert.Zero(t, count)
}
