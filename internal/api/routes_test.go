package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cardvault/backend/internal/config"
	"github.com/cardvault/backend/internal/database"
	"github.com/cardvault/backend/internal/logger"
	"github.com/cardvault/backend/internal/models"
)

type fakeCatalog struct {
	cards map[string]*models.CatalogCard
}

func (f *fakeCatalog) ResolveCard(_ context.Context, apiID string) (*models.CatalogCard, error) {
	card, ok := f.cards[apiID]
	if !ok {
		return nil, fmt.Errorf("%w: card %s not found in catalog", models.ErrCardResolution, apiID)
	}
	return card, nil
}

func (f *fakeCatalog) SearchCards(_ context.Context, _ string, _, _ int) (*models.CardSearchResult, error) {
	cards := make([]models.CatalogCard, 0, len(f.cards))
	for _, c := range f.cards {
		cards = append(cards, *c)
	}
	return &models.CardSearchResult{Cards: cards, TotalCount: len(cards)}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Init("test")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Card{},
		&models.CardCondition{},
		&models.Holding{},
		&models.CollectionSnapshot{},
		&models.Achievement{},
		&models.AchievementGrant{},
		&models.WishlistEntry{},
	))
	require.NoError(t, database.Seed(db))

	charizardPrice := decimal.RequireFromString("600.00")
	catalog := &fakeCatalog{cards: map[string]*models.CatalogCard{
		"base1-4": {
			APIID:       "base1-4",
			Name:        "Charizard",
			SetName:     "Base Set",
			Rarity:      "Rare Holo",
			MarketPrice: &charizardPrice,
		},
	}}

	cfg := &config.Config{Env: "test", Port: "0"}
	return SetupRouter(cfg, db, catalog), db
}

func seedUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	name := "user_" + uuid.NewString()[:8]
	user := models.User{Username: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, userID *uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != nil {
		req.Header.Set("X-User-ID", userID.String())
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCollectionRequiresIdentity(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/collection", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/collection", nil)
	req.Header.Set("X-User-ID", "not-a-uuid")
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)
}

func TestAddToCollectionGrantsAchievements(t *testing.T) {
	router, db := newTestRouter(t)
	userID := seedUser(t, db)

	rec := doJSON(t, router, http.MethodPost, "/api/collection", &userID, gin.H{
		"card_api_id": "base1-4",
		"quantity":    2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var holding models.Holding
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &holding))
	assert.Equal(t, 2, holding.Quantity)
	assert.Equal(t, "Charizard", holding.Card.Name)

	// 2 cards at 600.00 each crosses both First Card and High Roller.
	earned := doJSON(t, router, http.MethodGet, "/api/achievements/earned", &userID, nil)
	require.Equal(t, http.StatusOK, earned.Code)
	var grants []models.AchievementGrant
	require.NoError(t, json.Unmarshal(earned.Body.Bytes(), &grants))
	require.Len(t, grants, 2)

	summary := doJSON(t, router, http.MethodGet, "/api/collection/summary", &userID, nil)
	require.Equal(t, http.StatusOK, summary.Code)
	var got models.CollectionSummary
	require.NoError(t, json.Unmarshal(summary.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.UniqueCards)
	assert.Equal(t, int64(2), got.TotalCards)
	assert.True(t, got.TotalValue.Equal(decimal.RequireFromString("1200.00")), "got %s", got.TotalValue)
	assert.Equal(t, int64(2), got.AchievementCount)
	assert.Equal(t, int64(110), got.TotalPoints)
}

func TestAddToCollectionUnknownCardIs502(t *testing.T) {
	router, db := newTestRouter(t)
	userID := seedUser(t, db)

	rec := doJSON(t, router, http.MethodPost, "/api/collection", &userID, gin.H{
		"card_api_id": "missing-card",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDirectAwardConflict(t *testing.T) {
	router, db := newTestRouter(t)
	userID := seedUser(t, db)

	first := doJSON(t, router, http.MethodPost, "/api/achievements/1/award", &userID, nil)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := doJSON(t, router, http.MethodPost, "/api/achievements/1/award", &userID, nil)
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestSnapshotFlow(t *testing.T) {
	router, db := newTestRouter(t)
	userID := seedUser(t, db)

	rec := doJSON(t, router, http.MethodPost, "/api/collection", &userID, gin.H{"card_api_id": "base1-4"})
	require.Equal(t, http.StatusCreated, rec.Code)

	snap := doJSON(t, router, http.MethodPost, "/api/collection-history/snapshot", &userID, nil)
	require.Equal(t, http.StatusCreated, snap.Code, snap.Body.String())

	history := doJSON(t, router, http.MethodGet, "/api/collection-history", &userID, nil)
	require.Equal(t, http.StatusOK, history.Code)
	var snapshots []models.CollectionSnapshot
	require.NoError(t, json.Unmarshal(history.Body.Bytes(), &snapshots))
	require.Len(t, snapshots, 1)
	assert.Equal(t, 1, snapshots[0].TotalCards)

	bad := doJSON(t, router, http.MethodGet, "/api/collection-history/last-days/abc", &userID, nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestRemoveHoldingKeepsGrants(t *testing.T) {
	router, db := newTestRouter(t)
	userID := seedUser(t, db)

	rec := doJSON(t, router, http.MethodPost, "/api/collection", &userID, gin.H{"card_api_id": "base1-4"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var holding models.Holding
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &holding))

	del := doJSON(t, router, http.MethodDelete, "/api/collection/"+holding.ID.String(), &userID, nil)
	require.Equal(t, http.StatusOK, del.Code)

	earned := doJSON(t, router, http.MethodGet, "/api/achievements/earned", &userID, nil)
	require.Equal(t, http.StatusOK, earned.Code)
	var grants []models.AchievementGrant
	require.NoError(t, json.Unmarshal(earned.Body.Bytes(), &grants))
	assert.NotEmpty(t, grants, "removing holdings never revokes achievements")
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
