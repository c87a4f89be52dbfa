package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cardvault/backend/internal/database"
	"github.com/cardvault/backend/internal/logger"
	"github.com/cardvault/backend/internal/models"
)

// newTestDB opens a fresh in-memory database with the full schema and
// seed data. Each test gets its own database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Init("test")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Card{},
		&models.CardCondition{},
		&models.Holding{},
		&models.CollectionSnapshot{},
		&models.Achievement{},
		&models.AchievementGrant{},
		&models.WishlistEntry{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := database.Seed(db); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	name := "user_" + uuid.NewString()[:8]
	user := models.User{Username: name, Email: name + "@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user.ID
}

func createTestCard(t *testing.T, db *gorm.DB, apiID string, marketPrice *decimal.Decimal) models.Card {
	t.Helper()
	card := models.Card{
		APIID:       apiID,
		Name:        "Card " + apiID,
		SetName:     "Base Set",
		Rarity:      "Rare",
		MarketPrice: marketPrice,
	}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("failed to create test card: %v", err)
	}
	return card
}

// stubCatalog is an in-memory CardCatalog for ledger tests.
type stubCatalog struct {
	cards map[string]*models.CatalogCard
	err   error
}

func (s *stubCatalog) ResolveCard(_ context.Context, apiID string) (*models.CatalogCard, error) {
	if s.err != nil {
		return nil, s.err
	}
	card, ok := s.cards[apiID]
	if !ok {
		return nil, fmt.Errorf("%w: card %s not found in catalog", models.ErrCardResolution, apiID)
	}
	return card, nil
}

func (s *stubCatalog) SearchCards(_ context.Context, _ string, _, _ int) (*models.CardSearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.CardSearchResult{}, nil
}

func dec(t *testing.T, value string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", value, err)
	}
	return &d
}

func catalogEntry(apiID, name, price string) *models.CatalogCard {
	entry := &models.CatalogCard{
		APIID:   apiID,
		Name:    name,
		SetName: "Base Set",
		Rarity:  "Rare",
	}
	if price != "" {
		p := decimal.RequireFromString(price)
		entry.MarketPrice = &p
	}
	return entry
}
