package database

import (
	"github.com/cardvault/backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seed inserts the static card condition and achievement catalogs. Safe to
// run on every startup; existing rows are left untouched.
func Seed(db *gorm.DB) error {
	conditions := []models.CardCondition{
		{Name: "Mint", Description: "Pack fresh, no visible flaws", ValueMultiplier: decimal.RequireFromString("1.00")},
		{Name: "Near Mint", Description: "Minimal wear, tournament legal unsleeved", ValueMultiplier: decimal.RequireFromString("0.90")},
		{Name: "Excellent", Description: "Light edge wear visible on close inspection", ValueMultiplier: decimal.RequireFromString("0.80")},
		{Name: "Good", Description: "Moderate wear, minor scratches or whitening", ValueMultiplier: decimal.RequireFromString("0.65")},
		{Name: "Light Played", Description: "Noticeable wear on edges and surface", ValueMultiplier: decimal.RequireFromString("0.50")},
		{Name: "Played", Description: "Heavy wear, creases or scuffs", ValueMultiplier: decimal.RequireFromString("0.35")},
		{Name: "Poor", Description: "Major damage, only playable sleeved", ValueMultiplier: decimal.RequireFromString("0.20")},
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&conditions).Error; err != nil {
		return err
	}

	// Ids 4 and 5 were retired; the gap is intentional.
	achievements := []models.Achievement{
		{ID: 1, Name: "First Card", Description: "Add your first card to the collection", Points: 10, Criteria: "Own at least 1 card"},
		{ID: 2, Name: "Collector", Description: "Grow your collection to 50 cards", Points: 25, Criteria: "Own at least 50 cards"},
		{ID: 3, Name: "Master Collector", Description: "Grow your collection to 100 cards", Points: 50, Criteria: "Own at least 100 cards"},
		{ID: 6, Name: "High Roller", Description: "Build a collection worth $1,000", Points: 100, Criteria: "Collection value of $1,000.00 or more"},
	}

	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&achievements).Error
}
