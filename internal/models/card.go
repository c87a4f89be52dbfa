package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Card is a locally cached catalog entry, created the first time a card is
// resolved against the external catalog. APIID is the external identifier.
type Card struct {
	ID            uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	APIID         string           `json:"api_id" gorm:"uniqueIndex;not null"`
	Name          string           `json:"name" gorm:"not null;index"`
	SetName       string           `json:"set_name" gorm:"index"`
	SetSeries     string           `json:"set_series"`
	CardNumber    string           `json:"card_number"`
	Rarity        string           `json:"rarity" gorm:"index"`
	Supertype     string           `json:"supertype"`
	ImageURL      string           `json:"image_url"`
	SmallImageURL string           `json:"small_image_url"`
	MarketPrice   *decimal.Decimal `json:"market_price" gorm:"type:decimal(10,2)"`
	ReleaseDate   *time.Time       `json:"release_date"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (c *Card) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CatalogCard is what the external catalog provider returns. Prices are
// converted to fixed-point decimal at that boundary; float values never
// travel further into the system.
type CatalogCard struct {
	APIID         string           `json:"api_id"`
	Name          string           `json:"name"`
	SetName       string           `json:"set_name"`
	SetSeries     string           `json:"set_series"`
	CardNumber    string           `json:"card_number"`
	Rarity        string           `json:"rarity"`
	Supertype     string           `json:"supertype"`
	ImageURL      string           `json:"image_url"`
	SmallImageURL string           `json:"small_image_url"`
	MarketPrice   *decimal.Decimal `json:"market_price"`
	ReleaseDate   *time.Time       `json:"release_date"`
}

type CardSearchResult struct {
	Cards      []CatalogCard `json:"cards"`
	TotalCount int           `json:"total_count"`
	HasMore    bool          `json:"has_more"`
}
