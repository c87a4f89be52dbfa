package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding records a user's ownership of a quantity of one catalog card.
// At most one row exists per (user, card); a second acquisition of the same
// card merges into the existing row instead of creating a new one.
type Holding struct {
	ID              uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_holdings_user_card"`
	CardID          uuid.UUID        `json:"card_id" gorm:"type:uuid;not null;uniqueIndex:idx_holdings_user_card"`
	Card            Card             `json:"card" gorm:"foreignKey:CardID"`
	Quantity        int              `json:"quantity" gorm:"not null;default:1"`
	ConditionID     *uint            `json:"condition_id"`
	Condition       *CardCondition   `json:"condition,omitempty" gorm:"foreignKey:ConditionID"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price" gorm:"type:decimal(10,2)"`
	CurrentValue    *decimal.Decimal `json:"current_value" gorm:"type:decimal(10,2)"`
	AcquisitionDate *time.Time       `json:"acquisition_date"`
	Notes           string           `json:"notes" gorm:"type:text"`
	IsGraded        bool             `json:"is_graded"`
	GradeValue      string           `json:"grade_value"`
	GradingCompany  string           `json:"grading_company"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// TotalValue is quantity times current value. A holding without a current
// value contributes zero; it never falls back to the purchase price.
func (h *Holding) TotalValue() decimal.Decimal {
	if h.CurrentValue == nil {
		return decimal.Zero
	}
	return h.CurrentValue.Mul(decimal.NewFromInt(int64(h.Quantity)))
}

type AddToCollectionRequest struct {
	CardAPIID      string           `json:"card_api_id" binding:"required"`
	Quantity       int              `json:"quantity"`
	ConditionID    *uint            `json:"condition_id"`
	PurchasePrice  *decimal.Decimal `json:"purchase_price"`
	CurrentValue   *decimal.Decimal `json:"current_value"`
	Notes          *string          `json:"notes"`
	IsGraded       *bool            `json:"is_graded"`
	GradeValue     *string          `json:"grade_value"`
	GradingCompany *string          `json:"grading_company"`
}

type UpdateHoldingRequest struct {
	Quantity        *int             `json:"quantity"`
	ConditionID     *uint            `json:"condition_id"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price"`
	CurrentValue    *decimal.Decimal `json:"current_value"`
	AcquisitionDate *time.Time       `json:"acquisition_date"`
	Notes           *string          `json:"notes"`
	IsGraded        *bool            `json:"is_graded"`
	GradeValue      *string          `json:"grade_value"`
	GradingCompany  *string          `json:"grading_company"`
}

// CollectionSummary is the dashboard view over a user's collection.
type CollectionSummary struct {
	UniqueCards      int64           `json:"unique_cards"`
	TotalCards       int64           `json:"total_cards"`
	TotalValue       decimal.Decimal `json:"total_value"`
	AchievementCount int64           `json:"achievement_count"`
	TotalPoints      int64           `json:"total_points"`
	WishlistCount    int64           `json:"wishlist_count"`
}
