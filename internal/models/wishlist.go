package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WishlistEntry is a card the user wants but does not own. One entry per
// (user, card); priority runs 1 (someday) to 5 (must have).
type WishlistEntry struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_card"`
	CardID    uuid.UUID        `json:"card_id" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_card"`
	Card      Card             `json:"card" gorm:"foreignKey:CardID"`
	Priority  int              `json:"priority" gorm:"not null;default:1"`
	MaxPrice  *decimal.Decimal `json:"max_price" gorm:"type:decimal(10,2)"`
	Notes     string           `json:"notes" gorm:"type:text"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (w *WishlistEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

type AddToWishlistRequest struct {
	CardAPIID string           `json:"card_api_id" binding:"required"`
	Priority  *int             `json:"priority"`
	MaxPrice  *decimal.Decimal `json:"max_price"`
	Notes     string           `json:"notes"`
}

type UpdateWishlistRequest struct {
	Priority *int             `json:"priority"`
	MaxPrice *decimal.Decimal `json:"max_price"`
	Notes    *string          `json:"notes"`
}
