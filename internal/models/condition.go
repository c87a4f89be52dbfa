package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardCondition is a seeded grade table. The multiplier scales a card's
// market price when estimating the value of a copy in that condition.
type CardCondition struct {
	ID              uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Name            string          `json:"name" gorm:"uniqueIndex;not null"`
	Description     string          `json:"description" gorm:"type:text"`
	ValueMultiplier decimal.Decimal `json:"value_multiplier" gorm:"type:decimal(3,2)"`
	CreatedAt       time.Time       `json:"created_at"`
}
