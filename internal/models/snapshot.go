package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CollectionSnapshot is an immutable point-in-time record of a user's
// collection aggregates, used for historical value charts. Rows are
// append-only; RecordedAt is server-assigned and never mutated.
type CollectionSnapshot struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index:idx_snapshots_user_time"`
	TotalValue  decimal.Decimal `json:"total_value" gorm:"type:decimal(10,2);not null"`
	TotalCards  int             `json:"total_cards" gorm:"not null"`
	UniqueCards int             `json:"unique_cards" gorm:"not null"`
	RecordedAt  time.Time       `json:"recorded_at" gorm:"not null;index:idx_snapshots_user_time"`
}

func (s *CollectionSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
