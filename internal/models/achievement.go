package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Achievement is a static definition seeded at startup. The criteria text is
// for display only; the machine rules live in the achievement service.
type Achievement struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Points      int       `json:"points" gorm:"not null"`
	Criteria    string    `json:"criteria" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

// AchievementGrant marks that a user earned an achievement. A user holds
// each achievement at most once, enforced by the unique index so concurrent
// award attempts cannot produce duplicate rows.
type AchievementGrant struct {
	ID            uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_grants_user_achievement"`
	AchievementID uint        `json:"achievement_id" gorm:"not null;uniqueIndex:idx_grants_user_achievement"`
	Achievement   Achievement `json:"achievement" gorm:"foreignKey:AchievementID"`
	EarnedAt      time.Time   `json:"earned_at" gorm:"not null"`
}

func (g *AchievementGrant) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.EarnedAt.IsZero() {
		g.EarnedAt = time.Now()
	}
	return nil
}
