package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cardvault/backend/internal/logger"
	"github.com/cardvault/backend/internal/metrics"
	"github.com/cardvault/backend/internal/models"
)

// achievementRule maps an achievement id to its threshold predicate over
// the supplied aggregates. Rules are evaluated independently; a jump in
// quantity grants every rule it crosses.
type achievementRule struct {
	ID   uint
	Name string
	Met  func(totalCards int64, totalValue decimal.Decimal) bool
}

var highRollerThreshold = decimal.RequireFromString("1000.00")

// The full authoritative rule set. Ids 4 and 5 are retired; do not add
// rules that have no seeded definition.
var achievementRules = []achievementRule{
	{ID: 1, Name: "First Card", Met: func(cards int64, _ decimal.Decimal) bool { return cards >= 1 }},
	{ID: 2, Name: "Collector", Met: func(cards int64, _ decimal.Decimal) bool { return cards >= 50 }},
	{ID: 3, Name: "Master Collector", Met: func(cards int64, _ decimal.Decimal) bool { return cards >= 100 }},
	{ID: 6, Name: "High Roller", Met: func(_ int64, value decimal.Decimal) bool { return value.GreaterThanOrEqual(highRollerThreshold) }},
}

// AchievementService evaluates threshold rules against collection
// aggregates and grants badges. A grant is terminal; there is no
// revocation path.
type AchievementService struct {
	db *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{db: db}
}

func (s *AchievementService) WithTx(tx *gorm.DB) *AchievementService {
	return &AchievementService{db: tx}
}

// CheckAndAward evaluates every rule against the supplied aggregates and
// grants the ones that are met and not yet held. Re-running after every
// ledger mutation is safe: duplicate awards surface as ErrAlreadyGranted
// and are swallowed here, and only here. Any other award failure
// propagates.
func (s *AchievementService) CheckAndAward(ctx context.Context, userID uuid.UUID, totalCards int64, totalValue decimal.Decimal) error {
	for _, rule := range achievementRules {
		if !rule.Met(totalCards, totalValue) {
			continue
		}
		has, err := s.HasAchievement(ctx, userID, rule.ID)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := s.Award(ctx, userID, rule.ID); err != nil {
			if errors.Is(err, models.ErrAlreadyGranted) {
				// Lost a race with a concurrent evaluation; the grant exists.
				continue
			}
			return err
		}
	}
	return nil
}

// Award grants an achievement to a user. The unique index on
// (user_id, achievement_id) guarantees that of two concurrent award
// attempts exactly one succeeds and the other gets ErrAlreadyGranted.
func (s *AchievementService) Award(ctx context.Context, userID uuid.UUID, achievementID uint) (*models.AchievementGrant, error) {
	var userCount int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&userCount).Error; err != nil {
		return nil, err
	}
	if userCount == 0 {
		return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
	}

	var achievement models.Achievement
	if err := s.db.WithContext(ctx).First(&achievement, "id = ?", achievementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: achievement %d", models.ErrNotFound, achievementID)
		}
		return nil, err
	}

	grant := models.AchievementGrant{
		UserID:        userID,
		AchievementID: achievementID,
	}
	if err := s.db.WithContext(ctx).Create(&grant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: achievement %d for user %s", models.ErrAlreadyGranted, achievementID, userID)
		}
		return nil, err
	}
	grant.Achievement = achievement

	metrics.AchievementsAwardedTotal.WithLabelValues(achievement.Name).Inc()
	logger.Info().
		Str("user_id", userID.String()).
		Str("achievement", achievement.Name).
		Msg("Awarded achievement")
	return &grant, nil
}

func (s *AchievementService) HasAchievement(ctx context.Context, userID uuid.UUID, achievementID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.AchievementGrant{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Count(&count).Error
	return count > 0, err
}

// TotalPoints sums the points of every achievement the user holds.
func (s *AchievementService) TotalPoints(ctx context.Context, userID uuid.UUID) (int64, error) {
	var points int64
	err := s.db.WithContext(ctx).
		Model(&models.AchievementGrant{}).
		Joins("JOIN achievements ON achievements.id = achievement_grants.achievement_id").
		Where("achievement_grants.user_id = ?", userID).
		Select("COALESCE(SUM(achievements.points), 0)").
		Scan(&points).Error
	return points, err
}

func (s *AchievementService) GrantCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.AchievementGrant{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// ListDefinitions returns the static achievement catalog.
func (s *AchievementService) ListDefinitions(ctx context.Context) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := s.db.WithContext(ctx).Order("id ASC").Find(&achievements).Error
	return achievements, err
}

// ListGrants returns the user's earned achievements, most recent first.
func (s *AchievementService) ListGrants(ctx context.Context, userID uuid.UUID) ([]models.AchievementGrant, error) {
	var grants []models.AchievementGrant
	err := s.db.WithContext(ctx).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&grants).Error
	return grants, err
}
