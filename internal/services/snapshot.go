package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardvault/backend/internal/logger"
	"github.com/cardvault/backend/internal/metrics"
	"github.com/cardvault/backend/internal/models"
)

// SnapshotService captures point-in-time collection aggregates into an
// append-only time series for charting. Snapshotting is caller-triggered;
// no scheduler lives in this process, and repeated calls deliberately
// create separate rows.
type SnapshotService struct {
	db        *gorm.DB
	valuation *ValuationService
}

func NewSnapshotService(db *gorm.DB, valuation *ValuationService) *SnapshotService {
	return &SnapshotService{db: db, valuation: valuation}
}

// RecordSnapshot computes the user's current aggregates and persists them
// stamped with the current time.
func (s *SnapshotService) RecordSnapshot(ctx context.Context, userID uuid.UUID) (*models.CollectionSnapshot, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
	}

	totalValue, err := s.valuation.TotalCollectionValue(ctx, userID)
	if err != nil {
		return nil, err
	}
	totalCards, err := s.valuation.TotalCardQuantity(ctx, userID)
	if err != nil {
		return nil, err
	}
	uniqueCards, err := s.valuation.UniqueCardCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := models.CollectionSnapshot{
		UserID:      userID,
		TotalValue:  totalValue,
		TotalCards:  int(totalCards),
		UniqueCards: int(uniqueCards),
		RecordedAt:  time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&snapshot).Error; err != nil {
		return nil, err
	}

	metrics.SnapshotsRecordedTotal.Inc()
	logger.Info().
		Str("user_id", userID.String()).
		Str("total_value", totalValue.StringFixed(2)).
		Int64("total_cards", totalCards).
		Msg("Recorded collection value snapshot")
	return &snapshot, nil
}

// History returns all snapshots for the user in ascending time order.
func (s *SnapshotService) History(ctx context.Context, userID uuid.UUID) ([]models.CollectionSnapshot, error) {
	var snapshots []models.CollectionSnapshot
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at ASC").
		Find(&snapshots).Error
	return snapshots, err
}

// HistorySince returns snapshots recorded at or after the given time,
// ascending.
func (s *SnapshotService) HistorySince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.CollectionSnapshot, error) {
	var snapshots []models.CollectionSnapshot
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND recorded_at >= ?", userID, since).
		Order("recorded_at ASC").
		Find(&snapshots).Error
	return snapshots, err
}

// HistoryForLastDays returns snapshots from the trailing N-day window.
func (s *SnapshotService) HistoryForLastDays(ctx context.Context, userID uuid.UUID, days int) ([]models.CollectionSnapshot, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: days must not be negative", models.ErrInvalidArgument)
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.HistorySince(ctx, userID, since)
}
