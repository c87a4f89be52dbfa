package services

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cardvault/backend/internal/models"
)

// ValuationService derives aggregates over a user's holdings. Nothing here
// mutates state and nothing is cached; every call reads the ledger fresh.
// Monetary math runs on fixed-point decimals, never floats.
type ValuationService struct {
	db *gorm.DB
}

func NewValuationService(db *gorm.DB) *ValuationService {
	return &ValuationService{db: db}
}

func (s *ValuationService) WithTx(tx *gorm.DB) *ValuationService {
	return &ValuationService{db: tx}
}

// UniqueCardCount is the number of distinct holdings the user has.
func (s *ValuationService) UniqueCardCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Holding{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// TotalCardQuantity sums quantities across the user's holdings.
func (s *ValuationService) TotalCardQuantity(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.Holding{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}

// TotalCollectionValue sums current value times quantity across the user's
// holdings. Holdings without a current value contribute zero.
func (s *ValuationService) TotalCollectionValue(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	holdings, err := s.loadHoldings(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return SumValue(holdings), nil
}

// TopValueHoldings returns the user's holdings ordered by descending
// value, up to limit. limit <= 0 means no cap.
func (s *ValuationService) TopValueHoldings(ctx context.Context, userID uuid.UUID, limit int) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.WithContext(ctx).
		Preload("Card").
		Preload("Condition").
		Where("user_id = ?", userID).
		Find(&holdings).Error
	if err != nil {
		return nil, err
	}

	SortByValueDesc(holdings)
	if limit > 0 && len(holdings) > limit {
		holdings = holdings[:limit]
	}
	return holdings, nil
}

func (s *ValuationService) loadHoldings(ctx context.Context, userID uuid.UUID) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&holdings).Error
	return holdings, err
}

// SumQuantity adds up quantities over a set of holdings.
func SumQuantity(holdings []models.Holding) int64 {
	var total int64
	for _, h := range holdings {
		total += int64(h.Quantity)
	}
	return total
}

// SumValue adds up current value times quantity over a set of holdings,
// rounded half-up to 2 decimal places at the point of summation. A nil
// current value contributes zero; it never defaults to the purchase price.
func SumValue(holdings []models.Holding) decimal.Decimal {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.TotalValue())
	}
	return total.Round(2)
}

// SortByValueDesc orders holdings by descending value, ties broken by most
// recently created first.
func SortByValueDesc(holdings []models.Holding) {
	sort.SliceStable(holdings, func(i, j int) bool {
		vi, vj := holdings[i].TotalValue(), holdings[j].TotalValue()
		if !vi.Equal(vj) {
			return vi.GreaterThan(vj)
		}
		return holdings[i].CreatedAt.After(holdings[j].CreatedAt)
	})
}
