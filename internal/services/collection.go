package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardvault/backend/internal/logger"
	"github.com/cardvault/backend/internal/metrics"
	"github.com/cardvault/backend/internal/models"
)

// Maximum quantity allowed per holding
const maxQuantity = 9999

// CollectionService owns the holdings ledger: merge-on-add, partial update,
// quantity changes and removal. It never computes aggregates itself; the
// valuation service always derives those fresh.
type CollectionService struct {
	db      *gorm.DB
	catalog CardCatalog
}

func NewCollectionService(db *gorm.DB, catalog CardCatalog) *CollectionService {
	return &CollectionService{db: db, catalog: catalog}
}

// WithTx returns a copy bound to the given transaction so a handler can run
// a ledger mutation and the follow-up achievement evaluation atomically.
func (s *CollectionService) WithTx(tx *gorm.DB) *CollectionService {
	return &CollectionService{db: tx, catalog: s.catalog}
}

// AddToCollection merges an acquisition into the user's ledger. If a holding
// for (user, card) already exists its quantity is incremented and only
// explicitly supplied attributes change; otherwise a new holding is created
// with the current value defaulted to the card's market price.
func (s *CollectionService) AddToCollection(ctx context.Context, userID uuid.UUID, req models.AddToCollectionRequest) (*models.Holding, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", models.ErrInvalidArgument)
	}
	if quantity > maxQuantity {
		return nil, fmt.Errorf("%w: quantity exceeds maximum allowed (%d)", models.ErrInvalidArgument, maxQuantity)
	}

	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	card, err := resolveOrCreateCard(ctx, s.db, s.catalog, req.CardAPIID)
	if err != nil {
		return nil, err
	}

	var holding models.Holding
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND card_id = ?", userID, card.ID).
		First(&holding).Error

	if err == nil {
		holding.Quantity += quantity
		if err := s.applyAddAttrs(ctx, &holding, req); err != nil {
			return nil, err
		}
		if err := s.db.WithContext(ctx).Save(&holding).Error; err != nil {
			return nil, err
		}
		metrics.HoldingMutationsTotal.WithLabelValues("merge").Inc()
		logger.Info().
			Str("user_id", userID.String()).
			Str("card_api_id", req.CardAPIID).
			Int("quantity", holding.Quantity).
			Msg("Merged acquisition into existing holding")
		return s.reload(ctx, holding.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	holding = models.Holding{
		UserID:          userID,
		CardID:          card.ID,
		Quantity:        quantity,
		PurchasePrice:   req.PurchasePrice,
		CurrentValue:    req.CurrentValue,
		AcquisitionDate: &now,
	}
	if holding.CurrentValue == nil {
		holding.CurrentValue = card.MarketPrice
	}
	if err := s.applyAddAttrs(ctx, &holding, req); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&holding).Error; err != nil {
		return nil, err
	}
	metrics.HoldingMutationsTotal.WithLabelValues("add").Inc()
	logger.Info().
		Str("user_id", userID.String()).
		Str("card_api_id", req.CardAPIID).
		Msg("Created new holding")
	return s.reload(ctx, holding.ID)
}

// UpdateHolding applies a field-level partial update. Only non-nil fields
// change.
func (s *CollectionService) UpdateHolding(ctx context.Context, holdingID, userID uuid.UUID, req models.UpdateHoldingRequest) (*models.Holding, error) {
	holding, err := s.ownedHolding(ctx, holdingID, userID)
	if err != nil {
		return nil, err
	}

	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be greater than 0", models.ErrInvalidArgument)
		}
		if *req.Quantity > maxQuantity {
			return nil, fmt.Errorf("%w: quantity exceeds maximum allowed (%d)", models.ErrInvalidArgument, maxQuantity)
		}
		holding.Quantity = *req.Quantity
	}
	if req.ConditionID != nil {
		if err := s.ensureConditionExists(ctx, *req.ConditionID); err != nil {
			return nil, err
		}
		holding.ConditionID = req.ConditionID
	}
	if req.PurchasePrice != nil {
		holding.PurchasePrice = req.PurchasePrice
	}
	if req.CurrentValue != nil {
		holding.CurrentValue = req.CurrentValue
	}
	if req.AcquisitionDate != nil {
		holding.AcquisitionDate = req.AcquisitionDate
	}
	if req.Notes != nil {
		holding.Notes = *req.Notes
	}
	if req.IsGraded != nil {
		holding.IsGraded = *req.IsGraded
	}
	if req.GradeValue != nil {
		holding.GradeValue = *req.GradeValue
	}
	if req.GradingCompany != nil {
		holding.GradingCompany = *req.GradingCompany
	}

	if err := s.db.WithContext(ctx).Save(holding).Error; err != nil {
		return nil, err
	}
	metrics.HoldingMutationsTotal.WithLabelValues("update").Inc()
	return s.reload(ctx, holding.ID)
}

// SetQuantity replaces the holding's quantity outright.
func (s *CollectionService) SetQuantity(ctx context.Context, holdingID, userID uuid.UUID, quantity int) (*models.Holding, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", models.ErrInvalidArgument)
	}
	if quantity > maxQuantity {
		return nil, fmt.Errorf("%w: quantity exceeds maximum allowed (%d)", models.ErrInvalidArgument, maxQuantity)
	}

	holding, err := s.ownedHolding(ctx, holdingID, userID)
	if err != nil {
		return nil, err
	}

	holding.Quantity = quantity
	if err := s.db.WithContext(ctx).Save(holding).Error; err != nil {
		return nil, err
	}
	metrics.HoldingMutationsTotal.WithLabelValues("set_quantity").Inc()
	return s.reload(ctx, holding.ID)
}

// RemoveHolding hard-deletes the holding.
func (s *CollectionService) RemoveHolding(ctx context.Context, holdingID, userID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", holdingID, userID).
		Delete(&models.Holding{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: holding %s", models.ErrNotFound, holdingID)
	}
	metrics.HoldingMutationsTotal.WithLabelValues("remove").Inc()
	logger.Info().
		Str("user_id", userID.String()).
		Str("holding_id", holdingID.String()).
		Msg("Removed holding")
	return nil
}

// GetCollection lists the user's holdings, newest first.
func (s *CollectionService) GetCollection(ctx context.Context, userID uuid.UUID) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.WithContext(ctx).
		Preload("Card").
		Preload("Condition").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&holdings).Error
	return holdings, err
}

func (s *CollectionService) GetHolding(ctx context.Context, holdingID, userID uuid.UUID) (*models.Holding, error) {
	var holding models.Holding
	err := s.db.WithContext(ctx).
		Preload("Card").
		Preload("Condition").
		Where("id = ? AND user_id = ?", holdingID, userID).
		First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: holding %s", models.ErrNotFound, holdingID)
	}
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

func (s *CollectionService) GetByRarity(ctx context.Context, userID uuid.UUID, rarity string) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.WithContext(ctx).
		Preload("Card").
		Preload("Condition").
		Joins("JOIN cards ON cards.id = holdings.card_id").
		Where("holdings.user_id = ? AND cards.rarity = ?", userID, rarity).
		Find(&holdings).Error
	return holdings, err
}

func (s *CollectionService) GetBySet(ctx context.Context, userID uuid.UUID, setName string) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.WithContext(ctx).
		Preload("Card").
		Preload("Condition").
		Joins("JOIN cards ON cards.id = holdings.card_id").
		Where("holdings.user_id = ? AND cards.set_name = ?", userID, setName).
		Find(&holdings).Error
	return holdings, err
}

func (s *CollectionService) applyAddAttrs(ctx context.Context, holding *models.Holding, req models.AddToCollectionRequest) error {
	if req.ConditionID != nil {
		if err := s.ensureConditionExists(ctx, *req.ConditionID); err != nil {
			return err
		}
		holding.ConditionID = req.ConditionID
	}
	if req.PurchasePrice != nil {
		holding.PurchasePrice = req.PurchasePrice
	}
	if req.CurrentValue != nil {
		holding.CurrentValue = req.CurrentValue
	}
	if req.Notes != nil {
		holding.Notes = *req.Notes
	}
	if req.IsGraded != nil {
		holding.IsGraded = *req.IsGraded
	}
	if req.GradeValue != nil {
		holding.GradeValue = *req.GradeValue
	}
	if req.GradingCompany != nil {
		holding.GradingCompany = *req.GradingCompany
	}
	return nil
}

func (s *CollectionService) ownedHolding(ctx context.Context, holdingID, userID uuid.UUID) (*models.Holding, error) {
	var holding models.Holding
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", holdingID, userID).
		First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: holding %s", models.ErrNotFound, holdingID)
	}
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

func (s *CollectionService) ensureUserExists(ctx context.Context, userID uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
	}
	return nil
}

func (s *CollectionService) ensureConditionExists(ctx context.Context, conditionID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CardCondition{}).Where("id = ?", conditionID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: condition %d", models.ErrNotFound, conditionID)
	}
	return nil
}

func (s *CollectionService) reload(ctx context.Context, holdingID uuid.UUID) (*models.Holding, error) {
	var holding models.Holding
	err := s.db.WithContext(ctx).
		Preload("Card").
		Preload("Condition").
		First(&holding, "id = ?", holdingID).Error
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

// resolveOrCreateCard returns the local card row for an external catalog id,
// fetching and persisting the catalog entry on first sight. Catalog failures
// propagate as ErrCardResolution; no retries happen here.
func resolveOrCreateCard(ctx context.Context, db *gorm.DB, catalog CardCatalog, apiID string) (*models.Card, error) {
	var card models.Card
	err := db.WithContext(ctx).Where("api_id = ?", apiID).First(&card).Error
	if err == nil {
		return &card, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entry, err := catalog.ResolveCard(ctx, apiID)
	if err != nil {
		return nil, err
	}

	card = models.Card{
		APIID:         entry.APIID,
		Name:          entry.Name,
		SetName:       entry.SetName,
		SetSeries:     entry.SetSeries,
		CardNumber:    entry.CardNumber,
		Rarity:        entry.Rarity,
		Supertype:     entry.Supertype,
		ImageURL:      entry.ImageURL,
		SmallImageURL: entry.SmallImageURL,
		MarketPrice:   entry.MarketPrice,
		ReleaseDate:   entry.ReleaseDate,
	}
	if err := db.WithContext(ctx).Create(&card).Error; err != nil {
		// Another request may have created the row between lookup and insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if lookupErr := db.WithContext(ctx).Where("api_id = ?", apiID).First(&card).Error; lookupErr == nil {
				return &card, nil
			}
		}
		return nil, err
	}
	return &card, nil
}
