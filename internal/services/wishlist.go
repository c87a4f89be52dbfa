package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardvault/backend/internal/models"
)

// WishlistService is plain pass-through CRUD over wishlist entries. Its
// only tie to the core engine is Count, which feeds the collection summary.
type WishlistService struct {
	db      *gorm.DB
	catalog CardCatalog
}

func NewWishlistService(db *gorm.DB, catalog CardCatalog) *WishlistService {
	return &WishlistService{db: db, catalog: catalog}
}

func (s *WishlistService) Add(ctx context.Context, userID uuid.UUID, req models.AddToWishlistRequest) (*models.WishlistEntry, error) {
	priority := 1
	if req.Priority != nil {
		priority = *req.Priority
	}
	if priority < 1 || priority > 5 {
		return nil, fmt.Errorf("%w: priority must be between 1 and 5", models.ErrInvalidArgument)
	}

	card, err := resolveOrCreateCard(ctx, s.db, s.catalog, req.CardAPIID)
	if err != nil {
		return nil, err
	}

	entry := models.WishlistEntry{
		UserID:   userID,
		CardID:   card.ID,
		Priority: priority,
		MaxPrice: req.MaxPrice,
		Notes:    req.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: card already in wishlist", models.ErrInvalidArgument)
		}
		return nil, err
	}
	entry.Card = *card
	return &entry, nil
}

func (s *WishlistService) Update(ctx context.Context, entryID, userID uuid.UUID, req models.UpdateWishlistRequest) (*models.WishlistEntry, error) {
	var entry models.WishlistEntry
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: wishlist entry %s", models.ErrNotFound, entryID)
	}
	if err != nil {
		return nil, err
	}

	if req.Priority != nil {
		if *req.Priority < 1 || *req.Priority > 5 {
			return nil, fmt.Errorf("%w: priority must be between 1 and 5", models.ErrInvalidArgument)
		}
		entry.Priority = *req.Priority
	}
	if req.MaxPrice != nil {
		entry.MaxPrice = req.MaxPrice
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}

	if err := s.db.WithContext(ctx).Save(&entry).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Preload("Card").First(&entry, "id = ?", entry.ID).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *WishlistService) Remove(ctx context.Context, entryID, userID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&models.WishlistEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: wishlist entry %s", models.ErrNotFound, entryID)
	}
	return nil
}

// List returns the user's wishlist ordered by priority, highest first.
func (s *WishlistService) List(ctx context.Context, userID uuid.UUID) ([]models.WishlistEntry, error) {
	var entries []models.WishlistEntry
	err := s.db.WithContext(ctx).
		Preload("Card").
		Where("user_id = ?", userID).
		Order("priority DESC, created_at DESC").
		Find(&entries).Error
	return entries, err
}

func (s *WishlistService) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.WishlistEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
