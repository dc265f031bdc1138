package purchase

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bondfire/core/internal/models"
	appconfigs "github.com/bondfire/core/internal/modules/system/configs"
	"github.com/bondfire/core/internal/pkg/pagination"
	"github.com/bondfire/core/internal/pkg/response"
)

type Service struct {
	db     *gorm.DB
	cfgSvc *appconfigs.Service
}

func NewService(db *gorm.DB, cfgSvc *appconfigs.Service) *Service {
	return &Service{db: db, cfgSvc: cfgSvc}
}

// Create opens a pending purchase for a premium deck. Free decks need no
// purchase and premium decks cannot be bought twice.
func (s *Service) Create(userID string, dto *CreatePurchaseDTO) (*models.PurchaseModel, error) {
	var deck models.DeckModel
	if err := s.db.First(&deck, "id = ?", dto.DeckID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errDeckNotFound
		}
		return nil, err
	}
	if deck.Tier != models.TierPremium || !deck.IsActive {
		return nil, errDeckNotPurchasable
	}

	unlocked, err := s.HasUnlocked(userID, deck.ID)
	if err != nil {
		return nil, err
	}
	if unlocked {
		return nil, errAlreadyUnlocked
	}

	currency := "USD"
	if cfg, err := s.cfgSvc.Get(); err == nil && cfg.Commerce.Currency != "" {
		currency = cfg.Commerce.Currency
	}

	p := models.PurchaseModel{
		UserID:      userID,
		DeckID:      deck.ID,
		AmountCents: deck.PriceCents,
		Currency:    currency,
		Status:      models.PurchasePending,
	}
	return &p, s.db.Create(&p).Error
}

// Complete marks a pending purchase as paid. Payment verification against the
// provider happens upstream; this records the confirmation.
func (s *Service) Complete(userID, purchaseID string, dto *CompletePurchaseDTO) (*models.PurchaseModel, error) {
	var p models.PurchaseModel
	err := s.db.First(&p, "id = ? AND user_id = ?", purchaseID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.Status != models.PurchasePending {
		return nil, errNotPending
	}

	p.Status = models.PurchaseCompleted
	p.Provider = dto.Provider
	p.ProviderRef = dto.ProviderRef
	return &p, s.db.Model(&p).Updates(map[string]interface{}{
		"status":       models.PurchaseCompleted,
		"provider":     dto.Provider,
		"provider_ref": dto.ProviderRef,
	}).Error
}

func (s *Service) ListByUser(userID string, q pagination.Query) ([]models.PurchaseModel, response.Pagination, error) {
	var purchases []models.PurchaseModel
	query := s.db.Model(&models.PurchaseModel{}).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	p, err := pagination.Paginate(query, q, &purchases)
	return purchases, p, err
}

// HasUnlocked reports whether the user holds a completed purchase for the deck.
func (s *Service) HasUnlocked(userID, deckID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.PurchaseModel{}).
		Where("user_id = ? AND deck_id = ? AND status = ?", userID, deckID, models.PurchaseCompleted).
		Count(&count).Error
	return count > 0, err
}
