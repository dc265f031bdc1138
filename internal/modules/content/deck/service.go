package deck

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/bondfire/core/internal/models"
	"github.com/bondfire/core/internal/pkg/pagination"
	"github.com/bondfire/core/internal/pkg/response"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func validateRelationships(relationships []string) error {
	if len(relationships) == 0 {
		return errInvalidRelationship
	}
	for _, rt := range relationships {
		if !models.ValidRelationshipType(rt) {
			return errInvalidRelationship
		}
	}
	return nil
}

func (s *Service) Create(dto *CreateDeckDTO) (*models.DeckModel, error) {
	if err := validateRelationships(dto.RelationshipTypes); err != nil {
		return nil, err
	}
	tier := dto.Tier
	if tier == "" {
		tier = models.TierFree
	}
	d := models.DeckModel{
		Name:              dto.Name,
		Description:       dto.Description,
		RelationshipTypes: models.StringSlice(dto.RelationshipTypes),
		Tier:              tier,
		PriceCents:        dto.PriceCents,
		IsActive:          true,
	}
	return &d, s.db.Create(&d).Error
}

func (s *Service) GetByID(id string) (*models.DeckModel, error) {
	var d models.DeckModel
	if err := s.db.First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (s *Service) List(q pagination.Query, relationshipType string, activeOnly bool) ([]models.DeckModel, response.Pagination, error) {
	var decks []models.DeckModel
	query := s.db.Model(&models.DeckModel{})
	if relationshipType != "" {
		query = query.Where("relationship_types LIKE ?", "%\""+relationshipType+"\"%")
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	p, err := pagination.Paginate(query.Order("created_at DESC"), q, &decks)
	return decks, p, err
}

func (s *Service) Update(id string, dto *UpdateDeckDTO) (*models.DeckModel, error) {
	d, err := s.GetByID(id)
	if err != nil || d == nil {
		return d, err
	}
	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.RelationshipTypes != nil {
		if err := validateRelationships(*dto.RelationshipTypes); err != nil {
			return nil, err
		}
		// Map-form Updates bypass the json serializer, so encode by hand.
		encoded, err := json.Marshal(models.StringSlice(*dto.RelationshipTypes))
		if err != nil {
			return nil, err
		}
		updates["relationship_types"] = string(encoded)
	}
	if dto.Tier != nil {
		updates["tier"] = *dto.Tier
	}
	if dto.PriceCents != nil {
		updates["price_cents"] = *dto.PriceCents
	}
	if dto.IsActive != nil {
		updates["is_active"] = *dto.IsActive
	}
	if len(updates) == 0 {
		return d, nil
	}
	if err := s.db.Model(d).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) error {
	return s.db.Delete(&models.DeckModel{}, "id = ?", id).Error
}

// RefreshCardCounts recomputes the denormalized card counters from the cards
// table. Called after generation writes or card review decisions.
func (s *Service) RefreshCardCounts(deckID string) error {
	var total, free, premium int64
	base := s.db.Model(&models.CardModel{}).
		Where("deck_id = ?", deckID).
		Where("status = ?", models.CardStatusActive)

	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return err
	}
	if err := base.Session(&gorm.Session{}).Where("tier = ?", models.TierFree).Count(&free).Error; err != nil {
		return err
	}
	if err := base.Session(&gorm.Session{}).Where("tier = ?", models.TierPremium).Count(&premium).Error; err != nil {
		return err
	}

	return s.db.Model(&models.DeckModel{}).Where("id = ?", deckID).Updates(map[string]interface{}{
		"card_count":         total,
		"free_card_count":    free,
		"premium_card_count": premium,
	}).Error
}
