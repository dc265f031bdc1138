package card

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

func (s *Service) DB() *gorm.DB { return s.db }

func validateCardFields(cardType models.CardType, level int, relationships []string) error {
	if !models.ValidCardType(cardType) {
		return errInvalidCardType
	}
	if level < models.MinConnectionLevel || level > models.MaxConnectionLevel {
		return errInvalidLevel
	}
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

// Create inserts a manually authored card. Manual cards go live immediately.
func (s *Service) Create(dto *CreateCardDTO) (*models.CardModel, error) {
	if err := validateCardFields(dto.Type, dto.ConnectionLevel, dto.RelationshipTypes); err != nil {
		return nil, err
	}
	tier := dto.Tier
	if tier == "" {
		tier = models.TierFree
	}
	card := models.CardModel{
		Content:           models.LangMap(dto.Content),
		Type:              dto.Type,
		ConnectionLevel:   dto.ConnectionLevel,
		RelationshipTypes: models.StringSlice(dto.RelationshipTypes),
		Tier:              tier,
		Status:            models.CardStatusActive,
		Source:            models.CardSourceManual,
		DeckID:            dto.DeckID,
		DrawsByLanguage:   models.CountMap{},
	}
	return &card, s.db.Create(&card).Error
}

// CreateBatch inserts generated cards in a single transaction. The cards are
// expected to carry status, source and quality already.
func (s *Service) CreateBatch(cards []*models.CardModel) error {
	if len(cards) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, c := range cards {
			if err := tx.Create(c).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) GetByID(id string) (*models.CardModel, error) {
	var c models.CardModel
	if err := s.db.First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (s *Service) applyFilter(q *gorm.DB, f ListFilter) *gorm.DB {
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.ConnectionLevel != 0 {
		q = q.Where("connection_level = ?", f.ConnectionLevel)
	}
	if f.RelationshipType != "" {
		q = q.Where("relationship_types LIKE ?", "%\""+f.RelationshipType+"\"%")
	}
	if f.Tier != "" {
		q = q.Where("tier = ?", f.Tier)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	if f.DeckID != "" {
		q = q.Where("deck_id = ?", f.DeckID)
	}
	return q
}

func (s *Service) List(q pagination.Query, f ListFilter) ([]models.CardModel, response.Pagination, error) {
	var cards []models.CardModel
	query := s.applyFilter(s.db.Model(&models.CardModel{}), f).Order("created_at DESC")
	p, err := pagination.Paginate(query, q, &cards)
	return cards, p, err
}

func (s *Service) Update(id string, dto *UpdateCardDTO) (*models.CardModel, error) {
	c, err := s.GetByID(id)
	if err != nil || c == nil {
		return c, err
	}

	cardType := c.Type
	if dto.Type != nil {
		cardType = *dto.Type
	}
	level := c.ConnectionLevel
	if dto.ConnectionLevel != nil {
		level = *dto.ConnectionLevel
	}
	relationships := []string(c.RelationshipTypes)
	if dto.RelationshipTypes != nil {
		relationships = *dto.RelationshipTypes
	}
	if err := validateCardFields(cardType, level, relationships); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Content != nil {
		c.Content = models.LangMap(*dto.Content)
		encoded, err := jsonColumn(c.Content)
		if err != nil {
			return nil, err
		}
		updates["content"] = encoded
	}
	if dto.Type != nil {
		c.Type = cardType
		updates["type"] = cardType
	}
	if dto.ConnectionLevel != nil {
		c.ConnectionLevel = level
		updates["connection_level"] = level
	}
	if dto.RelationshipTypes != nil {
		c.RelationshipTypes = models.StringSlice(relationships)
		encoded, err := jsonColumn(c.RelationshipTypes)
		if err != nil {
			return nil, err
		}
		updates["relationship_types"] = encoded
	}
	if dto.Tier != nil {
		c.Tier = *dto.Tier
		updates["tier"] = *dto.Tier
	}
	if dto.DeckID != nil {
		c.DeckID = dto.DeckID
		updates["deck_id"] = *dto.DeckID
	}
	if len(updates) == 0 {
		return c, nil
	}
	return c, s.db.Model(c).Updates(updates).Error
}

func (s *Service) Delete(id string) error {
	return s.db.Delete(&models.CardModel{}, "id = ?", id).Error
}

// Review promotes or archives a card that is waiting for review.
func (s *Service) Review(id, action string) (*models.CardModel, error) {
	c, err := s.GetByID(id)
	if err != nil || c == nil {
		return c, err
	}
	if c.Status != models.CardStatusReview {
		return nil, errNotInReview
	}
	next := models.CardStatusActive
	if action == "archive" {
		next = models.CardStatusArchived
	}
	c.Status = next
	return c, s.db.Model(c).Update("status", next).Error
}

// ReviewQueue lists cards awaiting review, oldest first.
func (s *Service) ReviewQueue(q pagination.Query) ([]models.CardModel, response.Pagination, error) {
	var cards []models.CardModel
	query := s.db.Model(&models.CardModel{}).
		Where("status = ?", models.CardStatusReview).
		Order("created_at ASC")
	p, err := pagination.Paginate(query, q, &cards)
	return cards, p, err
}

// RecentActive returns the most recently created non-archived cards for the
// given level and relationship type, newest first, capped at limit. Used as
// the comparison corpus for duplicate detection.
func (s *Service) RecentActive(level int, relationshipType string, limit int) ([]models.CardModel, error) {
	var cards []models.CardModel
	err := s.db.Model(&models.CardModel{}).
		Where("connection_level = ?", level).
		Where("relationship_types LIKE ?", "%\""+relationshipType+"\"%").
		Where("status <> ?", models.CardStatusArchived).
		Order("created_at DESC").
		Limit(limit).
		Find(&cards).Error
	return cards, err
}

// RecordDraw bumps the draw counters for a card in the given language.
func (s *Service) RecordDraw(id, lang string) error {
	c, err := s.GetByID(id)
	if err != nil || c == nil {
		return err
	}
	if c.DrawsByLanguage == nil {
		c.DrawsByLanguage = models.CountMap{}
	}
	c.DrawsByLanguage[lang]++
	draws, err := jsonColumn(c.DrawsByLanguage)
	if err != nil {
		return err
	}
	return s.db.Model(c).Updates(map[string]interface{}{
		"times_drawn":       gorm.Expr("times_drawn + 1"),
		"draws_by_language": draws,
	}).Error
}

// jsonColumn encodes a value destined for a serializer:json column. Map-form
// Updates bypass gorm's field serializers, so the encoding has to happen here.
func jsonColumn(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RecordOutcome bumps the completion or skip counter for a drawn card.
func (s *Service) RecordOutcome(id string, completed bool) error {
	column := "times_skipped"
	if completed {
		column = "times_completed"
	}
	return s.db.Model(&models.CardModel{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}
