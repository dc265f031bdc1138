package session

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/bondfire/core/internal/models"
	"github.com/bondfire/core/internal/modules/commerce/purchase"
	"github.com/bondfire/core/internal/modules/content/card"
	appconfigs "github.com/bondfire/core/internal/modules/system/configs"
	"github.com/bondfire/core/internal/pkg/pagination"
	"github.com/bondfire/core/internal/pkg/response"
)

// drawCandidateLimit caps how many matching cards are loaded before the
// random pick. Keeps the draw portable across SQL dialects.
const drawCandidateLimit = 200

type Service struct {
	db        *gorm.DB
	cards     *card.Service
	purchases *purchase.Service
	cfgSvc    *appconfigs.Service
}

func NewService(db *gorm.DB, cards *card.Service, purchases *purchase.Service, cfgSvc *appconfigs.Service) *Service {
	return &Service{db: db, cards: cards, purchases: purchases, cfgSvc: cfgSvc}
}

func (s *Service) gameOptions() (completionsToAdvance, maxLevel int, ttl time.Duration) {
	completionsToAdvance, maxLevel, ttl = 3, models.MaxConnectionLevel, 24*time.Hour
	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return
	}
	if cfg.GameOptions.CompletionsToAdvance > 0 {
		completionsToAdvance = cfg.GameOptions.CompletionsToAdvance
	}
	if cfg.GameOptions.MaxConnectionLevel > 0 {
		maxLevel = cfg.GameOptions.MaxConnectionLevel
	}
	if cfg.GameOptions.SessionTTLHours > 0 {
		ttl = time.Duration(cfg.GameOptions.SessionTTLHours) * time.Hour
	}
	return
}

// Start opens a new session at connection level 1.
func (s *Service) Start(userID string, dto *StartSessionDTO) (*models.GameSessionModel, error) {
	if !models.ValidRelationshipType(dto.RelationshipType) {
		return nil, errInvalidRelationship
	}

	if dto.DeckID != nil {
		var deck models.DeckModel
		if err := s.db.First(&deck, "id = ?", *dto.DeckID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errDeckNotFound
			}
			return nil, err
		}
		if deck.Tier == models.TierPremium {
			entitled, err := s.isEntitled(userID, deck.ID)
			if err != nil {
				return nil, err
			}
			if !entitled {
				return nil, errPremiumLocked
			}
		}
	}

	sess := models.GameSessionModel{
		UserID:           userID,
		DeckID:           dto.DeckID,
		RelationshipType: dto.RelationshipType,
		ConnectionLevel:  models.MinConnectionLevel,
		Status:           models.GameSessionActive,
		DrawnCardIDs:     models.StringSlice{},
		LevelProgress:    models.CountMap{},
		StartedAt:        time.Now(),
	}
	return &sess, s.db.Create(&sess).Error
}

func (s *Service) isEntitled(userID, deckID string) (bool, error) {
	var u models.UserModel
	if err := s.db.Select("id, is_premium").First(&u, "id = ?", userID).Error; err == nil && u.IsPremium {
		return true, nil
	}
	return s.purchases.HasUnlocked(userID, deckID)
}

func (s *Service) GetByID(userID, id string) (*models.GameSessionModel, error) {
	var sess models.GameSessionModel
	err := s.db.First(&sess, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Service) ListByUser(userID string, q pagination.Query) ([]models.GameSessionModel, response.Pagination, error) {
	var sessions []models.GameSessionModel
	query := s.db.Model(&models.GameSessionModel{}).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	p, err := pagination.Paginate(query, q, &sessions)
	return sessions, p, err
}

// Draw picks a random active card matching the session's level and
// relationship type, excluding cards already drawn. Premium cards are only
// eligible when the user is entitled to them.
func (s *Service) Draw(userID, sessionID, language string) (*models.CardModel, error) {
	sess, err := s.GetByID(userID, sessionID)
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.Status != models.GameSessionActive {
		return nil, errSessionNotActive
	}
	if language == "" {
		language = "en"
	}

	query := s.db.Model(&models.CardModel{}).
		Where("status = ?", models.CardStatusActive).
		Where("connection_level = ?", sess.ConnectionLevel).
		Where("relationship_types LIKE ?", "%\""+sess.RelationshipType+"\"%")
	if sess.DeckID != nil {
		query = query.Where("deck_id = ?", *sess.DeckID)
	}
	if len(sess.DrawnCardIDs) > 0 {
		query = query.Where("id NOT IN ?", []string(sess.DrawnCardIDs))
	}

	entitled := true
	if sess.DeckID == nil {
		// Outside a purchased deck, premium cards need a premium account.
		var u models.UserModel
		if err := s.db.Select("id, is_premium").First(&u, "id = ?", userID).Error; err != nil || !u.IsPremium {
			entitled = false
		}
	}
	if !entitled {
		query = query.Where("tier = ?", models.TierFree)
	}

	var candidates []models.CardModel
	if err := query.Limit(drawCandidateLimit).Find(&candidates).Error; err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errNoCardsAvailable
	}

	picked := candidates[rand.IntN(len(candidates))]

	sess.DrawnCardIDs = append(sess.DrawnCardIDs, picked.ID)
	if err := s.db.Model(sess).Update("drawn_card_ids", sess.DrawnCardIDs).Error; err != nil {
		return nil, err
	}
	if err := s.cards.RecordDraw(picked.ID, language); err != nil {
		return nil, err
	}
	return &picked, nil
}

// Complete records a finished card and advances the connection level after
// enough completions at the current one.
func (s *Service) Complete(userID, sessionID, cardID string) (*models.GameSessionModel, error) {
	return s.resolveCard(userID, sessionID, cardID, true)
}

// Skip records a skipped card without affecting level progress.
func (s *Service) Skip(userID, sessionID, cardID string) (*models.GameSessionModel, error) {
	return s.resolveCard(userID, sessionID, cardID, false)
}

func (s *Service) resolveCard(userID, sessionID, cardID string, completed bool) (*models.GameSessionModel, error) {
	sess, err := s.GetByID(userID, sessionID)
	if err != nil || sess == nil {
		return sess, err
	}
	if sess.Status != models.GameSessionActive {
		return nil, errSessionNotActive
	}
	if !sess.DrawnCardIDs.Contains(cardID) {
		return nil, errCardNotInSession
	}

	updates := map[string]interface{}{}
	if completed {
		completionsToAdvance, maxLevel, _ := s.gameOptions()

		sess.CompletedCount++
		updates["completed_count"] = sess.CompletedCount

		if sess.LevelProgress == nil {
			sess.LevelProgress = models.CountMap{}
		}
		levelKey := strconv.Itoa(sess.ConnectionLevel)
		sess.LevelProgress[levelKey]++
		// Map-form Updates bypass the json serializer, so encode by hand.
		progress, err := json.Marshal(sess.LevelProgress)
		if err != nil {
			return nil, err
		}
		updates["level_progress"] = string(progress)

		if sess.LevelProgress[levelKey] >= completionsToAdvance && sess.ConnectionLevel < maxLevel {
			sess.ConnectionLevel++
			updates["connection_level"] = sess.ConnectionLevel
		}
	} else {
		sess.SkippedCount++
		updates["skipped_count"] = sess.SkippedCount
	}

	if err := s.db.Model(sess).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := s.cards.RecordOutcome(cardID, completed); err != nil {
		return nil, err
	}
	return sess, nil
}

// Finish closes the session.
func (s *Service) Finish(userID, sessionID string) (*models.GameSessionModel, error) {
	sess, err := s.GetByID(userID, sessionID)
	if err != nil || sess == nil {
		return sess, err
	}
	if sess.Status != models.GameSessionActive {
		return nil, errSessionNotActive
	}
	now := time.Now()
	sess.Status = models.GameSessionFinished
	sess.FinishedAt = &now
	return sess, s.db.Model(sess).Updates(map[string]interface{}{
		"status":      models.GameSessionFinished,
		"finished_at": now,
	}).Error
}

// ExpireStale finishes active sessions whose last update is older than the
// configured TTL. Run from the scheduler.
func (s *Service) ExpireStale() (int64, error) {
	_, _, ttl := s.gameOptions()
	cutoff := time.Now().Add(-ttl)
	res := s.db.Model(&models.GameSessionModel{}).
		Where("status = ?", models.GameSessionActive).
		Where("updated_at < ?", cutoff).
		Updates(map[string]interface{}{
			"status":      models.GameSessionFinished,
			"finished_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}
