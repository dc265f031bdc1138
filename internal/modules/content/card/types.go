package card

import (
	"errors"

	"github.com/bondfire/core/internal/models"
)

type CreateCardDTO struct {
	Content           map[string]string `json:"content" binding:"required"`
	Type              models.CardType   `json:"type" binding:"required"`
	ConnectionLevel   int               `json:"connection_level" binding:"required"`
	RelationshipTypes []string          `json:"relationship_types" binding:"required"`
	Tier              models.CardTier   `json:"tier"`
	DeckID            *string           `json:"deck_id"`
}

type UpdateCardDTO struct {
	Content           *map[string]string `json:"content"`
	Type              *models.CardType   `json:"type"`
	ConnectionLevel   *int               `json:"connection_level"`
	RelationshipTypes *[]string          `json:"relationship_types"`
	Tier              *models.CardTier   `json:"tier"`
	DeckID            *string            `json:"deck_id"`
}

// ReviewDTO decides the fate of a card sitting in the review queue.
type ReviewDTO struct {
	Action string `json:"action" binding:"required,oneof=approve archive"`
}

// ListFilter narrows card listings.
type ListFilter struct {
	Type             string
	ConnectionLevel  int
	RelationshipType string
	Tier             string
	Status           string
	Source           string
	DeckID           string
}

var (
	errInvalidCardType     = errors.New("invalid card type")
	errInvalidLevel        = errors.New("connection level out of range")
	errInvalidRelationship = errors.New("invalid relationship type")
	errNotInReview         = errors.New("card is not in review")
)
