package deck

import (
	"errors"

	"github.com/bondfire/core/internal/models"
)

type CreateDeckDTO struct {
	Name              string          `json:"name" binding:"required"`
	Description       string          `json:"description"`
	RelationshipTypes []string        `json:"relationship_types" binding:"required"`
	Tier              models.CardTier `json:"tier"`
	PriceCents        int             `json:"price_cents"`
}

type UpdateDeckDTO struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	RelationshipTypes *[]string        `json:"relationship_types"`
	Tier              *models.CardTier `json:"tier"`
	PriceCents        *int             `json:"price_cents"`
	IsActive          *bool            `json:"is_active"`
}

var errInvalidRelationship = errors.New("invalid relationship type")
