package models

// DeckModel groups cards into a purchasable collection.
type DeckModel struct {
	Base
	Name              string      `json:"name"               gorm:"not null"`
	Description       string      `json:"description"`
	RelationshipTypes StringSlice `json:"relationship_types" gorm:"type:json;serializer:json"`
	Tier              CardTier    `json:"tier"               gorm:"index;default:free"`
	PriceCents        int         `json:"price_cents"        gorm:"default:0"`
	IsActive          bool        `json:"is_active"          gorm:"index"`

	// Denormalized card counts, maintained by the deck service.
	CardCount        int `json:"card_count"         gorm:"default:0"`
	FreeCardCount    int `json:"free_card_count"    gorm:"default:0"`
	PremiumCardCount int `json:"premium_card_count" gorm:"default:0"`
}

func (DeckModel) TableName() string { return "decks" }
