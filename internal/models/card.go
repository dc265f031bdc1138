package models

// CardType classifies how a card is played.
type CardType string

const (
	CardTypeQuestion   CardType = "question"
	CardTypeChallenge  CardType = "challenge"
	CardTypeScenario   CardType = "scenario"
	CardTypeConnection CardType = "connection"
	CardTypeWild       CardType = "wild"
)

// ValidCardType reports whether t is one of the playable card types.
func ValidCardType(t CardType) bool {
	switch t {
	case CardTypeQuestion, CardTypeChallenge, CardTypeScenario, CardTypeConnection, CardTypeWild:
		return true
	}
	return false
}

// CardTier is the monetization classification of a card or deck.
type CardTier string

const (
	TierFree    CardTier = "free"
	TierPremium CardTier = "premium"
)

// CardStatus is the lifecycle state of a card.
// AI-generated cards always start in review and are promoted (or archived)
// only through the human review endpoints.
type CardStatus string

const (
	CardStatusReview   CardStatus = "review"
	CardStatusActive   CardStatus = "active"
	CardStatusArchived CardStatus = "archived"
)

// CardSource records how a card came into existence.
type CardSource string

const (
	CardSourceManual       CardSource = "manual"
	CardSourceAIGeneration CardSource = "ai_generation"
)

// Relationship types supported by the game.
const (
	RelationshipFriends    = "friends"
	RelationshipCouple     = "couple"
	RelationshipFamily     = "family"
	RelationshipColleagues = "colleagues"
	RelationshipStrangers  = "strangers"
)

// RelationshipTypes lists every supported relationship type.
func RelationshipTypes() []string {
	return []string{
		RelationshipFriends,
		RelationshipCouple,
		RelationshipFamily,
		RelationshipColleagues,
		RelationshipStrangers,
	}
}

// ValidRelationshipType reports whether rt is a known relationship type.
func ValidRelationshipType(rt string) bool {
	switch rt {
	case RelationshipFriends, RelationshipCouple, RelationshipFamily,
		RelationshipColleagues, RelationshipStrangers:
		return true
	}
	return false
}

const (
	MinConnectionLevel = 1
	MaxConnectionLevel = 4
)

// CardModel is a single playable content card.
type CardModel struct {
	Base
	Content           LangMap     `json:"content"            gorm:"type:json;serializer:json"`
	Type              CardType    `json:"type"               gorm:"index;not null"`
	ConnectionLevel   int         `json:"connection_level"   gorm:"index;not null"`
	RelationshipTypes StringSlice `json:"relationship_types" gorm:"type:json;serializer:json"`
	Tier              CardTier    `json:"tier"               gorm:"index;default:free"`
	Quality           float64     `json:"quality"`
	Status            CardStatus  `json:"status"             gorm:"index;default:review"`
	Source            CardSource  `json:"source"             gorm:"default:manual"`
	DeckID            *string     `json:"deck_id"            gorm:"index"`

	// Usage statistics, all zero at creation.
	TimesDrawn      int      `json:"times_drawn"       gorm:"default:0"`
	TimesCompleted  int      `json:"times_completed"   gorm:"default:0"`
	TimesSkipped    int      `json:"times_skipped"     gorm:"default:0"`
	DrawsByLanguage CountMap `json:"draws_by_language" gorm:"type:json;serializer:json"`
}

func (CardModel) TableName() string { return "cards" }

// PrimaryText returns the English text when present, otherwise any entry.
func (c CardModel) PrimaryText() string {
	if text, ok := c.Content["en"]; ok && text != "" {
		return text
	}
	for _, text := range c.Content {
		if text != "" {
			return text
		}
	}
	return ""
}

// SkipRate is the fraction of draws that ended in a skip.
func (c CardModel) SkipRate() float64 {
	if c.TimesDrawn == 0 {
		return 0
	}
	return float64(c.TimesSkipped) / float64(c.TimesDrawn)
}
