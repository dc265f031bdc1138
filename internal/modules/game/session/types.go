package session

import "errors"

type StartSessionDTO struct {
	RelationshipType string  `json:"relationship_type" binding:"required"`
	DeckID           *string `json:"deck_id"`
}

type DrawDTO struct {
	Language string `json:"language"`
}

var (
	errInvalidRelationship = errors.New("invalid relationship type")
	errDeckNotFound        = errors.New("deck not found")
	errPremiumLocked       = errors.New("premium deck not unlocked")
	errSessionNotActive    = errors.New("session is not active")
	errNoCardsAvailable    = errors.New("no cards available")
	errCardNotInSession    = errors.New("card was not drawn in this session")
)
