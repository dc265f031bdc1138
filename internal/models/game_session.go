package models

import "time"

// GameSessionStatus is the lifecycle state of a play session.
type GameSessionStatus string

const (
	GameSessionActive   GameSessionStatus = "active"
	GameSessionFinished GameSessionStatus = "finished"
)

// GameSessionModel tracks one group's play-through: which cards were drawn,
// what happened to them, and how deep into the connection levels play has gone.
type GameSessionModel struct {
	Base
	UserID           string            `json:"user_id"           gorm:"index;not null"`
	DeckID           *string           `json:"deck_id"           gorm:"index"`
	RelationshipType string            `json:"relationship_type" gorm:"index;not null"`
	ConnectionLevel  int               `json:"connection_level"  gorm:"default:1"`
	Status           GameSessionStatus `json:"status"            gorm:"index;default:active"`
	DrawnCardIDs     StringSlice       `json:"drawn_card_ids"    gorm:"type:json;serializer:json"`
	CompletedCount   int               `json:"completed_count"   gorm:"default:0"`
	SkippedCount     int               `json:"skipped_count"     gorm:"default:0"`
	LevelProgress    CountMap          `json:"level_progress"    gorm:"type:json;serializer:json"`
	StartedAt        time.Time         `json:"started_at"`
	FinishedAt       *time.Time        `json:"finished_at"`
}

func (GameSessionModel) TableName() string { return "game_sessions" }
