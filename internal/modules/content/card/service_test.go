package card

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bondfire/core/internal/database"
	"github.com/bondfire/core/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func validCreateDTO() *CreateCardDTO {
	return &CreateCardDTO{
		Content:           map[string]string{"en": "What made you smile today?"},
		Type:              models.CardTypeQuestion,
		ConnectionLevel:   1,
		RelationshipTypes: []string{models.RelationshipFriends},
	}
}

func TestCreate_ManualCardGoesActive(t *testing.T) {
	svc := NewService(newTestDB(t))

	c, err := svc.Create(validCreateDTO())
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, models.CardStatusActive, c.Status)
	assert.Equal(t, models.CardSourceManual, c.Source)
	assert.Equal(t, models.TierFree, c.Tier)
	assert.Zero(t, c.TimesDrawn)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newTestDB(t))

	tests := []struct {
		name     string
		mutate   func(*CreateCardDTO)
		expected error
	}{
		{"bad type", func(d *CreateCardDTO) { d.Type = "haiku" }, errInvalidCardType},
		{"level too low", func(d *CreateCardDTO) { d.ConnectionLevel = 0 }, errInvalidLevel},
		{"level too high", func(d *CreateCardDTO) { d.ConnectionLevel = 5 }, errInvalidLevel},
		{"no relationships", func(d *CreateCardDTO) { d.RelationshipTypes = nil }, errInvalidRelationship},
		{"bad relationship", func(d *CreateCardDTO) { d.RelationshipTypes = []string{"pen pals"} }, errInvalidRelationship},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := validCreateDTO()
			tt.mutate(dto)
			_, err := svc.Create(dto)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestReviewFlow(t *testing.T) {
	svc := NewService(newTestDB(t))

	pending := &models.CardModel{
		Content:           models.LangMap{"en": "Name a tradition you want to start."},
		Type:              models.CardTypeQuestion,
		ConnectionLevel:   2,
		RelationshipTypes: models.StringSlice{models.RelationshipFamily},
		Status:            models.CardStatusReview,
		Source:            models.CardSourceAIGeneration,
	}
	require.NoError(t, svc.CreateBatch([]*models.CardModel{pending}))

	approved, err := svc.Review(pending.ID, "approve")
	require.NoError(t, err)
	assert.Equal(t, models.CardStatusActive, approved.Status)

	_, err = svc.Review(pending.ID, "approve")
	assert.ErrorIs(t, err, errNotInReview)

	archived := &models.CardModel{
		Content:           models.LangMap{"en": "Another pending card."},
		Type:              models.CardTypeQuestion,
		ConnectionLevel:   2,
		RelationshipTypes: models.StringSlice{models.RelationshipFamily},
		Status:            models.CardStatusReview,
		Source:            models.CardSourceAIGeneration,
	}
	require.NoError(t, svc.CreateBatch([]*models.CardModel{archived}))
	got, err := svc.Review(archived.ID, "archive")
	require.NoError(t, err)
	assert.Equal(t, models.CardStatusArchived, got.Status)
}

func TestRecentActive(t *testing.T) {
	svc := NewService(newTestDB(t))

	mk := func(text, rt string, level int, status models.CardStatus) {
		c := &models.CardModel{
			Content:           models.LangMap{"en": text},
			Type:              models.CardTypeQuestion,
			ConnectionLevel:   level,
			RelationshipTypes: models.StringSlice{rt},
			Status:            status,
			Source:            models.CardSourceManual,
		}
		require.NoError(t, svc.CreateBatch([]*models.CardModel{c}))
	}

	mk("match one", models.RelationshipFriends, 1, models.CardStatusActive)
	mk("match two", models.RelationshipFriends, 1, models.CardStatusReview)
	mk("wrong level", models.RelationshipFriends, 2, models.CardStatusActive)
	mk("wrong relationship", models.RelationshipCouple, 1, models.CardStatusActive)
	mk("archived", models.RelationshipFriends, 1, models.CardStatusArchived)

	cards, err := svc.RecentActive(1, models.RelationshipFriends, 100)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	for _, c := range cards {
		assert.NotEqual(t, models.CardStatusArchived, c.Status)
		assert.Equal(t, 1, c.ConnectionLevel)
	}

	limited, err := svc.RecentActive(1, models.RelationshipFriends, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordDrawAndOutcome(t *testing.T) {
	svc := NewService(newTestDB(t))

	c, err := svc.Create(validCreateDTO())
	require.NoError(t, err)

	require.NoError(t, svc.RecordDraw(c.ID, "en"))
	require.NoError(t, svc.RecordDraw(c.ID, "es"))
	require.NoError(t, svc.RecordOutcome(c.ID, true))
	require.NoError(t, svc.RecordOutcome(c.ID, false))

	got, err := svc.GetByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TimesDrawn)
	assert.Equal(t, 1, got.TimesCompleted)
	assert.Equal(t, 1, got.TimesSkipped)
	assert.Equal(t, 1, got.DrawsByLanguage["en"])
	assert.Equal(t, 1, got.DrawsByLanguage["es"])
	assert.InDelta(t, 0.5, got.SkipRate(), 1e-9)
}

func TestUpdate_ValidatesMergedFields(t *testing.T) {
	svc := NewService(newTestDB(t))

	c, err := svc.Create(validCreateDTO())
	require.NoError(t, err)

	badLevel := 9
	_, err = svc.Update(c.ID, &UpdateCardDTO{ConnectionLevel: &badLevel})
	assert.ErrorIs(t, err, errInvalidLevel)

	newTier := models.TierPremium
	updated, err := svc.Update(c.ID, &UpdateCardDTO{Tier: &newTier})
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, updated.Tier)
}

func TestUpdate_ContentRoundTrip(t *testing.T) {
	svc := NewService(newTestDB(t))

	c, err := svc.Create(validCreateDTO())
	require.NoError(t, err)

	content := map[string]string{"en": "What keeps you up at night?", "es": "Que te quita el sueno?"}
	rts := []string{models.RelationshipFamily, models.RelationshipCouple}
	_, err = svc.Update(c.ID, &UpdateCardDTO{Content: &content, RelationshipTypes: &rts})
	require.NoError(t, err)

	got, err := svc.GetByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LangMap(content), got.Content)
	assert.Equal(t, models.StringSlice(rts), got.RelationshipTypes)
}
