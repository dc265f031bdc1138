package deck

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
	"github.com/bondfire/core/internal/pkg/pagination"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db), db
}

func TestCreate_DefaultsToActiveFreeDeck(t *testing.T) {
	svc, _ := newTestService(t)

	d, err := svc.Create(&CreateDeckDTO{
		Name:              "Icebreakers",
		RelationshipTypes: []string{models.RelationshipFriends},
	})
	require.NoError(t, err)
	assert.True(t, d.IsActive)
	assert.Equal(t, models.TierFree, d.Tier)
}

func TestInactiveDeckStaysInactive(t *testing.T) {
	svc, db := newTestService(t)

	d := models.DeckModel{
		Name:              "Drafted",
		Tier:              models.TierPremium,
		IsActive:          false,
		RelationshipTypes: models.StringSlice{models.RelationshipFriends},
	}
	require.NoError(t, db.Create(&d).Error)

	got, err := svc.GetByID(d.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	decks, _, err := svc.List(pagination.Query{Page: 1, Size: 10}, "", true)
	require.NoError(t, err)
	assert.Empty(t, decks)
}

func TestUpdate_RelationshipTypesRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	d, err := svc.Create(&CreateDeckDTO{
		Name:              "Icebreakers",
		RelationshipTypes: []string{models.RelationshipFriends},
	})
	require.NoError(t, err)

	next := []string{models.RelationshipFamily, models.RelationshipCouple}
	updated, err := svc.Update(d.ID, &UpdateDeckDTO{RelationshipTypes: &next})
	require.NoError(t, err)
	assert.Equal(t, models.StringSlice(next), updated.RelationshipTypes)

	bad := []string{"strangers on a train"}
	_, err = svc.Update(d.ID, &UpdateDeckDTO{RelationshipTypes: &bad})
	assert.ErrorIs(t, err, errInvalidRelationship)
}

func TestRefreshCardCounts(t *testing.T) {
	svc, db := newTestService(t)

	d, err := svc.Create(&CreateDeckDTO{
		Name:              "Deep Talks",
		Tier:              models.TierPremium,
		RelationshipTypes: []string{models.RelationshipCouple},
	})
	require.NoError(t, err)

	mk := func(tier models.CardTier, status models.CardStatus) {
		c := models.CardModel{
			Content:           models.LangMap{"en": fmt.Sprintf("card %s %s", tier, status)},
			Type:              models.CardTypeQuestion,
			ConnectionLevel:   1,
			RelationshipTypes: models.StringSlice{models.RelationshipCouple},
			Tier:              tier,
			Status:            status,
			Source:            models.CardSourceManual,
			DeckID:            &d.ID,
		}
		require.NoError(t, db.Create(&c).Error)
	}
	mk(models.TierFree, models.CardStatusActive)
	mk(models.TierPremium, models.CardStatusActive)
	mk(models.TierPremium, models.CardStatusReview)

	require.NoError(t, svc.RefreshCardCounts(d.ID))

	got, err := svc.GetByID(d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CardCount)
	assert.Equal(t, 1, got.FreeCardCount)
	assert.Equal(t, 1, got.PremiumCardCount)
}
