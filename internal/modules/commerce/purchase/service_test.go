package purchase

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
	appconfigs "github.com/bondfire/core/internal/modules/system/configs"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db, appconfigs.NewService(db)), db
}

func seedDeck(t *testing.T, db *gorm.DB, tier models.CardTier, active bool) models.DeckModel {
	t.Helper()
	d := models.DeckModel{
		Name:              "Test Deck",
		Tier:              tier,
		PriceCents:        499,
		IsActive:          active,
		RelationshipTypes: models.StringSlice{models.RelationshipFriends},
	}
	require.NoError(t, db.Create(&d).Error)
	return d
}

func TestCreate_FreeDeckNotPurchasable(t *testing.T) {
	svc, db := newTestService(t)
	deck := seedDeck(t, db, models.TierFree, true)

	_, err := svc.Create("user-1", &CreatePurchaseDTO{DeckID: deck.ID})
	assert.ErrorIs(t, err, errDeckNotPurchasable)
}

func TestCreate_InactiveDeckNotPurchasable(t *testing.T) {
	svc, db := newTestService(t)
	deck := seedDeck(t, db, models.TierPremium, false)

	_, err := svc.Create("user-1", &CreatePurchaseDTO{DeckID: deck.ID})
	assert.ErrorIs(t, err, errDeckNotPurchasable)
}

func TestCreate_UnknownDeck(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create("user-1", &CreatePurchaseDTO{DeckID: "missing"})
	assert.ErrorIs(t, err, errDeckNotFound)
}

func TestPurchaseLifecycle(t *testing.T) {
	svc, db := newTestService(t)
	deck := seedDeck(t, db, models.TierPremium, true)

	p, err := svc.Create("user-1", &CreatePurchaseDTO{DeckID: deck.ID})
	require.NoError(t, err)
	assert.Equal(t, models.PurchasePending, p.Status)
	assert.Equal(t, deck.PriceCents, p.AmountCents)
	assert.Equal(t, "USD", p.Currency)

	unlocked, err := svc.HasUnlocked("user-1", deck.ID)
	require.NoError(t, err)
	assert.False(t, unlocked, "pending purchase must not unlock the deck")

	done, err := svc.Complete("user-1", p.ID, &CompletePurchaseDTO{Provider: "stripe", ProviderRef: "pi_42"})
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseCompleted, done.Status)
	assert.Equal(t, "stripe", done.Provider)
	assert.Equal(t, "pi_42", done.ProviderRef)

	unlocked, err = svc.HasUnlocked("user-1", deck.ID)
	require.NoError(t, err)
	assert.True(t, unlocked)

	_, err = svc.Create("user-1", &CreatePurchaseDTO{DeckID: deck.ID})
	assert.ErrorIs(t, err, errAlreadyUnlocked)

	_, err = svc.Complete("user-1", p.ID, &CompletePurchaseDTO{Provider: "stripe", ProviderRef: "pi_43"})
	assert.ErrorIs(t, err, errNotPending)
}

func TestComplete_UnknownPurchase(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.Complete("user-1", "missing", &CompletePurchaseDTO{Provider: "stripe", ProviderRef: "pi_1"})
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestHasUnlocked_ScopedToUser(t *testing.T) {
	svc, db := newTestService(t)
	deck := seedDeck(t, db, models.TierPremium, true)

	p, err := svc.Create("user-1", &CreatePurchaseDTO{DeckID: deck.ID})
	require.NoError(t, err)
	_, err = svc.Complete("user-1", p.ID, &CompletePurchaseDTO{Provider: "stripe", ProviderRef: "pi_1"})
	require.NoError(t, err)

	unlocked, err := svc.HasUnlocked("user-2", deck.ID)
	require.NoError(t, err)
	assert.False(t, unlocked)
}
