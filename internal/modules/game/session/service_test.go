package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bondfire/core/internal/database"
	"github.com/bondfire/core/internal/models"
	"github.com/bondfire/core/internal/modules/commerce/purchase"
	"github.com/bondfire/core/internal/modules/content/card"
	appconfigs "github.com/bondfire/core/internal/modules/system/configs"
)

type testFixture struct {
	db        *gorm.DB
	svc       *Service
	purchases *purchase.Service
	user      models.UserModel
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfgSvc := appconfigs.NewService(db)
	cardSvc := card.NewService(db)
	purchaseSvc := purchase.NewService(db, cfgSvc)

	u := models.UserModel{Email: "player@example.com", Username: "player", Role: models.RoleUser}
	require.NoError(t, db.Create(&u).Error)

	return &testFixture{
		db:        db,
		svc:       NewService(db, cardSvc, purchaseSvc, cfgSvc),
		purchases: purchaseSvc,
		user:      u,
	}
}

func (f *testFixture) seedCard(t *testing.T, text string, level int, tier models.CardTier, deckID *string) models.CardModel {
	t.Helper()
	c := models.CardModel{
		Content:           models.LangMap{"en": text},
		Type:              models.CardTypeQuestion,
		ConnectionLevel:   level,
		RelationshipTypes: models.StringSlice{models.RelationshipFriends},
		Tier:              tier,
		Status:            models.CardStatusActive,
		Source:            models.CardSourceManual,
		DeckID:            deckID,
	}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func TestStart(t *testing.T) {
	f := newFixture(t)

	sess, err := f.svc.Start(f.user.ID, &StartSessionDTO{RelationshipType: models.RelationshipFriends})
	require.NoError(t, err)
	assert.Equal(t, 1, sess.ConnectionLevel)
	assert.Equal(t, models.GameSessionActive, sess.Status)
	assert.Empty(t, sess.DrawnCardIDs)

	_, err = f.svc.Start(f.user.ID, &StartSessionDTO{RelationshipType: "enemies"})
	assert.ErrorIs(t, err, errInvalidRelationship)
}

func TestStart_PremiumDeckNeedsEntitlement(t *testing.T) {
	f := newFixture(t)

	deck := models.DeckModel{Name: "Deep Talks", Tier: models.TierPremium, PriceCents: 499, IsActive: true,
		RelationshipTypes: models.StringSlice{models.RelationshipFriends}}
	require.NoError(t, f.db.Create(&deck).Error)

	_, err := f.svc.Start(f.user.ID, &StartSessionDTO{RelationshipType: models.RelationshipFriends, DeckID: &deck.ID})
	assert.ErrorIs(t, err, errPremiumLocked)

	p, err := f.purchases.Create(f.user.ID, &purchase.CreatePurchaseDTO{DeckID: deck.ID})
	require.NoError(t, err)
	_, err = f.purchases.Complete(f.user.ID, p.ID, &purchase.CompletePurchaseDTO{Provider: "stripe", ProviderRef: "pi_1"})
	require.NoError(t, err)

	sess, err := f.svc.Start(f.user.ID, &StartSessionDTO{RelationshipType: models.RelationshipFriends, DeckID: &deck.ID})
	require.NoError(t, err)
	assert.Equal(t, deck.ID, *sess.DeckID)
}

func TestDraw_ExcludesDrawnCards(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedCard(t, "Only card in the pool.", 1, models.TierFree, nil)

	sess, err := f.svc.Start(f.user.ID, &StartSessionDTO{RelationshipType: models.RelationshipFriends})
	require.NoError(t, err)

	drawn, err := f.svc.Draw(f.user.ID, sess.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, drawn.ID)

	_, err = f.svc.Draw(f.user.ID, sess.ID, "en")
	assert.ErrorIs(t, err, errNoCardsAvailable)

	got, err := f.svc.cards.GetByID(seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TimesDrawn)
	assert.Equal(t, 1, got.DrawsByLanguage["en"])
}

func TestDraw_PremiumCardsHiddenFromFreeUsers(t *testing.T) {
	f := newFixture(t)
	f.seedCard(t, "Premium only.", 1, models.TierPremium, nil)

	sess, err := f.svc.Start(f.user.ID, &StartSessionDTO{RelationshipType: models.RelationshipFriends})
	require.NoError(t, err)

	_, err = f.svc.Draw(f.user.ID, sess.ID, "en")
	assert.ErrorIs(t, err, errNoCardsAvailable)

	require.NoError(t, f.db.Model(&f.user).Update("is_premium", true).Error)
	drawn, err := f.svc.Draw(f.user.ID, sess.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, drawn.Tier)
}

func TestComplete_AdvancesLevelAfterEnoughCompletions(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.seedCard(t, fmt.Sprintf("level one card %d", i), 1, models.TierFree, nil)
	}

	sess, err := f.svc.Start(f.user.ID, &StartSessionDTO{RelationshipType: models.RelationshipFriends})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		drawn, err := f.svc.Draw(f.user.ID, sess.ID, "en")
		require.NoError(t, err)
		sess, err = f.svc.Complete(f.user.ID, sess.ID, drawn.ID)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, sess.ConnectionLevel)
	assert.Equal(t, 3, sess.CompletedCount)
	assert.Equal(t, 3, sess.LevelProgress["1"])

	// The progress map must survive the round trip through the json column.
	reloaded, err := f.svc.GetByID(f.user.ID, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CountMap{"1": 3}, reloaded.LevelProgress)
	assert.Equal(t, 2, reloaded.ConnectionLevel)
}

func TestSkip_DoesNotAdvance(t *testing.T) {
	f := newFixture(t)
	f.seedCard(t, "A skippable card.", 1, models.TierFree, nil)

	sess, err := f.svc.Start(f.user.ID, &StartSessionDTO{RelationshipType: models.RelationshipFriends})
	require.NoError(t, err)
	drawn, err := f.svc.Draw(f.user.ID, sess.ID, "en")
	require.NoError(t, err)

	sess, err = f.svc.Skip(f.user.ID, sess.ID, drawn.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.SkippedCount)
	assert.Equal(t, 1, sess.ConnectionLevel)
	assert.Zero(t, sess.CompletedCount)
}

func TestComplete_RejectsUndrawnCard(t *testing.T) {
	f := newFixture(t)
	outsider := f.seedCard(t, "Never drawn.", 1, models.TierFree, nil)

	sess, err := f.svc.Start(f.user.ID, &StartSessionDTO{RelationshipType: models.RelationshipFriends})
	require.NoError(t, err)

	_, err = f.svc.Complete(f.user.ID, sess.ID, outsider.ID)
	assert.ErrorIs(t, err, errCardNotInSession)
}

func TestFinish(t *testing.T) {
	f := newFixture(t)

	sess, err := f.svc.Start(f.user.ID, &StartSessionDTO{RelationshipType: models.RelationshipFriends})
	require.NoError(t, err)

	finished, err := f.svc.Finish(f.user.ID, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GameSessionFinished, finished.Status)
	assert.NotNil(t, finished.FinishedAt)

	_, err = f.svc.Finish(f.user.ID, sess.ID)
	assert.ErrorIs(t, err, errSessionNotActive)
	_, err = f.svc.Draw(f.user.ID, sess.ID, "en")
	assert.ErrorIs(t, err, errSessionNotActive)
}

func TestExpireStale(t *testing.T) {
	f := newFixture(t)

	stale, err := f.svc.Start(f.user.ID, &StartSessionDTO{RelationshipType: models.RelationshipFriends})
	require.NoError(t, err)
	fresh, err := f.svc.Start(f.user.ID, &StartSessionDTO{RelationshipType: models.RelationshipFriends})
	require.NoError(t, err)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, f.db.Model(&models.GameSessionModel{}).
		Where("id = ?", stale.ID).
		UpdateColumn("updated_at", old).Error)

	n, err := f.svc.ExpireStale()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := f.svc.GetByID(f.user.ID, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GameSessionFinished, got.Status)

	got, err = f.svc.GetByID(f.user.ID, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GameSessionActive, got.Status)
}
