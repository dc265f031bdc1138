package configs

import (
	"encoding/json"
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

func TestGet_PersistsDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	cfg, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.Commerce.Currency)
	assert.Equal(t, 3, cfg.GameOptions.CompletionsToAdvance)
	assert.False(t, cfg.AI.EnableGeneration)

	var opt models.OptionModel
	require.NoError(t, db.Where("name = ?", configKey).First(&opt).Error)
	assert.Contains(t, opt.Value, "game_options")
}

func TestPatch_DeepMerge(t *testing.T) {
	svc := NewService(newTestDB(t))

	updated, err := svc.Patch(map[string]json.RawMessage{
		"game_options": json.RawMessage(`{"completions_to_advance": 5}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.GameOptions.CompletionsToAdvance)
	// Untouched siblings survive the merge.
	assert.Equal(t, 4, updated.GameOptions.MaxConnectionLevel)
	assert.Equal(t, 24, updated.GameOptions.SessionTTLHours)
}

func TestPatch_EnableGenerationRequiresProvider(t *testing.T) {
	svc := NewService(newTestDB(t))

	_, err := svc.Patch(map[string]json.RawMessage{
		"ai": json.RawMessage(`{"enable_generation": true}`),
	})
	assert.ErrorIs(t, err, errGenerationProviderNotEnabled)

	provider := `{"providers":[{"id":"p1","name":"Main","type":"OpenAI","api_key":"sk-test","enabled":true}],"enable_generation":true}`
	cfg, err := svc.Patch(map[string]json.RawMessage{
		"ai": json.RawMessage(provider),
	})
	require.NoError(t, err)
	assert.True(t, cfg.AI.EnableGeneration)
	require.Len(t, cfg.AI.Providers, 1)
	assert.Equal(t, "p1", cfg.AI.Providers[0].ID)
}

func TestInvalidate_ReloadsFromDatabase(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	_, err := svc.Patch(map[string]json.RawMessage{
		"commerce_options": json.RawMessage(`{"currency": "EUR"}`),
	})
	require.NoError(t, err)

	// A fresh service instance sharing the DB loads the patched value.
	other := NewService(db)
	cfg, err := other.Get()
	require.NoError(t, err)
	assert.Equal(t, "EUR", cfg.Commerce.Currency)

	svc.Invalidate()
	cfg, err = svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "EUR", cfg.Commerce.Currency)
}
