package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(0, 10, "question", 3, []string{"friends", "couple"}, []string{"en", "es"}, 0.85, nil)

	assert.Contains(t, prompt, "Generate 10 cards")
	assert.Contains(t, prompt, "question")
	assert.Contains(t, prompt, "Connection level: 3 of 4")
	assert.Contains(t, prompt, "deep and reflective")
	assert.Contains(t, prompt, "friends, couple")
	assert.Contains(t, prompt, "en, es")
	assert.Contains(t, prompt, "JSON array only")
}

func TestBuildPromptAvoidSection(t *testing.T) {
	first := BuildPrompt(0, 10, "question", 2, []string{"friends"}, []string{"en"}, 0.5, nil)
	assert.NotContains(t, first, "already produced")

	later := BuildPrompt(1, 10, "question", 2, []string{"friends"}, []string{"en"}, 0.5,
		[]string{"What made you laugh this week?"})
	assert.Contains(t, later, "already produced")
	assert.Contains(t, later, "What made you laugh this week?")
}

func TestTypeDistribution(t *testing.T) {
	tests := []struct {
		count    int
		expected map[string]int
	}{
		{1, map[string]int{"question": 1}},
		{2, map[string]int{"question": 2}},
		{3, map[string]int{"question": 2, "challenge": 1}},
		{5, map[string]int{"question": 3, "challenge": 2}},
		{10, map[string]int{"question": 5, "challenge": 2, "scenario": 2, "connection": 1, "wild": 0}},
		{20, map[string]int{"question": 8, "challenge": 4, "scenario": 4, "connection": 3, "wild": 1}},
	}
	for _, tt := range tests {
		got := map[string]int{}
		total := 0
		for _, share := range typeDistribution(tt.count) {
			got[share.cardType] = share.count
			total += share.count
		}
		assert.Equal(t, tt.expected, got, "count %d", tt.count)
		assert.Equal(t, tt.count, total, "count %d", tt.count)
	}
}

func TestBuildPromptMixedTypes(t *testing.T) {
	prompt := BuildPrompt(0, 10, "", 2, []string{"friends"}, []string{"en"}, 0.5, nil)

	assert.Contains(t, prompt, "Card type mix for this batch:")
	assert.Contains(t, prompt, "5 question cards")
	assert.Contains(t, prompt, "2 challenge cards")
	assert.NotContains(t, prompt, "0 wild cards")
	assert.Contains(t, prompt, `"type" field`)
	assert.Contains(t, prompt, `{"type": "question", "content"`)

	single := BuildPrompt(0, 10, "question", 2, []string{"friends"}, []string{"en"}, 0.5, nil)
	assert.NotContains(t, single, "Card type mix")
	assert.NotContains(t, single, `"type" field`)
}

func TestQualityGuidanceTiers(t *testing.T) {
	top := qualityGuidance(0.85)
	good := qualityGuidance(0.65)
	plain := qualityGuidance(0.45)
	basic := qualityGuidance(0.2)

	for _, pair := range [][2]string{{top, good}, {good, plain}, {plain, basic}} {
		assert.NotEqual(t, pair[0], pair[1])
	}
	assert.Contains(t, top, "exceptional")
	assert.Contains(t, basic, "simple")
}

func TestBuildPromptQualityChangesInstructions(t *testing.T) {
	high := BuildPrompt(0, 5, "challenge", 1, []string{"friends"}, []string{"en"}, 0.9, nil)
	low := BuildPrompt(0, 5, "challenge", 1, []string{"friends"}, []string{"en"}, 0.1, nil)

	assert.NotEqual(t, high, low)
	assert.True(t, strings.Contains(high, "exceptional"))
	assert.False(t, strings.Contains(low, "exceptional"))
}
