package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsForQuality(t *testing.T) {
	tests := []struct {
		name     string
		quality  float64
		expected SamplingParams
	}{
		{
			name:    "mid quality stays on standard tier",
			quality: 0.5,
			expected: SamplingParams{
				Temperature:     0.6,
				TopP:            0.9,
				MaxOutputTokens: 2048,
				Tier:            TierStandard,
			},
		},
		{
			name:    "threshold flips to high tier",
			quality: 0.6,
			expected: SamplingParams{
				Temperature:     0.72,
				TopP:            0.88,
				MaxOutputTokens: 4096,
				Tier:            TierHigh,
			},
		},
		{
			name:    "top quality hits the caps",
			quality: 1,
			expected: SamplingParams{
				Temperature:     0.9,
				TopP:            0.8,
				MaxOutputTokens: 4096,
				Tier:            TierHigh,
			},
		},
		{
			name:    "zero quality",
			quality: 0,
			expected: SamplingParams{
				Temperature:     0,
				TopP:            1,
				MaxOutputTokens: 2048,
				Tier:            TierStandard,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParamsForQuality(tt.quality)
			assert.InDelta(t, tt.expected.Temperature, got.Temperature, 1e-9)
			assert.InDelta(t, tt.expected.TopP, got.TopP, 1e-9)
			assert.Equal(t, tt.expected.MaxOutputTokens, got.MaxOutputTokens)
			assert.Equal(t, tt.expected.Tier, got.Tier)
		})
	}
}

func TestModelTierString(t *testing.T) {
	assert.Equal(t, "standard", TierStandard.String())
	assert.Equal(t, "high", TierHigh.String())
}
