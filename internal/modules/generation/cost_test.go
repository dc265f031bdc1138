package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		quality   float64
		languages int
		expected  CostEstimate
	}{
		{
			name:      "standard tier single language",
			count:     5,
			quality:   0.5,
			languages: 1,
			expected: CostEstimate{
				InputTokens:  2500,
				OutputTokens: 750,
				InputCost:    0.0004,
				OutputCost:   0.0005,
				TotalCost:    0.0008,
				ModelTier:    "standard",
			},
		},
		{
			name:      "high tier multiplies output by languages",
			count:     10,
			quality:   0.8,
			languages: 2,
			expected: CostEstimate{
				InputTokens:  5000,
				OutputTokens: 4000,
				InputCost:    0.0125,
				OutputCost:   0.04,
				TotalCost:    0.0525,
				ModelTier:    "high",
			},
		},
		{
			name:      "zero languages treated as one",
			count:     1,
			quality:   0,
			languages: 0,
			expected: CostEstimate{
				InputTokens:  500,
				OutputTokens: 150,
				InputCost:    0.0001,
				OutputCost:   0.0001,
				TotalCost:    0.0002,
				ModelTier:    "standard",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EstimateCost(tt.count, tt.quality, tt.languages))
		})
	}
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.0004, round4(0.000375))
	assert.Equal(t, 0.0005, round4(0.00045))
	assert.Equal(t, 1.2346, round4(1.23456))
	assert.Equal(t, 0.0, round4(0.00004))
}
