package generation

import "math"

// Per-million-token rates in USD by model tier.
const (
	standardInputRate  = 0.15
	standardOutputRate = 0.60
	highInputRate      = 2.50
	highOutputRate     = 10.00
)

// Token budget heuristics used by the estimator. Input covers the prompt and
// corpus excerpts per card, output covers the generated card text per
// language.
const (
	inputTokensPerCard      = 500
	outputTokensPerCardHigh = 200
	outputTokensPerCardLow  = 150
)

// CostEstimate is a pre-flight price quote for a generation request.
type CostEstimate struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	InputCost    float64 `json:"input_cost"`
	OutputCost   float64 `json:"output_cost"`
	TotalCost    float64 `json:"total_cost"`
	ModelTier    string  `json:"model_tier"`
}

// EstimateCost quotes a generation request before it runs. Quality drives
// both the per-card output budget and the model tier rates.
func EstimateCost(count int, quality float64, languageCount int) CostEstimate {
	if languageCount < 1 {
		languageCount = 1
	}
	perCardOut := outputTokensPerCardLow
	inputRate, outputRate := standardInputRate, standardOutputRate
	tier := TierStandard
	if quality >= highTierQuality {
		perCardOut = outputTokensPerCardHigh
		inputRate, outputRate = highInputRate, highOutputRate
		tier = TierHigh
	}

	inputTokens := count * inputTokensPerCard
	outputTokens := count * perCardOut * languageCount

	// Round the parts for display but total from the raw sum, so the
	// total never drifts by a rounding step.
	inputCost := float64(inputTokens) / 1_000_000 * inputRate
	outputCost := float64(outputTokens) / 1_000_000 * outputRate

	return CostEstimate{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		InputCost:    round4(inputCost),
		OutputCost:   round4(outputCost),
		TotalCost:    round4(inputCost + outputCost),
		ModelTier:    tier.String(),
	}
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
