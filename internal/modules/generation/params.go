package generation

// ModelTier selects the pricing/capability class of model used for a request.
// The ordering matters: higher tiers are strictly more capable.
type ModelTier int

const (
	TierStandard ModelTier = iota
	TierHigh
)

func (t ModelTier) String() string {
	if t == TierHigh {
		return "high"
	}
	return "standard"
}

// highTierQuality is the quality threshold at and above which requests are
// routed to the high model tier and get the larger output budget.
const highTierQuality = 0.6

// SamplingParams are the provider-agnostic sampling knobs derived from the
// requested quality.
type SamplingParams struct {
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
	Tier            ModelTier
}

// ParamsForQuality maps a quality value in [0,1] to sampling parameters.
// Higher quality raises temperature (more varied phrasing) while narrowing
// top-p, and buys a bigger output budget on the high tier.
func ParamsForQuality(quality float64) SamplingParams {
	temperature := quality * 1.2
	if temperature > 0.9 {
		temperature = 0.9
	}
	topP := 1 - quality*0.2
	if topP < 0.8 {
		topP = 0.8
	}

	p := SamplingParams{
		Temperature:     temperature,
		TopP:            topP,
		MaxOutputTokens: 2048,
		Tier:            TierStandard,
	}
	if quality >= highTierQuality {
		p.MaxOutputTokens = 4096
		p.Tier = TierHigh
	}
	return p
}
