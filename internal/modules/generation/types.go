package generation

// GenerateDTO is the admin request for an AI generation run. Type is
// optional: when empty the run asks the model for a mixed card-type batch.
type GenerateDTO struct {
	Count             int      `json:"count" binding:"required,min=1,max=50"`
	Quality           *float64 `json:"quality" binding:"omitempty,min=0.1,max=1"`
	Type              string   `json:"type"`
	ConnectionLevel   int      `json:"connection_level" binding:"required"`
	RelationshipTypes []string `json:"relationship_types" binding:"required,min=1"`
	Languages         []string `json:"languages"`
	DeckID            *string  `json:"deck_id"`

	// RequestedBy is set server side from the authenticated user.
	RequestedBy string `json:"-"`
}

// EstimateDTO asks for a price quote without running anything.
type EstimateDTO struct {
	Count     int      `json:"count" binding:"required,min=1,max=50"`
	Quality   *float64 `json:"quality" binding:"omitempty,min=0.1,max=1"`
	Languages []string `json:"languages"`
}

// BatchFailure records one batch that produced no cards.
type BatchFailure struct {
	Batch       int    `json:"batch"`
	Reason      string `json:"reason"`
	RateLimited bool   `json:"rate_limited"`
}

// Result summarizes a generation run. Accepted cards are persisted even when
// some batches failed. EstimatedCost quotes the originally requested count,
// not the accepted one.
type Result struct {
	Requested     int            `json:"requested"`
	Accepted      int            `json:"accepted"`
	Duplicates    int            `json:"duplicates"`
	Failures      []BatchFailure `json:"failures,omitempty"`
	CardIDs       []string       `json:"card_ids"`
	Model         string         `json:"model"`
	ModelTier     string         `json:"model_tier"`
	EstimatedCost CostEstimate   `json:"estimated_cost"`
}

// generatedCard is one element of the model's JSON array response. Type is
// only present on mixed-type runs.
type generatedCard struct {
	Content map[string]string `json:"content"`
	Type    string            `json:"type,omitempty"`
}
