package config

import (
	"encoding/json"
	"strings"
)

// FullConfig is the application config stored in the database
// (options table, key="configs"). It is patched at runtime through the
// admin API and cached in memory by the configs service.
type FullConfig struct {
	SEO          SEOConfig       `json:"seo"`
	URL          URLConfig       `json:"url"`
	GameOptions  GameOptions     `json:"game_options"`
	Commerce     CommerceOptions `json:"commerce_options"`
	AuthSecurity AuthSecurity    `json:"auth_security"`
	AI           AIConfig        `json:"ai"`
}

type SEOConfig struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

type URLConfig struct {
	WebURL    string `json:"web_url"`
	ServerURL string `json:"server_url"`
}

// GameOptions tunes session progression.
type GameOptions struct {
	CompletionsToAdvance int      `json:"completions_to_advance"`
	MaxConnectionLevel   int      `json:"max_connection_level"`
	SessionTTLHours      int      `json:"session_ttl_hours"`
	SupportedLanguages   []string `json:"supported_languages"`
}

type CommerceOptions struct {
	Enable   bool   `json:"enable"`
	Currency string `json:"currency"`
}

type AuthSecurity struct {
	DisableRegistration  bool `json:"disable_registration"`
	DisablePasswordLogin bool `json:"disable_password_login"`
}

// AIConfig holds the provider pool and the model assignment used for card
// generation.
type AIConfig struct {
	Providers []AIProvider `json:"providers"`
	// GenerationModel serves standard-tier requests. HighTierModel, when
	// set, serves requests whose quality crosses the high-tier threshold;
	// otherwise GenerationModel handles both.
	GenerationModel  *AIModelAssignment `json:"generation_model,omitempty"`
	HighTierModel    *AIModelAssignment `json:"high_tier_model,omitempty"`
	EnableGeneration bool               `json:"enable_generation"`
}

type AIModelAssignment struct {
	ProviderID string `json:"provider_id"`
	Model      string `json:"model"`
}

type AIProvider struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"` // OpenAI | OpenAI-Compatible | Anthropic | OpenRouter
	APIKey       string `json:"api_key"`
	Endpoint     string `json:"endpoint,omitempty"`
	DefaultModel string `json:"default_model"`
	Enabled      bool   `json:"enabled"`
}

func (a *AIModelAssignment) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProviderID      string `json:"provider_id"`
		ProviderIDCamel string `json:"providerId"`
		Model           string `json:"model"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	a.ProviderID = strings.TrimSpace(raw.ProviderID)
	if a.ProviderID == "" {
		a.ProviderID = strings.TrimSpace(raw.ProviderIDCamel)
	}
	a.Model = strings.TrimSpace(raw.Model)
	return nil
}

// DefaultFullConfig returns the config used before any admin customization.
func DefaultFullConfig() FullConfig {
	return FullConfig{
		SEO: SEOConfig{
			Title:       "Bondfire",
			Description: "Conversation cards for getting closer",
			Keywords:    []string{},
		},
		URL: URLConfig{
			ServerURL: "http://localhost:2333",
			WebURL:    "http://localhost:2323",
		},
		GameOptions: GameOptions{
			CompletionsToAdvance: 3,
			MaxConnectionLevel:   4,
			SessionTTLHours:      24,
			SupportedLanguages:   []string{"en"},
		},
		Commerce: CommerceOptions{
			Enable:   true,
			Currency: "USD",
		},
		AuthSecurity: AuthSecurity{
			DisableRegistration:  false,
			DisablePasswordLogin: false,
		},
		AI: AIConfig{
			Providers:        []AIProvider{},
			EnableGeneration: false,
		},
	}
}
