package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"

	appcfg "github.com/bondfire/core/internal/config"
)

// CallOptions carries the sampling parameters for one model call. Providers
// reached over the chat completions API honor all of them; SDK backed
// providers honor the output token limit.
type CallOptions struct {
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
}

// ModelClient is the model call surface the orchestrator depends on. Tests
// substitute a stub.
type ModelClient interface {
	Generate(ctx context.Context, systemPrompt, prompt string, opts CallOptions) (string, error)
	ModelID() string
}

type providerClient struct {
	provider *appcfg.AIProvider
}

// NewProviderClient resolves a model client from the AI config. The
// assignment picks a provider by ID and may override its model; with no
// assignment the first enabled provider wins.
func NewProviderClient(cfg appcfg.AIConfig, assignment *appcfg.AIModelAssignment) (ModelClient, error) {
	provider := selectProvider(cfg, assignment)
	if provider == nil {
		return nil, errNoProvider
	}
	if strings.TrimSpace(provider.APIKey) == "" {
		return nil, errors.New("ai provider api key is empty")
	}
	return &providerClient{provider: provider}, nil
}

func (c *providerClient) ModelID() string {
	model := strings.TrimSpace(c.provider.DefaultModel)
	if model != "" {
		return model
	}
	if isAnthropicProviderType(c.provider.Type) {
		return "claude-haiku-4-5-20251001"
	}
	return "gpt-4o-mini"
}

func (c *providerClient) Generate(ctx context.Context, systemPrompt, prompt string, opts CallOptions) (string, error) {
	if isOpenAICompatibleProviderType(c.provider.Type) || isOpenRouterProviderType(c.provider.Type) {
		return c.callChatCompletions(ctx, systemPrompt, prompt, opts)
	}
	return c.callSDK(ctx, systemPrompt, prompt, opts)
}

// callChatCompletions talks to any OpenAI style endpoint directly. This path
// has full control over the request body, so it carries the sampling
// parameters the SDK path cannot express.
func (c *providerClient) callChatCompletions(ctx context.Context, systemPrompt, prompt string, opts CallOptions) (string, error) {
	endpoint := normalizeCompatibleEndpoint(c.provider.Endpoint, isOpenRouterProviderType(c.provider.Type))

	messages := make([]map[string]string, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, map[string]string{"role": "system", "content": systemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	body, _ := json.Marshal(map[string]interface{}{
		"model":       c.ModelID(),
		"messages":    messages,
		"temperature": opts.Temperature,
		"top_p":       opts.TopP,
		"max_tokens":  opts.MaxOutputTokens,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Kind: KindFatal, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.provider.APIKey))
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", &ClientError{Kind: KindTransient, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ClientError{Kind: KindTransient, Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", &ClientError{
			Kind:   ClassifyStatus(resp.StatusCode),
			Status: resp.StatusCode,
			Err:    fmt.Errorf("provider error: %s", strings.TrimSpace(string(respBody))),
		}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &ClientError{Kind: KindFatal, Status: resp.StatusCode, Err: err}
	}
	if result.Error != nil && strings.TrimSpace(result.Error.Message) != "" {
		return "", &ClientError{Kind: KindFatal, Status: resp.StatusCode, Err: errors.New(result.Error.Message)}
	}
	if len(result.Choices) == 0 {
		return "", &ClientError{Kind: KindTransient, Status: resp.StatusCode, Err: errors.New("empty response from model")}
	}
	return result.Choices[0].Message.Content, nil
}

func (c *providerClient) callSDK(ctx context.Context, systemPrompt, prompt string, opts CallOptions) (string, error) {
	model, err := c.buildLanguageModel()
	if err != nil {
		return "", &ClientError{Kind: KindFatal, Err: err}
	}

	messages := make([]jetapi.Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, &jetapi.SystemMessage{Content: systemPrompt})
	}
	messages = append(messages, &jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)})

	resp, err := jetai.GenerateText(
		ctx,
		messages,
		jetai.WithModel(model),
		jetai.WithMaxOutputTokens(opts.MaxOutputTokens),
	)
	if err != nil {
		return "", &ClientError{Kind: KindTransient, Err: err}
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.(*jetapi.TextBlock); ok {
			text.WriteString(tb.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", &ClientError{Kind: KindTransient, Err: errors.New("empty response from model")}
	}
	return text.String(), nil
}

func (c *providerClient) buildLanguageModel() (jetapi.LanguageModel, error) {
	apiKey := strings.TrimSpace(c.provider.APIKey)
	endpoint := strings.TrimSpace(c.provider.Endpoint)

	if isAnthropicProviderType(c.provider.Type) {
		opts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
		}
		if endpoint != "" {
			opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
		}
		client := anthropicclient.NewClient(opts...)
		return jetanthropic.NewLanguageModel(c.ModelID(), jetanthropic.WithClient(client)), nil
	}

	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
	}
	if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}
	client := openaiclient.NewClient(opts...)
	return jetopenai.NewLanguageModel(c.ModelID(), jetopenai.WithClient(client)), nil
}

func selectProvider(cfg appcfg.AIConfig, assignment *appcfg.AIModelAssignment) *appcfg.AIProvider {
	var providerID, overrideModel string
	if assignment != nil {
		providerID = strings.TrimSpace(assignment.ProviderID)
		overrideModel = strings.TrimSpace(assignment.Model)
	}

	pick := func(provider appcfg.AIProvider) *appcfg.AIProvider {
		selected := provider
		if overrideModel != "" {
			selected.DefaultModel = overrideModel
		}
		return &selected
	}

	if providerID != "" {
		for _, provider := range cfg.Providers {
			if provider.Enabled && strings.TrimSpace(provider.ID) == providerID {
				return pick(provider)
			}
		}
	}
	for _, provider := range cfg.Providers {
		if provider.Enabled {
			return pick(provider)
		}
	}
	return nil
}

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "-")
	return t
}

func isOpenAICompatibleProviderType(raw string) bool {
	t := normalizeProviderType(raw)
	return t == "openai-compatible" || t == "openaicompatible"
}

func isAnthropicProviderType(raw string) bool {
	return normalizeProviderType(raw) == "anthropic"
}

func isOpenRouterProviderType(raw string) bool {
	return normalizeProviderType(raw) == "openrouter"
}

const openRouterEndpoint = "https://openrouter.ai/api"

// normalizeCompatibleEndpoint strips a trailing /v1 so the caller can append
// the full chat completions path.
func normalizeCompatibleEndpoint(raw string, openRouter bool) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		if openRouter {
			return openRouterEndpoint
		}
		return "https://api.openai.com"
	}

	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimSuffix(strings.TrimRight(base, "/"), "/v1")
	}
	path := strings.TrimRight(parsed.Path, "/")
	parsed.Path = strings.TrimSuffix(path, "/v1")
	return strings.TrimRight(parsed.String(), "/")
}

func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}
	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
