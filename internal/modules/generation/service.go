package generation

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	appcfg "github.com/bondfire/core/internal/config"
	"github.com/bondfire/core/internal/models"
	"github.com/bondfire/core/internal/pkg/taskqueue"
)

const (
	batchSize   = 10
	corpusLimit = 100

	maxCount   = 50
	minQuality = 0.1

	// Premium probability per accepted card, keyed off the quality tier.
	premiumBiasHigh = 0.7
	premiumBiasLow  = 0.2

	rateLimitBackoffBase = 2 * time.Second
	rateLimitBackoffMax  = 30 * time.Second

	// Inter-batch pacing: high tier runs are spaced out more generously,
	// and both tiers carry random jitter.
	pacingDelayStandard = 500 * time.Millisecond
	pacingDelayHigh     = 1500 * time.Millisecond
	pacingJitterMax     = 500 * time.Millisecond

	defaultQuality = 0.5

	// TaskTypeGenerate is the queue type for async generation runs.
	TaskTypeGenerate = "ai:generate_cards"
)

// CardStore is the card persistence surface the orchestrator needs.
type CardStore interface {
	RecentActive(level int, relationshipType string, limit int) ([]models.CardModel, error)
	CreateBatch(cards []*models.CardModel) error
}

// DeckStore resolves deck targets for generated cards.
type DeckStore interface {
	GetByID(id string) (*models.DeckModel, error)
	RefreshCardCounts(deckID string) error
}

// ConfigSource supplies the live application config.
type ConfigSource interface {
	Get() (*appcfg.FullConfig, error)
}

type Service struct {
	cards  CardStore
	decks  DeckStore
	cfgSvc ConfigSource
	tasks  *taskqueue.Service
	logger *zap.Logger

	// Seams for tests: client construction, backoff sleeps and the tier
	// bias coin flip.
	newClient func(cfg appcfg.AIConfig, assignment *appcfg.AIModelAssignment) (ModelClient, error)
	sleep     func(time.Duration)
	randFloat func() float64
}

func NewService(cards CardStore, decks DeckStore, cfgSvc ConfigSource, tasks *taskqueue.Service, logger *zap.Logger) *Service {
	return &Service{
		cards:     cards,
		decks:     decks,
		cfgSvc:    cfgSvc,
		tasks:     tasks,
		logger:    logger,
		newClient: NewProviderClient,
		sleep:     time.Sleep,
		randFloat: rand.Float64,
	}
}

func (s *Service) quality(q *float64) float64 {
	if q == nil {
		return defaultQuality
	}
	return *q
}

func (s *Service) validate(dto *GenerateDTO) error {
	if dto.Count < 1 || dto.Count > maxCount {
		return &ValidationError{Field: "count", Reason: fmt.Sprintf("must be between 1 and %d", maxCount)}
	}
	if dto.Quality != nil && (*dto.Quality < minQuality || *dto.Quality > 1) {
		return &ValidationError{Field: "quality", Reason: fmt.Sprintf("must be between %g and 1", minQuality)}
	}
	if dto.Type != "" && !models.ValidCardType(models.CardType(dto.Type)) {
		return &ValidationError{Field: "type", Reason: "unknown card type"}
	}
	if dto.ConnectionLevel < models.MinConnectionLevel || dto.ConnectionLevel > models.MaxConnectionLevel {
		return &ValidationError{Field: "connection_level", Reason: fmt.Sprintf("must be between %d and %d", models.MinConnectionLevel, models.MaxConnectionLevel)}
	}
	for _, rt := range dto.RelationshipTypes {
		if !models.ValidRelationshipType(rt) {
			return &ValidationError{Field: "relationship_types", Reason: "unknown relationship type: " + rt}
		}
	}
	if dto.DeckID != nil {
		deck, err := s.decks.GetByID(*dto.DeckID)
		if err != nil {
			return err
		}
		if deck == nil {
			return &ValidationError{Field: "deck_id", Reason: "deck not found"}
		}
	}
	return nil
}

// Estimate quotes a run without touching the provider.
func (s *Service) Estimate(dto *EstimateDTO) CostEstimate {
	languages := dto.Languages
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return EstimateCost(dto.Count, s.quality(dto.Quality), len(languages))
}

// Generate runs the full pipeline: batch the request, call the model, parse
// and dedupe each batch, then persist what survived. A batch failure never
// discards cards accepted from other batches.
func (s *Service) Generate(ctx context.Context, dto *GenerateDTO) (*Result, error) {
	if err := s.validate(dto); err != nil {
		return nil, err
	}

	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return nil, err
	}
	if !cfg.AI.EnableGeneration {
		return nil, &ValidationError{Field: "ai", Reason: "card generation is disabled"}
	}

	quality := s.quality(dto.Quality)
	params := ParamsForQuality(quality)

	assignment := cfg.AI.GenerationModel
	if params.Tier == TierHigh && cfg.AI.HighTierModel != nil {
		assignment = cfg.AI.HighTierModel
	}
	client, err := s.newClient(cfg.AI, assignment)
	if err != nil {
		return nil, err
	}

	languages := dto.Languages
	if len(languages) == 0 {
		languages = []string{"en"}
	}

	cache, corpusTexts, err := s.loadCorpus(dto.ConnectionLevel, dto.RelationshipTypes)
	if err != nil {
		return nil, err
	}

	premiumBias := premiumBiasLow
	if quality >= highTierQuality {
		premiumBias = premiumBiasHigh
	}

	result := &Result{
		Requested:     dto.Count,
		Model:         client.ModelID(),
		ModelTier:     params.Tier.String(),
		EstimatedCost: EstimateCost(dto.Count, quality, len(languages)),
	}

	var (
		accepted      []*models.CardModel
		acceptedTexts []string
		rateLimited   int
		lastErr       error
	)

	numBatches := (dto.Count + batchSize - 1) / batchSize
	for batch := 0; batch < numBatches; batch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batchCount := batchSize
		if remaining := dto.Count - batch*batchSize; remaining < batchSize {
			batchCount = remaining
		}

		prompt := BuildPrompt(batch, batchCount, dto.Type, dto.ConnectionLevel, dto.RelationshipTypes, languages, quality, acceptedTexts)
		raw, err := client.Generate(ctx, systemPrompt, prompt, CallOptions{
			Temperature:     params.Temperature,
			TopP:            params.TopP,
			MaxOutputTokens: params.MaxOutputTokens,
		})
		if err != nil {
			lastErr = err
			limited := IsRateLimited(err)
			if limited {
				rateLimited++
				s.sleep(rateLimitBackoff(rateLimited))
			}
			s.logger.Warn("generation batch failed",
				zap.Int("batch", batch),
				zap.Bool("rate_limited", limited),
				zap.Error(err))
			result.Failures = append(result.Failures, BatchFailure{
				Batch: batch, Reason: err.Error(), RateLimited: limited,
			})
			continue
		}

		candidates, err := parseCards(raw)
		if err != nil {
			perr := &ParseError{Batch: batch, Err: err}
			lastErr = perr
			s.logger.Warn("generation batch unparseable", zap.Int("batch", batch), zap.Error(err))
			result.Failures = append(result.Failures, BatchFailure{Batch: batch, Reason: perr.Error()})
			continue
		}

		var batchTexts []string
		for _, cand := range candidates {
			text := primaryText(cand.Content, languages)
			if strings.TrimSpace(text) == "" {
				continue
			}
			if s.isDuplicate(text, cache, corpusTexts, batchTexts) {
				result.Duplicates++
				continue
			}
			// Only accepted content enters the hash cache.
			cache.Add(text)
			batchTexts = append(batchTexts, text)
			acceptedTexts = append(acceptedTexts, text)

			tier := models.TierFree
			if s.randFloat() < premiumBias {
				tier = models.TierPremium
			}
			accepted = append(accepted, &models.CardModel{
				Content:           models.LangMap(cand.Content),
				Type:              s.cardType(dto.Type, cand.Type),
				ConnectionLevel:   dto.ConnectionLevel,
				RelationshipTypes: models.StringSlice(dto.RelationshipTypes),
				Tier:              tier,
				Quality:           quality,
				Status:            models.CardStatusReview,
				Source:            models.CardSourceAIGeneration,
				DeckID:            dto.DeckID,
			})
		}

		if batch < numBatches-1 {
			s.sleep(s.pacingDelay(params.Tier))
		}
	}

	if len(result.Failures) == numBatches && numBatches > 0 {
		if rateLimited == numBatches {
			return nil, &RateLimitError{Batches: numBatches}
		}
		return nil, &TotalFailureError{Batches: numBatches, Last: lastErr}
	}

	if len(accepted) > 0 {
		if err := s.cards.CreateBatch(accepted); err != nil {
			return nil, err
		}
		if dto.DeckID != nil {
			if err := s.decks.RefreshCardCounts(*dto.DeckID); err != nil {
				s.logger.Warn("deck count refresh failed", zap.String("deck_id", *dto.DeckID), zap.Error(err))
			}
		}
	}

	result.Accepted = len(accepted)
	result.CardIDs = make([]string, 0, len(accepted))
	for _, c := range accepted {
		result.CardIDs = append(result.CardIDs, c.ID)
	}

	s.logger.Info("generation run finished",
		zap.String("requested_by", dto.RequestedBy),
		zap.Int("requested", result.Requested),
		zap.Int("accepted", result.Accepted),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("failed_batches", len(result.Failures)))
	return result, nil
}

// loadCorpus seeds the duplicate index from the most recent stored cards in
// each requested partition. One hundred per level and relationship pair is
// enough to catch recent repeats without scanning the whole table.
func (s *Service) loadCorpus(level int, relationshipTypes []string) (*hashCache, []string, error) {
	cache := newHashCache()
	var texts []string
	for _, rt := range relationshipTypes {
		cards, err := s.cards.RecentActive(level, rt, corpusLimit)
		if err != nil {
			return nil, nil, err
		}
		for _, c := range cards {
			for _, t := range c.Content {
				cache.Seed([]string{t})
			}
			if t := c.PrimaryText(); t != "" {
				texts = append(texts, t)
			}
		}
	}
	return cache, texts, nil
}

// isDuplicate applies the three signals in order of cost: exact hash against
// everything seen this run, Jaccard against the stored corpus, Levenshtein
// against texts accepted earlier in the same batch. It never writes to the
// cache; the caller adds a text only once all three signals clear.
func (s *Service) isDuplicate(text string, cache *hashCache, corpusTexts, batchTexts []string) bool {
	if cache.Contains(text) {
		return true
	}
	for _, t := range corpusTexts {
		if JaccardSimilarity(text, t) > jaccardThreshold {
			return true
		}
	}
	for _, t := range batchTexts {
		if LevenshteinRatio(text, t) > levenshteinThreshold {
			return true
		}
	}
	return false
}

// pacingDelay spaces consecutive batches out. High tier runs get a longer
// base delay, and both tiers carry random jitter so runs do not hammer the
// provider in lockstep.
func (s *Service) pacingDelay(tier ModelTier) time.Duration {
	base := pacingDelayStandard
	if tier == TierHigh {
		base = pacingDelayHigh
	}
	return base + time.Duration(s.randFloat()*float64(pacingJitterMax))
}

// cardType resolves the stored type for one candidate. A requested type wins;
// on mixed runs the model's own label is taken when valid, with question as
// the fallback.
func (s *Service) cardType(requested, candidate string) models.CardType {
	if requested != "" {
		return models.CardType(requested)
	}
	if ct := models.CardType(candidate); models.ValidCardType(ct) {
		return ct
	}
	return models.CardTypeQuestion
}

func rateLimitBackoff(attempt int) time.Duration {
	d := rateLimitBackoffBase << (attempt - 1)
	if d > rateLimitBackoffMax || d <= 0 {
		return rateLimitBackoffMax
	}
	return d
}

func primaryText(content map[string]string, languages []string) string {
	if t, ok := content["en"]; ok && t != "" {
		return t
	}
	for _, lang := range languages {
		if t := content[lang]; t != "" {
			return t
		}
	}
	for _, t := range content {
		return t
	}
	return ""
}

// parseCards extracts the JSON array from a model response, tolerating code
// fences and surrounding prose.
func parseCards(raw string) ([]generatedCard, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var cards []generatedCard
	if err := json.Unmarshal([]byte(text), &cards); err == nil {
		return cards, nil
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// EnqueueGenerate queues an async run and starts a worker goroutine for it.
// Identical requests dedupe onto the live task via a payload fingerprint; the
// task record in Redis carries progress and the final result.
func (s *Service) EnqueueGenerate(ctx context.Context, dto *GenerateDTO) (*taskqueue.Task, error) {
	if err := s.validate(dto); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(dto)
	if err != nil {
		return nil, err
	}
	fingerprint := fmt.Sprintf("%x", sha256.Sum256(payload))

	task, created, err := s.tasks.Enqueue(ctx, TaskTypeGenerate, dto, fingerprint, dto.RequestedBy)
	if err != nil {
		return nil, err
	}

	if created {
		go s.runTask(task.ID, dto)
	}
	return task, nil
}

func (s *Service) runTask(taskID string, dto *GenerateDTO) {
	ctx := context.Background()
	if err := s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, ""); err != nil {
		s.logger.Error("task status update failed", zap.String("task_id", taskID), zap.Error(err))
	}

	result, err := s.Generate(ctx, dto)
	if err != nil {
		if uerr := s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, err.Error()); uerr != nil {
			s.logger.Error("task status update failed", zap.String("task_id", taskID), zap.Error(uerr))
		}
		return
	}
	if err := s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskCompleted, result, ""); err != nil {
		s.logger.Error("task status update failed", zap.String("task_id", taskID), zap.Error(err))
	}
}
