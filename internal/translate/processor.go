package translate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"subtrans/internal/logging"
	"subtrans/internal/provider"
)

// ModelClient sends one prompt to a model backend and returns the raw
// response text. Satisfied by provider.Client.
type ModelClient interface {
	TranslateBatch(ctx context.Context, req provider.Request) (string, error)
}

// ChunkOutcome reports what happened to one chunk.
type ChunkOutcome struct {
	// Err is non-nil when the model call failed and every segment in the
	// chunk was marked with a failure placeholder.
	Err error
	// Unresolved counts segments the response did not cover; they carry a
	// failure placeholder with zeroed scores.
	Unresolved int
}

// errSegmentUnresolved marks segments the model response left uncovered.
var errSegmentUnresolved = errors.New("segment missing from model response")

// ChunkProcessor translates one chunk of segments using a fixed settings
// snapshot. A failure marks the chunk's segments and is reported to the
// caller; it never aborts sibling chunks.
type ChunkProcessor struct {
	client   ModelClient
	limiter  *RateLimiter
	builder  *PromptBuilder
	aligner  *Aligner
	scorer   *Scorer
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
}

// NewChunkProcessor assembles a processor for one settings snapshot.
func NewChunkProcessor(client ModelClient, limiter *RateLimiter, settings Settings, logger *slog.Logger) *ChunkProcessor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ChunkProcessor{
		client:   client,
		limiter:  limiter,
		builder:  NewPromptBuilder(settings.SystemPrompt, settings.SourceLanguage, settings.TargetLanguage),
		aligner:  NewAligner(settings.SourceLanguage, settings.TargetLanguage),
		scorer:   NewScorer(settings.TargetLanguage),
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Process translates chunk in place. Segments are updated with translations,
// scores, and an amortized per-segment duration. On failure every segment
// receives the failure placeholder with zeroed scores; segments the response
// left uncovered get the placeholder too, so they never score as successes.
func (p *ChunkProcessor) Process(ctx context.Context, chunk []Segment, chunkIndex int) ChunkOutcome {
	log := p.logger.With(logging.Int(logging.FieldChunkIndex, chunkIndex))

	prompt := p.builder.Build(chunk)
	started := p.now()
	raw, err := p.client.TranslateBatch(ctx, provider.Request{
		SystemPrompt: p.settings.SystemPrompt,
		Prompt:       prompt,
		Model:        p.settings.Model,
		Temperature:  p.settings.Temperature,
		MaxTokens:    p.settings.MaxTokens,
	})
	if err != nil {
		log.Error("chunk translation failed", logging.Error(err))
		markChunkFailed(chunk, err)
		return ChunkOutcome{Err: err}
	}
	elapsed := p.now().Sub(started)

	translations, unresolved := p.aligner.Align(raw, len(chunk))
	if unresolved > 0 {
		log.Warn("model response covered fewer segments than requested",
			logging.Int("unresolved", unresolved),
			logging.Int("segments", len(chunk)))
	}

	perSegment := elapsed.Seconds() / float64(len(chunk))
	for i := range chunk {
		translation := translations[i]
		if translation == "" {
			markSegmentFailed(&chunk[i], errSegmentUnresolved)
			continue
		}
		confidence, metrics := p.scorer.Score(chunk[i].OriginalText, translation)
		seconds := perSegment

		chunk[i].ProducedTranslation = &translation
		chunk[i].ConfidenceScore = &confidence
		chunk[i].QualityMetrics = &metrics
		chunk[i].TranslationTimeSeconds = &seconds
	}

	p.limiter.RecordSuccess()
	return ChunkOutcome{Unresolved: unresolved}
}
