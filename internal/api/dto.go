package api

import (
	"time"

	"subtrans/internal/translate"
)

// segmentInput is one segment in a job submission.
type segmentInput struct {
	SegmentID           string  `json:"segment_id"`
	OriginalText        string  `json:"original_text"`
	StartTime           string  `json:"start_time,omitempty"`
	EndTime             string  `json:"end_time,omitempty"`
	ExistingTranslation *string `json:"existing_translation,omitempty"`
}

// createJobRequest is the POST /api/jobs payload.
type createJobRequest struct {
	FileID                  string         `json:"file_id"`
	UseExistingTranslations bool           `json:"use_existing_translations"`
	Segments                []segmentInput `json:"segments"`
}

func (r createJobRequest) toSegments() []translate.Segment {
	segments := make([]translate.Segment, 0, len(r.Segments))
	for _, in := range r.Segments {
		segments = append(segments, translate.Segment{
			ID:                  in.SegmentID,
			OriginalText:        in.OriginalText,
			StartTime:           in.StartTime,
			EndTime:             in.EndTime,
			ExistingTranslation: in.ExistingTranslation,
		})
	}
	return segments
}

// updateSegmentRequest is the segment correction payload.
type updateSegmentRequest struct {
	Translation string `json:"translation"`
}

// settingsPayload mirrors translate.Settings with durations in seconds.
// Pointer fields allow partial updates: absent fields keep their current
// value.
type settingsPayload struct {
	Provider          *string  `json:"provider,omitempty"`
	Model             *string  `json:"model,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
	MaxTokens         *int     `json:"max_tokens,omitempty"`
	SystemPrompt      *string  `json:"system_prompt,omitempty"`
	SourceLanguage    *string  `json:"source_language,omitempty"`
	TargetLanguage    *string  `json:"target_language,omitempty"`
	RequestsPerMinute *int     `json:"requests_per_minute,omitempty"`
	ChunkSize         *int     `json:"chunk_size,omitempty"`
	MaxPromptTokens   *int     `json:"max_prompt_tokens,omitempty"`
	RetryDelaySeconds *int     `json:"retry_delay_seconds,omitempty"`
	MaxRetries        *int     `json:"max_retries,omitempty"`
	TimeoutSeconds    *int     `json:"request_timeout_seconds,omitempty"`
}

func (p settingsPayload) applyTo(settings *translate.Settings) {
	if p.Provider != nil {
		settings.Provider = *p.Provider
	}
	if p.Model != nil {
		settings.Model = *p.Model
	}
	if p.Temperature != nil {
		settings.Temperature = *p.Temperature
	}
	if p.MaxTokens != nil {
		settings.MaxTokens = *p.MaxTokens
	}
	if p.SystemPrompt != nil {
		settings.SystemPrompt = *p.SystemPrompt
	}
	if p.SourceLanguage != nil {
		settings.SourceLanguage = *p.SourceLanguage
	}
	if p.TargetLanguage != nil {
		settings.TargetLanguage = *p.TargetLanguage
	}
	if p.RequestsPerMinute != nil {
		settings.RequestsPerMinute = *p.RequestsPerMinute
	}
	if p.ChunkSize != nil {
		settings.ChunkSize = *p.ChunkSize
	}
	if p.MaxPromptTokens != nil {
		settings.MaxPromptTokens = *p.MaxPromptTokens
	}
	if p.RetryDelaySeconds != nil {
		settings.RetryDelay = time.Duration(*p.RetryDelaySeconds) * time.Second
	}
	if p.MaxRetries != nil {
		settings.MaxRetries = *p.MaxRetries
	}
	if p.TimeoutSeconds != nil {
		settings.RequestTimeout = time.Duration(*p.TimeoutSeconds) * time.Second
	}
}

// settingsView is the GET /api/config response.
type settingsView struct {
	Provider          string  `json:"provider"`
	Model             string  `json:"model"`
	Temperature       float64 `json:"temperature"`
	MaxTokens         int     `json:"max_tokens"`
	SystemPrompt      string  `json:"system_prompt"`
	SourceLanguage    string  `json:"source_language"`
	TargetLanguage    string  `json:"target_language"`
	RequestsPerMinute int     `json:"requests_per_minute"`
	ChunkSize         int     `json:"chunk_size"`
	MaxPromptTokens   int     `json:"max_prompt_tokens"`
	RetryDelaySeconds int     `json:"retry_delay_seconds"`
	MaxRetries        int     `json:"max_retries"`
	TimeoutSeconds    int     `json:"request_timeout_seconds"`
}

func viewSettings(s translate.Settings) settingsView {
	return settingsView{
		Provider:          s.Provider,
		Model:             s.Model,
		Temperature:       s.Temperature,
		MaxTokens:         s.MaxTokens,
		SystemPrompt:      s.SystemPrompt,
		SourceLanguage:    s.SourceLanguage,
		TargetLanguage:    s.TargetLanguage,
		RequestsPerMinute: s.RequestsPerMinute,
		ChunkSize:         s.ChunkSize,
		MaxPromptTokens:   s.MaxPromptTokens,
		RetryDelaySeconds: int(s.RetryDelay / time.Second),
		MaxRetries:        s.MaxRetries,
		TimeoutSeconds:    int(s.RequestTimeout / time.Second),
	}
}
