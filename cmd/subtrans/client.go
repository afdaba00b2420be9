package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"subtrans/internal/translate"
)

// apiClient talks to a running subtransd instance over its HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError carries the daemon's error payload alongside the HTTP status.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon returned status %d", e.StatusCode)
	}
	return e.Message
}

type healthReport struct {
	Status     string `json:"status"`
	TotalJobs  int    `json:"total_jobs"`
	ActiveJobs int    `json:"active_jobs"`
}

type segmentSubmission struct {
	SegmentID           string  `json:"segment_id"`
	OriginalText        string  `json:"original_text"`
	StartTime           string  `json:"start_time,omitempty"`
	EndTime             string  `json:"end_time,omitempty"`
	ExistingTranslation *string `json:"existing_translation,omitempty"`
}

type jobSubmission struct {
	FileID                  string              `json:"file_id"`
	UseExistingTranslations bool                `json:"use_existing_translations"`
	Segments                []segmentSubmission `json:"segments"`
}

// settingsDoc mirrors the daemon's runtime configuration document.
type settingsDoc struct {
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

func (c *apiClient) Health(ctx context.Context) (healthReport, error) {
	var report healthReport
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &report)
	return report, err
}

func (c *apiClient) CreateJob(ctx context.Context, submission jobSubmission) (*translate.Job, error) {
	var job translate.Job
	if err := c.do(ctx, http.MethodPost, "/api/jobs", submission, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs fetches jobs, optionally restricted to one status. The filtering
// happens daemon-side.
func (c *apiClient) ListJobs(ctx context.Context, status string) ([]*translate.Job, error) {
	path := "/api/jobs"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var jobs []*translate.Job
	if err := c.do(ctx, http.MethodGet, path, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *apiClient) GetJob(ctx context.Context, jobID string) (*translate.Job, error) {
	var job translate.Job
	if err := c.do(ctx, http.MethodGet, "/api/jobs/"+jobID, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *apiClient) UpdateSegment(ctx context.Context, jobID, segmentID, translation string) (*translate.Job, error) {
	var job translate.Job
	payload := map[string]string{"translation": translation}
	path := fmt.Sprintf("/api/jobs/%s/segments/%s", jobID, segmentID)
	if err := c.do(ctx, http.MethodPost, path, payload, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *apiClient) Approve(ctx context.Context, jobID string) (*translate.Job, error) {
	var job translate.Job
	if err := c.do(ctx, http.MethodPost, "/api/jobs/"+jobID+"/approve", nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *apiClient) Cancel(ctx context.Context, jobID string) (*translate.Job, error) {
	var job translate.Job
	if err := c.do(ctx, http.MethodPost, "/api/jobs/"+jobID+"/cancel", nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *apiClient) Metrics(ctx context.Context) (translate.Metrics, error) {
	var metrics translate.Metrics
	err := c.do(ctx, http.MethodGet, "/api/metrics", nil, &metrics)
	return metrics, err
}

func (c *apiClient) GetSettings(ctx context.Context) (settingsDoc, error) {
	var doc settingsDoc
	err := c.do(ctx, http.MethodGet, "/api/config", nil, &doc)
	return doc, err
}

// UpdateSettings sends a partial update. Keys absent from fields keep their
// current value on the daemon side.
func (c *apiClient) UpdateSettings(ctx context.Context, fields map[string]any) (settingsDoc, error) {
	var doc settingsDoc
	err := c.do(ctx, http.MethodPut, "/api/config", fields, &doc)
	return doc, err
}

func (c *apiClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errPayload struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errPayload); decodeErr != nil {
			errPayload.Error = ""
		}
		return &apiError{StatusCode: resp.StatusCode, Message: errPayload.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
