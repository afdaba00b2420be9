package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"subtrans/internal/config"
	"subtrans/internal/translate"
)

const userAgent = "subtrans/0.1.0"

// Service pushes job lifecycle notifications.
type Service interface {
	JobCompleted(ctx context.Context, job *translate.Job) error
	JobFailed(ctx context.Context, job *translate.Job) error
	JobApproved(ctx context.Context, job *translate.Job) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) JobCompleted(ctx context.Context, job *translate.Job) error {
	message := fmt.Sprintf("Translated %s: %d/%d segments", job.FileID, job.CompletedSegments, job.TotalSegments)
	if job.AverageConfidence != nil {
		message = fmt.Sprintf("%s (confidence %.2f)", message, *job.AverageConfidence)
	}
	data := payload{
		title:   "Subtrans - Job Complete",
		message: message,
		tags:    []string{"subtrans", "job", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) JobFailed(ctx context.Context, job *translate.Job) error {
	message := fmt.Sprintf("Translation failed for %s", job.FileID)
	if reason := strings.TrimSpace(job.ErrorMessage); reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}
	data := payload{
		title:    "Subtrans - Job Failed",
		message:  message,
		tags:     []string{"subtrans", "job", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) JobApproved(ctx context.Context, job *translate.Job) error {
	data := payload{
		title:   "Subtrans - Job Approved",
		message: fmt.Sprintf("Approved translations for %s (%d segments)", job.FileID, job.TotalSegments),
		tags:    []string{"subtrans", "job", "approved"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) JobCompleted(context.Context, *translate.Job) error { return nil }
func (noopService) JobFailed(context.Context, *translate.Job) error    { return nil }
func (noopService) JobApproved(context.Context, *translate.Job) error  { return nil }
