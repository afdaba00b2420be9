package groundtruth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"subtrans/internal/services"
	"subtrans/internal/translate"
)

// zeroTimestamp is the default cue timing for jobs with no timing data.
const zeroTimestamp = "00:00:00.000"

// SegmentRecord is one approved segment as the storage collaborator
// expects it.
type SegmentRecord struct {
	SegmentID           string   `json:"segment_id"`
	StartTime           string   `json:"start_time"`
	EndTime             string   `json:"end_time"`
	OriginalText        string   `json:"original_text"`
	TranslatedText      string   `json:"translated_text"`
	ApprovedTranslation string   `json:"approved_translation"`
	Status              string   `json:"status"`
	EditedBy            string   `json:"edited_by"`
	EditedAt            string   `json:"edited_at"`
	Confidence          *float64 `json:"confidence,omitempty"`
	Notes               *string  `json:"notes,omitempty"`
}

// RecordSet is the full payload posted on approval.
type RecordSet struct {
	FileID       string          `json:"file_id"`
	EvaluationID string          `json:"evaluation_id"`
	Segments     []SegmentRecord `json:"segments"`
}

// BuildRecordSet converts an approved job into its storage payload. Segments
// with a failure placeholder are recorded with an empty translation; timing
// fields default to the zero timestamp when the job carries no cue data.
func BuildRecordSet(job *translate.Job, editedBy string, editedAt time.Time) RecordSet {
	records := make([]SegmentRecord, 0, len(job.Segments))
	for i := range job.Segments {
		seg := &job.Segments[i]

		translation := ""
		if seg.ProducedTranslation != nil && !translate.IsFailureMarker(*seg.ProducedTranslation) {
			translation = *seg.ProducedTranslation
		}

		record := SegmentRecord{
			SegmentID:           seg.ID,
			StartTime:           orZeroTimestamp(seg.StartTime),
			EndTime:             orZeroTimestamp(seg.EndTime),
			OriginalText:        seg.OriginalText,
			TranslatedText:      translation,
			ApprovedTranslation: translation,
			Status:              "approved",
			EditedBy:            editedBy,
			EditedAt:            editedAt.UTC().Format(time.RFC3339),
			Confidence:          seg.ConfidenceScore,
		}
		records = append(records, record)
	}
	return RecordSet{
		FileID:       job.FileID,
		EvaluationID: job.ID,
		Segments:     records,
	}
}

func orZeroTimestamp(value string) string {
	if strings.TrimSpace(value) == "" {
		return zeroTimestamp
	}
	return value
}

// HTTPSink posts record sets to the storage service.
type HTTPSink struct {
	baseURL    string
	editedBy   string
	httpClient *http.Client
	now        func() time.Time
}

// NewHTTPSink constructs a sink against the storage service base URL.
func NewHTTPSink(baseURL, editedBy string, timeout time.Duration) *HTTPSink {
	if editedBy == "" {
		editedBy = "subtrans"
	}
	return &HTTPSink{
		baseURL:    strings.TrimRight(baseURL, "/"),
		editedBy:   editedBy,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// RecordApproval posts the job's record set. A non-2xx response is an error;
// the caller leaves the job in completed so approval can be retried.
func (s *HTTPSink) RecordApproval(ctx context.Context, job *translate.Job) error {
	payload, err := json.Marshal(BuildRecordSet(job, s.editedBy, s.now()))
	if err != nil {
		return fmt.Errorf("encode ground truth: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/ground-truth", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "groundtruth", "record_approval", "storage request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return services.Wrap(services.ErrTransient, "groundtruth", "record_approval",
			fmt.Sprintf("storage returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	return nil
}
