package translate

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of a translation job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusApproved   Status = "approved"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed, StatusApproved:
		return true
	}
	return false
}

// Terminal reports whether no further automatic processing happens in this state.
func (s Status) Terminal() bool {
	return s == StatusFailed || s == StatusApproved
}

// CanTransition reports whether the state machine permits moving to next.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusInProgress || next == StatusCompleted || next == StatusFailed
	case StatusInProgress:
		return next == StatusCompleted || next == StatusFailed
	case StatusCompleted:
		return next == StatusApproved
	}
	return false
}

// QualityMetrics holds the heuristic quality indicators computed for one
// translated segment. Overall is the weighted roll-up in [0, 1].
type QualityMetrics struct {
	LengthRatio       float64 `json:"length_ratio"`
	HasTargetScript   bool    `json:"has_target_script"`
	HasNumbers        bool    `json:"has_numbers"`
	HasPunctuation    bool    `json:"has_punctuation"`
	WordCount         int     `json:"word_count"`
	CharacterCount    int     `json:"character_count"`
	IsNotEmpty        bool    `json:"is_not_empty"`
	HasSourceNumerals bool    `json:"has_source_numerals"`
	Overall           float64 `json:"overall_quality_score"`
}

// Segment is the atomic unit of translation. Original fields are fixed at
// job creation; result fields are written once by the engine, or later by a
// human correction through UpdateSegment.
type Segment struct {
	ID                     string          `json:"segment_id"`
	OriginalText           string          `json:"original_text"`
	StartTime              string          `json:"start_time,omitempty"`
	EndTime                string          `json:"end_time,omitempty"`
	ExistingTranslation    *string         `json:"existing_translation,omitempty"`
	ProducedTranslation    *string         `json:"produced_translation,omitempty"`
	ConfidenceScore        *float64        `json:"confidence_score,omitempty"`
	QualityMetrics         *QualityMetrics `json:"quality_metrics,omitempty"`
	TranslationTimeSeconds *float64        `json:"translation_time_seconds,omitempty"`
}

// Processed reports whether the segment has a recorded result, successful
// or failed.
func (s *Segment) Processed() bool {
	return s.ProducedTranslation != nil
}

// Succeeded reports whether the segment carries a real translation rather
// than a failure placeholder.
func (s *Segment) Succeeded() bool {
	return s.ProducedTranslation != nil && !IsFailureMarker(*s.ProducedTranslation)
}

// Job is one end-to-end translation request covering all segments of a file.
type Job struct {
	ID                  string     `json:"job_id"`
	FileID              string     `json:"file_id"`
	Segments            []Segment  `json:"segments"`
	Status              Status     `json:"status"`
	TotalSegments       int        `json:"total_segments"`
	CompletedSegments   int        `json:"completed_segments"`
	AverageConfidence   *float64   `json:"average_confidence,omitempty"`
	AverageQualityScore *float64   `json:"average_quality_score,omitempty"`
	ErrorMessage        string     `json:"error_message,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}

// RefreshProgress recomputes CompletedSegments from segment state.
func (j *Job) RefreshProgress() {
	count := 0
	for i := range j.Segments {
		if j.Segments[i].Processed() {
			count++
		}
	}
	j.CompletedSegments = count
}

// ComputeAverages fills AverageConfidence and AverageQualityScore from the
// successfully translated segments. Segments carrying a failure marker are
// excluded from the denominator, not averaged in as zeros.
func (j *Job) ComputeAverages() {
	var confidenceSum, qualitySum float64
	succeeded := 0
	for i := range j.Segments {
		seg := &j.Segments[i]
		if !seg.Succeeded() {
			continue
		}
		succeeded++
		if seg.ConfidenceScore != nil {
			confidenceSum += *seg.ConfidenceScore
		}
		if seg.QualityMetrics != nil {
			qualitySum += seg.QualityMetrics.Overall
		}
	}
	if succeeded == 0 {
		j.AverageConfidence = nil
		j.AverageQualityScore = nil
		return
	}
	avgConfidence := confidenceSum / float64(succeeded)
	avgQuality := qualitySum / float64(succeeded)
	j.AverageConfidence = &avgConfidence
	j.AverageQualityScore = &avgQuality
}

const failureMarkerPrefix = "[Translation failed"

// FailureMarker builds the placeholder stored in place of a translation when
// chunk processing fails. It is deliberately non-empty so downstream metric
// code can tell a failed segment from an unresolved one.
func FailureMarker(err error) string {
	if err == nil {
		return failureMarkerPrefix + "]"
	}
	return fmt.Sprintf("%s: %s]", failureMarkerPrefix, err.Error())
}

// IsFailureMarker reports whether text is a chunk-failure placeholder.
func IsFailureMarker(text string) bool {
	return strings.HasPrefix(text, failureMarkerPrefix)
}
