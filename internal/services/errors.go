package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks malformed requests rejected before any work starts.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks lookups for jobs or segments that do not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks operations attempted against a job in the wrong
	// lifecycle state, such as approving an unfinished job.
	ErrInvalidState = errors.New("invalid state")
	// ErrRateLimited marks provider rate limiting that survived all retries.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrProvider marks any other provider-side failure (auth, malformed
	// request, network).
	ErrProvider = errors.New("provider error")
	// ErrConfiguration marks unusable runtime configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks failures with no better classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsChunkFailure reports whether an error should be absorbed at the chunk
// level (segments marked with the failure sentinel, job loop continues)
// rather than aborting the job. Everything the model client surfaces during
// chunk processing qualifies; only caller mistakes do not.
func IsChunkFailure(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrValidation) && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidState)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
