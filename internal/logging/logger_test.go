package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"subtrans/internal/services"
)

func TestPrettyHandlerRendersComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl))

	logger.With(String(FieldComponent, "engine")).Info("job created", String(FieldJobID, "job-1"))

	line := buf.String()
	if !strings.Contains(line, "INFO engine: job created") {
		t.Fatalf("unexpected log line: %q", line)
	}
	if !strings.Contains(line, "job_id=job-1") {
		t.Fatalf("expected job_id attribute in %q", line)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl))

	logger.Info("chunk failed", String("reason", "rate limit hit"))

	if !strings.Contains(buf.String(), `reason="rate limit hit"`) {
		t.Fatalf("expected quoted value in %q", buf.String())
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newPrettyHandler(&buf, lvl))

	logger.Info("should be dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below level, got %q", buf.String())
	}
	logger.Warn("kept")
	if !strings.Contains(buf.String(), "WARN kept") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestWithContextAddsJobFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl))

	ctx := services.WithChunkIndex(services.WithJobID(context.Background(), "job-7"), 2)
	WithContext(ctx, logger).Info("processing chunk")

	line := buf.String()
	if !strings.Contains(line, "job_id=job-7") || !strings.Contains(line, "chunk_index=2") {
		t.Fatalf("expected context fields in %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
