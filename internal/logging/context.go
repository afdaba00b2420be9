package logging

import (
	"context"
	"log/slog"

	"subtrans/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldJobID is the standardized structured logging key for translation job identifiers.
	FieldJobID = "job_id"
	// FieldFileID is the standardized structured logging key for source file identifiers.
	FieldFileID = "file_id"
	// FieldChunkIndex is the standardized structured logging key for zero-based chunk indices.
	FieldChunkIndex = "chunk_index"
	// FieldSegmentID is the standardized structured logging key for segment identifiers.
	FieldSegmentID = "segment_id"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.JobIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldJobID, id))
	}
	if idx, ok := services.ChunkIndexFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldChunkIndex, idx))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
