package services

import "context"

type contextKey string

const (
	jobIDKey      contextKey = "job_id"
	chunkIndexKey contextKey = "chunk_index"
	requestIDKey  contextKey = "request_id"
)

// WithJobID annotates context with the translation job identifier.
func WithJobID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext extracts the job identifier if present.
func JobIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(jobIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithChunkIndex annotates context with the zero-based chunk index.
func WithChunkIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, chunkIndexKey, index)
}

// ChunkIndexFromContext extracts the chunk index if present.
func ChunkIndexFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(chunkIndexKey).(int); ok {
		return v, true
	}
	return 0, false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
