package services_test

import (
	"context"
	"testing"

	"subtrans/internal/services"
)

func TestJobIDRoundTrip(t *testing.T) {
	ctx := services.WithJobID(context.Background(), "job-42")
	id, ok := services.JobIDFromContext(ctx)
	if !ok || id != "job-42" {
		t.Fatalf("expected job-42, got %q (ok=%v)", id, ok)
	}
	if _, ok := services.JobIDFromContext(context.Background()); ok {
		t.Fatal("expected no job id on empty context")
	}
}

func TestChunkIndexRoundTrip(t *testing.T) {
	ctx := services.WithChunkIndex(context.Background(), 0)
	idx, ok := services.ChunkIndexFromContext(ctx)
	if !ok || idx != 0 {
		t.Fatalf("expected chunk index 0, got %d (ok=%v)", idx, ok)
	}
}

func TestEmptyJobIDIgnored(t *testing.T) {
	ctx := services.WithJobID(context.Background(), "")
	if _, ok := services.JobIDFromContext(ctx); ok {
		t.Fatal("expected empty job id to be ignored")
	}
}
