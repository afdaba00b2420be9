package services_test

import (
	"errors"
	"strings"
	"testing"

	"subtrans/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrProvider, "model-client", "translate batch", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrProvider) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"model-client", "translate batch", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "engine", "persist", "save failed", errors.New("io"))
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestIsChunkFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", services.Wrap(services.ErrRateLimited, "model-client", "translate batch", "exhausted retries", nil), true},
		{"provider", services.Wrap(services.ErrProvider, "model-client", "translate batch", "http 500", nil), true},
		{"transient", errors.New("network blip"), true},
		{"validation", services.Wrap(services.ErrValidation, "engine", "translate file", "no segments", nil), false},
		{"not found", services.Wrap(services.ErrNotFound, "engine", "get job", "unknown id", nil), false},
		{"invalid state", services.Wrap(services.ErrInvalidState, "engine", "approve", "job pending", nil), false},
	}
	for _, tc := range cases {
		if got := services.IsChunkFailure(tc.err); got != tc.want {
			t.Errorf("%s: IsChunkFailure = %v, want %v", tc.name, got, tc.want)
		}
	}
}
