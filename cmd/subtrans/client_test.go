package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"subtrans/internal/translate"
)

// handle registers a handler for a single method and exact path. The Go 1.22+
// "METHOD /path" ServeMux pattern syntax is unavailable on the go1.21 toolchain
// used to run these tests.
func handle(mux *http.ServeMux, method, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	})
}

func sampleJob() *translate.Job {
	confidence := 0.91
	translation := "ہیلو"
	return &translate.Job{
		ID:     "job_ep01_abc",
		FileID: "ep01",
		Segments: []translate.Segment{
			{
				ID:                  "seg-001",
				OriginalText:        "Hello",
				ProducedTranslation: &translation,
				ConfidenceScore:     &confidence,
			},
		},
		Status:            translate.StatusCompleted,
		TotalSegments:     1,
		CompletedSegments: 1,
		AverageConfidence: &confidence,
		CreatedAt:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestClientJobLifecycle(t *testing.T) {
	var gotSubmission jobSubmission
	mux := http.NewServeMux()
	handle(mux, http.MethodPost, "/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotSubmission); err != nil {
			t.Fatalf("decode submission: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(sampleJob())
	})
	handle(mux, http.MethodGet, "/api/jobs/job_ep01_abc", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sampleJob())
	})
	handle(mux, http.MethodPost, "/api/jobs/job_ep01_abc/approve", func(w http.ResponseWriter, r *http.Request) {
		job := sampleJob()
		job.Status = translate.StatusApproved
		_ = json.NewEncoder(w).Encode(job)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newAPIClient(server.URL)
	ctx := context.Background()

	created, err := client.CreateJob(ctx, jobSubmission{
		FileID:   "ep01",
		Segments: []segmentSubmission{{SegmentID: "seg-001", OriginalText: "Hello"}},
	})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if created.ID != "job_ep01_abc" {
		t.Fatalf("unexpected job id %q", created.ID)
	}
	if gotSubmission.FileID != "ep01" || len(gotSubmission.Segments) != 1 {
		t.Fatalf("daemon saw submission %+v", gotSubmission)
	}

	fetched, err := client.GetJob(ctx, "job_ep01_abc")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if fetched.Segments[0].ProducedTranslation == nil {
		t.Fatal("expected produced translation to survive the round trip")
	}

	approved, err := client.Approve(ctx, "job_ep01_abc")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != translate.StatusApproved {
		t.Fatalf("status = %s, want approved", approved.Status)
	}
}

func TestClientSurfacesDaemonErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "job not found"})
	}))
	defer server.Close()

	client := newAPIClient(server.URL)
	_, err := client.GetJob(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected an error for a missing job")
	}
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T, want *apiError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Message != "job not found" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestClientSettingsPartialUpdate(t *testing.T) {
	var gotBody map[string]any
	mux := http.NewServeMux()
	handle(mux, http.MethodPut, "/api/config", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(settingsDoc{Provider: "anthropic", ChunkSize: 5})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newAPIClient(server.URL)
	doc, err := client.UpdateSettings(context.Background(), map[string]any{"chunk_size": 5})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if len(gotBody) != 1 {
		t.Fatalf("expected a single field in the update, got %v", gotBody)
	}
	if gotBody["chunk_size"] != float64(5) {
		t.Fatalf("chunk_size = %v", gotBody["chunk_size"])
	}
	if doc.ChunkSize != 5 {
		t.Fatalf("returned chunk size = %d", doc.ChunkSize)
	}
}

func TestClientUnreachableDaemon(t *testing.T) {
	client := newAPIClient("http://127.0.0.1:1")
	_, err := client.Health(context.Background())
	if err == nil {
		t.Fatal("expected an error when the daemon is down")
	}
}
