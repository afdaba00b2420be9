package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subtrans/internal/translate"
)

func runCommand(t *testing.T, serverURL string, args ...string) (string, error) {
	t.Helper()
	addr := strings.TrimPrefix(serverURL, "http://")
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--addr", addr}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestJobsListRendersTable(t *testing.T) {
	mux := http.NewServeMux()
	handle(mux, http.MethodGet, "/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]*translate.Job{sampleJob()})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	out, err := runCommand(t, server.URL, "jobs", "list")
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	for _, want := range []string{"job_ep01_abc", "ep01", "completed", "1/1", "0.91"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJobsListStatusFilterQueriesDaemon(t *testing.T) {
	failed := sampleJob()
	failed.ID = "job_ep02_def"
	failed.Status = translate.StatusFailed

	mux := http.NewServeMux()
	handle(mux, http.MethodGet, "/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != "failed" {
			t.Errorf("status query = %q, want failed", got)
		}
		_ = json.NewEncoder(w).Encode([]*translate.Job{failed})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	out, err := runCommand(t, server.URL, "jobs", "list", "--status", "FAILED")
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	if !strings.Contains(out, "job_ep02_def") {
		t.Fatalf("expected the failed job in output:\n%s", out)
	}
	if strings.Contains(out, "job_ep01_abc") {
		t.Fatalf("completed job should not appear:\n%s", out)
	}
}

func TestJobsShowPrintsSegments(t *testing.T) {
	mux := http.NewServeMux()
	handle(mux, http.MethodGet, "/api/jobs/job_ep01_abc", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sampleJob())
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	out, err := runCommand(t, server.URL, "jobs", "show", "job_ep01_abc")
	if err != nil {
		t.Fatalf("jobs show: %v", err)
	}
	for _, want := range []string{"Job: job_ep01_abc", "Status: completed", "seg-001", "ہیلو"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSubmitReadsSegmentFile(t *testing.T) {
	var got jobSubmission
	mux := http.NewServeMux()
	handle(mux, http.MethodPost, "/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode submission: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(sampleJob())
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	path := filepath.Join(t.TempDir(), "ep01.json")
	payload := `[{"segment_id":"seg-001","original_text":"Hello","start_time":"00:00:01.000"}]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, server.URL, "submit", path, "--use-existing")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.FileID != "ep01" {
		t.Fatalf("file id defaulted to %q, want ep01", got.FileID)
	}
	if !got.UseExistingTranslations {
		t.Fatal("expected use_existing_translations to be set")
	}
	if len(got.Segments) != 1 || got.Segments[0].SegmentID != "seg-001" {
		t.Fatalf("daemon saw segments %+v", got.Segments)
	}
	if !strings.Contains(out, "Submitted job job_ep01_abc") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestSubmitRejectsEmptySegmentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := runCommand(t, "http://127.0.0.1:1", "submit", path)
	if err == nil || !strings.Contains(err.Error(), "no segments") {
		t.Fatalf("err = %v, want a no segments error", err)
	}
}

func TestConfigSetRejectsUnknownKey(t *testing.T) {
	_, err := runCommand(t, "http://127.0.0.1:1", "config", "set", "bogus", "1")
	if err == nil || !strings.Contains(err.Error(), "unknown setting") {
		t.Fatalf("err = %v, want an unknown setting error", err)
	}
}

func TestConfigSetSendsSingleField(t *testing.T) {
	var got map[string]any
	mux := http.NewServeMux()
	handle(mux, http.MethodPut, "/api/config", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(settingsDoc{Provider: "openai"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	out, err := runCommand(t, server.URL, "config", "set", "provider", "openai")
	if err != nil {
		t.Fatalf("config set: %v", err)
	}
	if got["provider"] != "openai" || len(got) != 1 {
		t.Fatalf("daemon saw update %v", got)
	}
	if !strings.Contains(out, "Updated provider") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestStatusReportsHealth(t *testing.T) {
	mux := http.NewServeMux()
	handle(mux, http.MethodGet, "/api/health", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(healthReport{Status: "ok", TotalJobs: 4, ActiveJobs: 1})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	out, err := runCommand(t, server.URL, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"Daemon: ok", "Total jobs: 4", "Active jobs: 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMetricsCommand(t *testing.T) {
	confidence := 0.88
	mux := http.NewServeMux()
	handle(mux, http.MethodGet, "/api/metrics", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(translate.Metrics{
			TotalJobs:               3,
			CompletedJobs:           2,
			FailedJobs:              1,
			TotalSegmentsTranslated: 42,
			AverageConfidence:       &confidence,
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	out, err := runCommand(t, server.URL, "metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	for _, want := range []string{"Total jobs: 3", "Segments translated: 42", "Average confidence: 0.88", "Average quality: -"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
