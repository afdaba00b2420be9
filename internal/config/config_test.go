package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Translation.Provider = "bogus"
	cfg.Translation.ChunkSize = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"translation.provider", "translation.chunk_size", "logging.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestValidateProviderCredentials(t *testing.T) {
	cfg := Default()
	cfg.Translation.Provider = "openai"
	err := cfg.ValidateProviderCredentials()
	if err == nil || !strings.Contains(err.Error(), "providers.openai.api_key") {
		t.Fatalf("expected openai api key error, got %v", err)
	}
	cfg.Providers.OpenAI.APIKey = "sk-test"
	if err := cfg.ValidateProviderCredentials(); err != nil {
		t.Fatalf("key present: %v", err)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `/data"

[translation]
provider = "openai"
model = "gpt-4o-mini"
chunk_size = 5
target_language = "French"

[providers.openai]
api_key = "sk-test"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Translation.Provider != "openai" {
		t.Errorf("provider = %q", cfg.Translation.Provider)
	}
	if cfg.Translation.ChunkSize != 5 {
		t.Errorf("chunk_size = %d", cfg.Translation.ChunkSize)
	}
	if cfg.Translation.TargetLanguage != "French" {
		t.Errorf("target_language = %q", cfg.Translation.TargetLanguage)
	}
	if cfg.Translation.RequestsPerMinute != 5 {
		t.Errorf("requests_per_minute default = %d, want 5", cfg.Translation.RequestsPerMinute)
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Errorf("data_dir not absolute: %q", cfg.Paths.DataDir)
	}
}

func TestLoadMissingExplicitPathUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("missing file reported as existing")
	}
	if cfg.Translation.ChunkSize != 3 || cfg.Translation.RequestsPerMinute != 5 {
		t.Errorf("defaults not applied: %+v", cfg.Translation)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[translation\nbroken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := expandPath("~/subtrans")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "subtrans") {
		t.Errorf("expandPath = %q", got)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[translation]") {
		t.Error("sample config missing translation section")
	}
}

func TestDatabaseAndLockPaths(t *testing.T) {
	cfg := Default()
	cfg.Paths.DataDir = "/tmp/subtrans-test"
	if got := cfg.DatabasePath(); got != "/tmp/subtrans-test/jobs.db" {
		t.Errorf("DatabasePath = %q", got)
	}
	if got := cfg.LockPath(); got != "/tmp/subtrans-test/subtransd.lock" {
		t.Errorf("LockPath = %q", got)
	}
}

func TestLoadNormalizesLanguageCodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[translation]
source_language = "en"
target_language = "urd"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Translation.SourceLanguage != "English" {
		t.Errorf("source_language = %q, want English", cfg.Translation.SourceLanguage)
	}
	if cfg.Translation.TargetLanguage != "Urdu" {
		t.Errorf("target_language = %q, want Urdu", cfg.Translation.TargetLanguage)
	}
}
