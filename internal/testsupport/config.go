// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"testing"

	"subtrans/internal/config"
)

// NewConfig returns a validated configuration rooted in a per-test temp
// directory, with a placeholder API key so validation passes.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.DataDir = base + "/data"
	cfg.Paths.LogDir = base + "/logs"
	cfg.Providers.Anthropic.APIKey = "test-key"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}
