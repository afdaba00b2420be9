package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for invalid or inconsistent values.
// Every problem found is reported, not just the first.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		problems = append(problems, "paths.api_bind must not be empty")
	}

	switch c.Translation.Provider {
	case "anthropic", "openai":
	default:
		problems = append(problems, fmt.Sprintf("translation.provider %q is not supported (anthropic, openai)", c.Translation.Provider))
	}
	if c.Translation.Model == "" {
		problems = append(problems, "translation.model must not be empty")
	}
	if c.Translation.Temperature < 0 || c.Translation.Temperature > 2 {
		problems = append(problems, "translation.temperature must be between 0 and 2")
	}
	if c.Translation.MaxTokens <= 0 {
		problems = append(problems, "translation.max_tokens must be positive")
	}
	if c.Translation.TargetLanguage == "" {
		problems = append(problems, "translation.target_language must not be empty")
	}
	if c.Translation.RequestsPerMinute <= 0 {
		problems = append(problems, "translation.requests_per_minute must be positive")
	}
	if c.Translation.ChunkSize <= 0 {
		problems = append(problems, "translation.chunk_size must be positive")
	}
	if c.Translation.MaxPromptTokens <= 0 {
		problems = append(problems, "translation.max_prompt_tokens must be positive")
	}
	if c.Translation.RetryDelaySeconds < 0 {
		problems = append(problems, "translation.retry_delay_seconds must not be negative")
	}
	if c.Translation.MaxRetries < 0 {
		problems = append(problems, "translation.max_retries must not be negative")
	}
	if c.Translation.RequestTimeoutSeconds <= 0 {
		problems = append(problems, "translation.request_timeout_seconds must be positive")
	}

	if c.Storage.RequestTimeoutSeconds <= 0 {
		problems = append(problems, "storage.request_timeout_seconds must be positive")
	}
	if c.Notifications.NtfyTopic != "" && c.Notifications.RequestTimeoutSeconds <= 0 {
		problems = append(problems, "notifications.request_timeout_seconds must be positive")
	}
	if c.Workflow.ShutdownTimeoutSeconds <= 0 {
		problems = append(problems, "workflow.shutdown_timeout_seconds must be positive")
	}

	switch c.Logging.Format {
	case "pretty", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported (pretty, json)", c.Logging.Format))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not supported (debug, info, warn, error)", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// ValidateProviderCredentials checks that the active provider has an API
// key. Kept separate from Validate so keys can arrive from the environment
// after the config file is loaded.
func (c *Config) ValidateProviderCredentials() error {
	switch c.Translation.Provider {
	case "anthropic":
		if c.Providers.Anthropic.APIKey == "" {
			return fmt.Errorf("providers.anthropic.api_key is required when translation.provider is anthropic (set it in the config file or ANTHROPIC_API_KEY)")
		}
	case "openai":
		if c.Providers.OpenAI.APIKey == "" {
			return fmt.Errorf("providers.openai.api_key is required when translation.provider is openai (set it in the config file or OPENAI_API_KEY)")
		}
	}
	return nil
}
