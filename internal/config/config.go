package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"subtrans/internal/language"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// Translation contains the runtime-adjustable translation engine settings.
// These seed the engine's settings snapshot at startup; later changes go
// through the API and take effect at the next chunk boundary.
type Translation struct {
	Provider              string  `toml:"provider"`
	Model                 string  `toml:"model"`
	Temperature           float64 `toml:"temperature"`
	MaxTokens             int     `toml:"max_tokens"`
	SystemPrompt          string  `toml:"system_prompt"`
	SourceLanguage        string  `toml:"source_language"`
	TargetLanguage        string  `toml:"target_language"`
	RequestsPerMinute     int     `toml:"requests_per_minute"`
	ChunkSize             int     `toml:"chunk_size"`
	MaxPromptTokens       int     `toml:"max_prompt_tokens"`
	RetryDelaySeconds     int     `toml:"retry_delay_seconds"`
	MaxRetries            int     `toml:"max_retries"`
	RequestTimeoutSeconds int     `toml:"request_timeout_seconds"`
}

// Anthropic contains connection settings for the Anthropic messages API.
type Anthropic struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// OpenAI contains connection settings for the OpenAI chat completions API.
type OpenAI struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Providers groups the supported model provider backends.
type Providers struct {
	Anthropic Anthropic `toml:"anthropic"`
	OpenAI    OpenAI    `toml:"openai"`
}

// Storage contains configuration for the ground-truth storage collaborator.
type Storage struct {
	GroundTruthURL        string `toml:"ground_truth_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Notifications contains push notification configuration. Notifications go
// out over ntfy when a topic URL is set; otherwise they are disabled.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Workflow contains daemon timing configuration.
type Workflow struct {
	ShutdownTimeoutSeconds int `toml:"shutdown_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for subtrans.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Translation: engine tuning (provider, chunking, rate limits, retries)
//   - Providers: credentials and endpoints per model backend
//   - Storage: ground-truth sink endpoint
//   - Notifications: ntfy push notifications
//   - Workflow: daemon timing
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Translation   Translation   `toml:"translation"`
	Providers     Providers     `toml:"providers"`
	Storage       Storage       `toml:"storage"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subtrans/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return value
// is the resolved path; the third reports whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subtrans.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Translation.Provider = strings.ToLower(strings.TrimSpace(c.Translation.Provider))
	c.Translation.Model = strings.TrimSpace(c.Translation.Model)
	c.Translation.SourceLanguage = language.DisplayName(c.Translation.SourceLanguage)
	c.Translation.TargetLanguage = language.DisplayName(c.Translation.TargetLanguage)
	c.Providers.Anthropic.APIKey = strings.TrimSpace(c.Providers.Anthropic.APIKey)
	c.Providers.OpenAI.APIKey = strings.TrimSpace(c.Providers.OpenAI.APIKey)
	c.Storage.GroundTruthURL = strings.TrimSpace(c.Storage.GroundTruthURL)
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	return nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the job store database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "jobs.db")
}

// LockPath returns the daemon lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "subtransd.lock")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
