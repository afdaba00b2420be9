package config

const (
	defaultDataDir = "~/.local/share/subtrans"
	defaultLogDir  = "~/.local/share/subtrans/logs"
	defaultAPIBind = "127.0.0.1:8765"

	defaultProvider              = "anthropic"
	defaultModel                 = "claude-3-5-haiku-latest"
	defaultTemperature           = 0.3
	defaultMaxTokens             = 4096
	defaultSourceLanguage        = "English"
	defaultTargetLanguage        = "Spanish"
	defaultRequestsPerMinute     = 5
	defaultChunkSize             = 3
	defaultMaxPromptTokens       = 4000
	defaultRetryDelaySeconds     = 60
	defaultMaxRetries            = 3
	defaultRequestTimeoutSeconds = 120

	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultOpenAIBaseURL    = "https://api.openai.com/v1"

	defaultGroundTruthURL        = ""
	defaultStorageTimeoutSeconds = 30

	defaultNtfyTimeoutSeconds = 10

	defaultShutdownTimeoutSeconds = 30

	defaultLogFormat = "pretty"
	defaultLogLevel  = "info"
)

const defaultSystemPrompt = "You are a professional subtitle translator. " +
	"Translate each subtitle segment naturally while preserving tone and meaning. " +
	"Keep translations concise enough to read as subtitles. " +
	"Return only the translated text with no commentary."

// Default returns the baseline configuration before any file overrides.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Translation: Translation{
			Provider:              defaultProvider,
			Model:                 defaultModel,
			Temperature:           defaultTemperature,
			MaxTokens:             defaultMaxTokens,
			SystemPrompt:          defaultSystemPrompt,
			SourceLanguage:        defaultSourceLanguage,
			TargetLanguage:        defaultTargetLanguage,
			RequestsPerMinute:     defaultRequestsPerMinute,
			ChunkSize:             defaultChunkSize,
			MaxPromptTokens:       defaultMaxPromptTokens,
			RetryDelaySeconds:     defaultRetryDelaySeconds,
			MaxRetries:            defaultMaxRetries,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Providers: Providers{
			Anthropic: Anthropic{BaseURL: defaultAnthropicBaseURL},
			OpenAI:    OpenAI{BaseURL: defaultOpenAIBaseURL},
		},
		Storage: Storage{
			GroundTruthURL:        defaultGroundTruthURL,
			RequestTimeoutSeconds: defaultStorageTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Workflow: Workflow{
			ShutdownTimeoutSeconds: defaultShutdownTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
