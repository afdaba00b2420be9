package translate

import (
	"sync"
	"time"
)

// Settings is the runtime-adjustable translation configuration. The engine
// takes a snapshot at each chunk boundary, so every field can change between
// chunks but never mid-chunk.
type Settings struct {
	Provider          string        `json:"provider"`
	Model             string        `json:"model"`
	Temperature       float64       `json:"temperature"`
	MaxTokens         int           `json:"max_tokens"`
	SystemPrompt      string        `json:"system_prompt"`
	SourceLanguage    string        `json:"source_language"`
	TargetLanguage    string        `json:"target_language"`
	RequestsPerMinute int           `json:"requests_per_minute"`
	ChunkSize         int           `json:"chunk_size"`
	MaxPromptTokens   int           `json:"max_prompt_tokens"`
	RetryDelay        time.Duration `json:"-"`
	MaxRetries        int           `json:"max_retries"`
	RequestTimeout    time.Duration `json:"-"`
}

// SettingsStore holds the current Settings behind a lock. Readers get value
// copies, so a snapshot taken for one chunk is unaffected by later updates.
type SettingsStore struct {
	mu       sync.RWMutex
	settings Settings
}

// NewSettingsStore seeds the store with the given initial settings.
func NewSettingsStore(initial Settings) *SettingsStore {
	return &SettingsStore{settings: initial}
}

// Snapshot returns a copy of the current settings.
func (s *SettingsStore) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update replaces the stored settings. The change is observed by the next
// chunk processed, never by one already in flight.
func (s *SettingsStore) Update(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}
