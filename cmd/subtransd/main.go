package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"subtrans/internal/config"
	"subtrans/internal/daemon"
	"subtrans/internal/logging"
)

func main() {
	// Optional .env for provider credentials; absence is not an error.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(os.Getenv("SUBTRANS_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	applyEnvCredentials(cfg)

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	d, err := daemon.New(cfg, logger)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}

	if err := d.Run(ctx); err != nil {
		log.Fatalf("daemon: %v", err)
	}
}

// applyEnvCredentials fills in API keys from the environment when the config
// file leaves them empty.
func applyEnvCredentials(cfg *config.Config) {
	if cfg.Providers.Anthropic.APIKey == "" {
		cfg.Providers.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Providers.OpenAI.APIKey == "" {
		cfg.Providers.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}
