package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"subtrans/internal/config"
)

func newConfigCommand(resolve clientResolver, configPath *string) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(resolve))
	configCmd.AddCommand(newConfigSetCommand(resolve))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(configPath))

	return configCmd
}

func newConfigShowCommand(resolve clientResolver) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the daemon's runtime translation settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := resolve()
			if err != nil {
				return err
			}
			doc, err := client.GetSettings(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, doc)
			}
			rows := [][]string{
				{"provider", doc.Provider},
				{"model", doc.Model},
				{"temperature", strconv.FormatFloat(doc.Temperature, 'g', -1, 64)},
				{"max_tokens", strconv.Itoa(doc.MaxTokens)},
				{"source_language", doc.SourceLanguage},
				{"target_language", doc.TargetLanguage},
				{"requests_per_minute", strconv.Itoa(doc.RequestsPerMinute)},
				{"chunk_size", strconv.Itoa(doc.ChunkSize)},
				{"max_prompt_tokens", strconv.Itoa(doc.MaxPromptTokens)},
				{"retry_delay_seconds", strconv.Itoa(doc.RetryDelaySeconds)},
				{"max_retries", strconv.Itoa(doc.MaxRetries)},
				{"request_timeout_seconds", strconv.Itoa(doc.TimeoutSeconds)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit settings as JSON")
	return cmd
}

// settableFields maps config keys to value parsers for `config set`.
var settableFields = map[string]func(string) (any, error){
	"provider":                parseString,
	"model":                   parseString,
	"system_prompt":           parseString,
	"source_language":         parseString,
	"target_language":         parseString,
	"temperature":             parseFloat,
	"max_tokens":              parseInt,
	"requests_per_minute":     parseInt,
	"chunk_size":              parseInt,
	"max_prompt_tokens":       parseInt,
	"retry_delay_seconds":     parseInt,
	"max_retries":             parseInt,
	"request_timeout_seconds": parseInt,
}

func parseString(raw string) (any, error) { return raw, nil }

func parseInt(raw string) (any, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("expected an integer, got %q", raw)
	}
	return value, nil
}

func parseFloat(raw string) (any, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("expected a number, got %q", raw)
	}
	return value, nil
}

func newConfigSetCommand(resolve clientResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Update one runtime setting on the daemon",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(strings.TrimSpace(args[0]))
			parse, ok := settableFields[key]
			if !ok {
				keys := make([]string, 0, len(settableFields))
				for k := range settableFields {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				return fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(keys, ", "))
			}
			value, err := parse(args[1])
			if err != nil {
				return fmt.Errorf("setting %s: %w", key, err)
			}

			client, err := resolve()
			if err != nil {
				return err
			}
			if _, err := client.UpdateSettings(cmd.Context(), map[string]any{key: value}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", key)
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set an API key (or export ANTHROPIC_API_KEY / OPENAI_API_KEY) before starting subtransd.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
