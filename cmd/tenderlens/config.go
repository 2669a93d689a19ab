// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/avoynikov/tenderlens/internal/secrets"
	"github.com/avoynikov/tenderlens/pkg/types"
)

// setConfigDefaults registers the built-in defaults for every config key.
// Values can be overridden in tenderlens.yaml or via TENDERLENS_* env vars.
func setConfigDefaults() {
	viper.SetDefault("backend.base_url", "https://api.openai.com/v1")
	viper.SetDefault("backend.model", "gpt-4o-mini")
	viper.SetDefault("backend.temperature", 0.2)
	viper.SetDefault("backend.max_tokens", 0)
	viper.SetDefault("backend.timeout", 2*time.Minute)

	viper.SetDefault("analysis.windowing.size", 1000)
	viper.SetDefault("analysis.windowing.overlap", 100)
	viper.SetDefault("analysis.whole_doc_threshold", 15000)
	viper.SetDefault("analysis.max_list_items", 12)
	viper.SetDefault("analysis.max_document_specs", 20)
	viper.SetDefault("analysis.concurrency", 1)
	viper.SetDefault("analysis.max_attempts", 3)
	viper.SetDefault("analysis.finalize", false)
	viper.SetDefault("analysis.full_text_model", "gpt-4o")

	viper.SetDefault("knowledge_base.path", "")

	viper.SetDefault("publish.base_url", "https://api.notion.com")
	viper.SetDefault("publish.database_id", "")
	viper.SetDefault("publish.state_dir", "state")
	viper.SetDefault("publish.max_attempts", 3)
	viper.SetDefault("publish.poll_interval", 2*time.Second)

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.upload_dir", "uploads")
	viper.SetDefault("server.results_dir", "results")
	viper.SetDefault("server.max_upload_bytes", int64(0))

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.json", false)
}

// loadConfig assembles the pipeline configuration from viper, filling
// credentials from the loaded secrets when the config leaves them empty.
func loadConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Backend: types.BackendConfig{
			BaseURL:     viper.GetString("backend.base_url"),
			APIKey:      secretDefault(secrets.KeyBackendAPIKey, viper.GetString("backend.api_key")),
			Model:       viper.GetString("backend.model"),
			Temperature: viper.GetFloat64("backend.temperature"),
			MaxTokens:   viper.GetInt("backend.max_tokens"),
			Timeout:     viper.GetDuration("backend.timeout"),
		},
		Analysis: types.AnalysisConfig{
			Windowing: types.WindowingConfig{
				Size:    viper.GetInt("analysis.windowing.size"),
				Overlap: viper.GetInt("analysis.windowing.overlap"),
			},
			WholeDocThreshold: viper.GetInt("analysis.whole_doc_threshold"),
			MaxListItems:      viper.GetInt("analysis.max_list_items"),
			MaxDocumentSpecs:  viper.GetInt("analysis.max_document_specs"),
			Concurrency:       viper.GetInt("analysis.concurrency"),
			MaxAttempts:       viper.GetInt("analysis.max_attempts"),
			Finalize:          viper.GetBool("analysis.finalize"),
			FullTextModel:     viper.GetString("analysis.full_text_model"),
		},
		KnowledgeBase: types.KnowledgeBaseConfig{
			Path: viper.GetString("knowledge_base.path"),
		},
		Publish: types.PublishConfig{
			BaseURL:      viper.GetString("publish.base_url"),
			Token:        secretDefault(secrets.KeyWorkspaceToken, viper.GetString("publish.token")),
			DatabaseID:   viper.GetString("publish.database_id"),
			StateDir:     viper.GetString("publish.state_dir"),
			MaxAttempts:  viper.GetInt("publish.max_attempts"),
			PollInterval: viper.GetDuration("publish.poll_interval"),
		},
		Server: types.ServerConfig{
			Addr:           viper.GetString("server.addr"),
			UploadDir:      viper.GetString("server.upload_dir"),
			ResultsDir:     viper.GetString("server.results_dir"),
			MaxUploadBytes: viper.GetInt64("server.max_upload_bytes"),
		},
		Logging: types.LoggingConfig{
			Level: viper.GetString("logging.level"),
			JSON:  viper.GetBool("logging.json"),
		},
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the configuration the other commands would run with:
built-in defaults merged with the config file and environment overrides.
Credential values are redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if cfg.Backend.APIKey != "" {
			cfg.Backend.APIKey = "<redacted>"
		}
		if cfg.Publish.Token != "" {
			cfg.Publish.Token = "<redacted>"
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
