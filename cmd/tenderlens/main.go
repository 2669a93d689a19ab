// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the tenderlens CLI. It exposes the
// analysis pipeline as subcommands: serve runs the HTTP API and the publish
// worker, analyze and preview operate on a single document, publish drains
// the workspace queue.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/avoynikov/tenderlens/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the tenderlens CLI.
var rootCmd = &cobra.Command{
	Use:   "tenderlens",
	Short: "Tender document analysis and workspace publishing",
	Long: `tenderlens extracts structured requirement records from tender documents.
A document is converted to text, split into overlapping windows, analyzed
per window by a text-generation backend, and merged into one record. The
record can be published to a workspace database.

Run "tenderlens serve" for the HTTP API, or use analyze/preview/publish for
one-shot operation on single documents.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./tenderlens.yaml or ~/.config/tenderlens/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("tenderlens")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tenderlens"))
		}
	}

	viper.SetEnvPrefix("TENDERLENS")
	viper.AutomaticEnv()

	setConfigDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
