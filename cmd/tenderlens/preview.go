// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Show the prompt that would be sent to the backend",
	Long: `Preview prints the exact messages the first backend call for a document
would carry, without making any call. For long documents in windowed mode
that is the first window's exchange.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	extractor := buildExtractor(log)
	text, err := extractDocument(extractor, args[0])
	if err != nil {
		return err
	}

	fullText, _ := cmd.Flags().GetBool("full-text")
	analyzer := buildAnalyzer(cfg, log)
	messages := analyzer.Preview(text, fullText)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(messages)
	}

	for _, m := range messages {
		fmt.Printf("--- %s ---\n%s\n\n", m.Role, m.Content)
	}
	return nil
}

func init() {
	previewCmd.Flags().Bool("full-text", false, "preview the whole-document prompt")
	previewCmd.Flags().Bool("json", false, "output messages as JSON")

	rootCmd.AddCommand(previewCmd)
}
