// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/avoynikov/tenderlens/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a single document and print the extracted record",
	Long: `Analyze extracts one structured requirement record from a document.
Long documents are split into overlapping windows and the per-window records
are merged; --full-text forces a single whole-document call instead.

The record is printed as JSON to stdout, or written into --output-dir when
set.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	analyzer := buildAnalyzer(cfg, log)
	extractor := buildExtractor(log)

	path := args[0]
	text, err := extractDocument(extractor, path)
	if err != nil {
		return err
	}

	fullText, _ := cmd.Flags().GetBool("full-text")
	name := filepath.Base(path)

	var res *types.AnalysisResult
	if fullText {
		res, err = analyzer.AnalyzeFull(context.Background(), name, text)
	} else {
		res, err = analyzer.Analyze(context.Background(), name, text)
	}
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("output-dir")
	if outDir == "" {
		fmt.Println(res.JSON)
		return nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	out := filepath.Join(outDir, res.ID+".json")
	if err := os.WriteFile(out, []byte(res.JSON), 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%s, %d windows, %d failed)\n", out, res.Mode, res.Windows, res.Failed)
	return nil
}

func init() {
	analyzeCmd.Flags().Bool("full-text", false, "analyze the whole document in one call")
	analyzeCmd.Flags().String("output-dir", "", "write the record to this directory instead of stdout")

	rootCmd.AddCommand(analyzeCmd)
}
