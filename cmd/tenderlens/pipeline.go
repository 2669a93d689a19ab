// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/avoynikov/tenderlens/internal/analyze"
	"github.com/avoynikov/tenderlens/internal/backend"
	"github.com/avoynikov/tenderlens/internal/container"
	"github.com/avoynikov/tenderlens/internal/extract"
	"github.com/avoynikov/tenderlens/internal/knowledge"
	"github.com/avoynikov/tenderlens/internal/logging"
	"github.com/avoynikov/tenderlens/pkg/types"
)

// buildLogger constructs the process logger from the logging section.
func buildLogger(cfg types.LoggingConfig) (*zap.Logger, error) {
	log, err := logging.New(cfg.Level, cfg.JSON)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}

// buildAnalyzer wires the backend client and knowledge base into an analyzer.
func buildAnalyzer(cfg types.PipelineConfig, log *zap.Logger) *analyze.Analyzer {
	client := backend.NewOpenAIClient(cfg.Backend, log)
	kb := knowledge.New(cfg.KnowledgeBase.Path, log)
	return analyze.New(client, kb, cfg.Analysis, log)
}

// buildExtractor wires the text extractor. When no container runtime (or no
// markitdown image) is available the extractor degrades to text-only formats.
func buildExtractor(log *zap.Logger) *extract.Extractor {
	rt, err := container.DetectRuntime()
	if err != nil {
		log.Warn("no container runtime, document conversion disabled", zap.Error(err))
		return extract.New(nil, log)
	}
	conv, err := extract.NewMarkitdownConverter(rt)
	if err != nil {
		log.Warn("markitdown image unavailable, document conversion disabled", zap.Error(err))
		return extract.New(nil, log)
	}
	log.Info("document converter ready", zap.String("runtime", rt.Name()))
	return extract.New(conv, log)
}

// extractDocument reads one file through the extractor, resolving the media
// type from the filename alone.
func extractDocument(ex *extract.Extractor, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return ex.Text(path, path, "")
}
