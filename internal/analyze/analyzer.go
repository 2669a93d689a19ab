// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze runs the document analysis pipeline: window the text, call
// the generation backend per window, normalize each response into a record,
// and reduce the records into one deterministic result.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/avoynikov/tenderlens/internal/backend"
	"github.com/avoynikov/tenderlens/internal/knowledge"
	"github.com/avoynikov/tenderlens/internal/window"
	"github.com/avoynikov/tenderlens/pkg/types"
)

// Analyzer orchestrates the extraction pipeline over a backend client.
type Analyzer struct {
	backend backend.Client
	kb      *knowledge.Base
	cfg     types.AnalysisConfig
	log     *zap.Logger
}

// New builds an Analyzer. kb may be nil when no knowledge base is configured.
func New(client backend.Client, kb *knowledge.Base, cfg types.AnalysisConfig, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	if kb == nil {
		kb = knowledge.New("", log)
	}
	return &Analyzer{backend: client, kb: kb, cfg: cfg, log: log}
}

// Analyze extracts a structured record from text. Documents below the
// whole-document threshold are analyzed in a single call; longer documents
// are split into overlapping windows, analyzed per window, and reduced. A
// failed window is skipped; the analysis fails only when every window fails.
func (a *Analyzer) Analyze(ctx context.Context, name, text string) (*types.AnalysisResult, error) {
	id := uuid.NewString()
	log := a.log.With(zap.String("analysis_id", id), zap.String("name", name))
	prompt := a.kb.Augment(systemPrompt)

	if len([]rune(text)) < a.cfg.WholeDocThreshold {
		log.Info("analyzing whole document", zap.Int("chars", len([]rune(text))))
		rec, err := a.callWindow(ctx, prompt, text)
		if err != nil {
			return nil, fmt.Errorf("whole-document analysis: %w", err)
		}
		if rec == nil {
			return nil, ErrExtractionFailed
		}
		return a.finish(ctx, log, &types.AnalysisResult{
			ID: id, Name: name, Mode: "full", Windows: 1, Record: rec,
		})
	}

	windows, err := window.Split(text, a.cfg.Windowing.Size, a.cfg.Windowing.Overlap)
	if err != nil {
		return nil, err
	}
	log.Info("analyzing windowed document",
		zap.Int("chars", len([]rune(text))),
		zap.Int("windows", len(windows)),
	)

	records, failed, err := a.analyzeWindows(ctx, log, prompt+fragmentSuffix, windows)
	if err != nil {
		return nil, err
	}
	if failed == len(windows) {
		return nil, fmt.Errorf("%w: all %d windows failed", ErrExtractionFailed, len(windows))
	}

	merged := Reduce(records, Caps{
		ListItems:     a.cfg.MaxListItems,
		DocumentSpecs: a.cfg.MaxDocumentSpecs,
	})
	return a.finish(ctx, log, &types.AnalysisResult{
		ID: id, Name: name, Mode: "windowed",
		Windows: len(windows), Failed: failed, Record: merged,
	})
}

// AnalyzeFull runs a single-call analysis of the entire text with the
// configured full-text model regardless of length. Used for the on-demand
// deep analysis where the caller accepts the cost of one large request.
func (a *Analyzer) AnalyzeFull(ctx context.Context, name, text string) (*types.AnalysisResult, error) {
	id := uuid.NewString()
	log := a.log.With(zap.String("analysis_id", id), zap.String("name", name))
	prompt := a.kb.Augment(systemPrompt)

	temp := 1.0
	opts := backend.Options{Model: a.cfg.FullTextModel, Temperature: &temp}
	out, err := backend.CallWithRetry(ctx, log, a.maxAttempts(), func() (string, error) {
		return a.backend.CompleteWithOptions(ctx, prompt, text, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("full-text analysis: %w", err)
	}
	rec := Normalize(out)
	if rec == nil {
		return nil, ErrExtractionFailed
	}
	return a.finish(ctx, log, &types.AnalysisResult{
		ID: id, Name: name, Mode: "full", Windows: 1, Record: rec,
	})
}

// Message is one prompt message as it would be sent to the backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Preview returns the exact messages the first backend call for text would
// carry, without making any call. For a long document in windowed mode that
// is the first window's exchange.
func (a *Analyzer) Preview(text string, full bool) []Message {
	prompt := a.kb.Augment(systemPrompt)

	if full || len([]rune(text)) < a.cfg.WholeDocThreshold {
		return []Message{
			{Role: "system", Content: prompt},
			{Role: "user", Content: text},
		}
	}

	first := text
	if windows, err := window.Split(text, a.cfg.Windowing.Size, a.cfg.Windowing.Overlap); err == nil && len(windows) > 0 {
		first = windows[0].Text
	}
	return []Message{
		{Role: "system", Content: prompt + fragmentSuffix},
		{Role: "user", Content: first},
	}
}

// analyzeWindows runs the per-window calls, sequentially by default or with
// bounded concurrency when configured. Results keep window order either way.
func (a *Analyzer) analyzeWindows(ctx context.Context, log *zap.Logger, prompt string, windows []window.Window) ([]*types.ExtractionRecord, int, error) {
	records := make([]*types.ExtractionRecord, len(windows))

	if a.cfg.Concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.cfg.Concurrency)
		for i, w := range windows {
			g.Go(func() error {
				rec, err := a.callWindow(gctx, prompt, w.Text)
				if err != nil {
					log.Warn("window extraction failed", zap.Int("window", w.Index), zap.Error(err))
					return gctx.Err()
				}
				records[i] = rec
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, 0, err
		}
	} else {
		for i, w := range windows {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
			rec, err := a.callWindow(ctx, prompt, w.Text)
			if err != nil {
				log.Warn("window extraction failed", zap.Int("window", w.Index), zap.Error(err))
				continue
			}
			records[i] = rec
		}
	}

	failed := 0
	for _, rec := range records {
		if rec == nil {
			failed++
		}
	}
	return records, failed, nil
}

// callWindow performs one retried backend exchange and normalizes the
// response. A nil record with a nil error means the response was unusable.
func (a *Analyzer) callWindow(ctx context.Context, prompt, text string) (*types.ExtractionRecord, error) {
	out, err := backend.CallWithRetry(ctx, a.log, a.maxAttempts(), func() (string, error) {
		return a.backend.Complete(ctx, prompt, text)
	})
	if err != nil {
		return nil, err
	}
	return Normalize(out), nil
}

// finish serializes the record, optionally running the finalization pass
// first. A finalization failure falls back to the merged record unchanged.
func (a *Analyzer) finish(ctx context.Context, log *zap.Logger, result *types.AnalysisResult) (*types.AnalysisResult, error) {
	result.Record.Normalize()

	serialized, err := json.MarshalIndent(result.Record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing record: %w", err)
	}
	result.JSON = string(serialized)

	if a.cfg.Finalize {
		polished, err := backend.CallWithRetry(ctx, log, a.maxAttempts(), func() (string, error) {
			return a.backend.Complete(ctx, finalizeSystemPrompt, result.JSON)
		})
		if err != nil {
			log.Warn("finalization pass failed, keeping merged record", zap.Error(err))
		} else if rec := Normalize(polished); rec != nil {
			result.Record = rec
			if out, err := json.MarshalIndent(rec, "", "  "); err == nil {
				result.JSON = string(out)
			}
		} else {
			log.Warn("finalization response unusable, keeping merged record")
		}
	}

	log.Info("analysis complete",
		zap.String("mode", result.Mode),
		zap.Int("windows", result.Windows),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (a *Analyzer) maxAttempts() int {
	return a.cfg.MaxAttempts
}
