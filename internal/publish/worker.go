// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/avoynikov/tenderlens/pkg/types"
)

const defaultPollInterval = 2 * time.Second

// Worker drains the publish queue: it claims pending jobs, pushes the stored
// analysis to the workspace, and records the outcome.
type Worker struct {
	store       *Store
	ws          *Workspace
	maxAttempts int
	interval    time.Duration
	log         *zap.Logger
}

// NewWorker builds a worker over the store and workspace client.
func NewWorker(store *Store, ws *Workspace, cfg types.PublishConfig, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Worker{
		store:       store,
		ws:          ws,
		maxAttempts: maxAttempts,
		interval:    interval,
		log:         log,
	}
}

// Run polls for pending jobs until the context is cancelled. Each poll
// drains the queue completely before sleeping again.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info("publish worker started", zap.Duration("poll_interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.drain(ctx)
		select {
		case <-ctx.Done():
			w.log.Info("publish worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// DrainOnce processes every currently pending job and returns. Used by the
// one-shot publish command; the server uses Run instead.
func (w *Worker) DrainOnce(ctx context.Context) {
	w.drain(ctx)
}

func (w *Worker) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		job, err := w.store.NextPending(ctx)
		if errors.Is(err, ErrNotFound) {
			return
		}
		if err != nil {
			w.log.Error("claiming publish job", zap.Error(err))
			return
		}
		w.publishJob(ctx, job)
	}
}

// publishJob pushes one claimed job to the workspace and records the result.
func (w *Worker) publishJob(ctx context.Context, job *Job) {
	log := w.log.With(
		zap.Int64("job_id", job.ID),
		zap.String("file", job.FileKey),
		zap.Int("attempt", job.Attempts),
	)

	pageURL, err := w.publishOne(ctx, job)
	if err != nil {
		log.Warn("publish attempt failed", zap.Error(err))
		if merr := w.store.MarkError(ctx, job.ID, err.Error(), w.maxAttempts); merr != nil {
			log.Error("recording publish failure", zap.Error(merr))
		}
		return
	}

	if err := w.store.MarkDone(ctx, job.ID, pageURL); err != nil {
		log.Error("recording publish success", zap.Error(err))
		return
	}
	log.Info("publish job done", zap.String("page_url", pageURL))
}

func (w *Worker) publishOne(ctx context.Context, job *Job) (string, error) {
	analysis, err := w.store.GetAnalysis(ctx, job.FileKey)
	if err != nil {
		return "", fmt.Errorf("loading analysis: %w", err)
	}

	var rec types.ExtractionRecord
	if err := json.Unmarshal([]byte(analysis.JSON), &rec); err != nil {
		return "", fmt.Errorf("decoding stored record: %w", err)
	}
	rec.Normalize()

	return w.ws.PublishAnalysis(ctx, job.FileKey, analysis.Name, &rec)
}
