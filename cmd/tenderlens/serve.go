// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avoynikov/tenderlens/internal/publish"
	"github.com/avoynikov/tenderlens/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the publish worker",
	Long: `Serve starts the upload/analysis HTTP API and the background worker that
drains the workspace publish queue. Both stop gracefully on SIGINT/SIGTERM.

Publishing requires a workspace token and database ID; without them uploads
are analyzed and stored but never queued.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := publish.NewStore(cfg.Publish.StateDir)
	if err != nil {
		return err
	}
	defer store.Close()

	analyzer := buildAnalyzer(cfg, log)
	extractor := buildExtractor(log)
	ws := publish.NewWorkspace(cfg.Publish, log)

	backendOK := cfg.Backend.APIKey != ""
	if !backendOK {
		log.Warn("no backend API key configured, analysis calls will fail")
	}
	publishOK := ws.Configured()
	if !publishOK {
		log.Warn("workspace not configured, publishing disabled")
	}

	srv := server.New(cfg.Server, analyzer, extractor, store, backendOK, publishOK, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerDone := make(chan struct{})
	if publishOK {
		worker := publish.NewWorker(store, ws, cfg.Publish, log)
		go func() {
			defer close(workerDone)
			worker.Run(ctx)
		}()
	} else {
		close(workerDone)
	}

	err = srv.Run(ctx)
	stop()
	<-workerDone

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
