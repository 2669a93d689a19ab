// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the HTTP surface: document upload, prompt preview,
// analysis history, and publish status. Uploads are answered immediately;
// analysis runs in the background and its result lands in the store and the
// publish queue.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/avoynikov/tenderlens/internal/analyze"
	"github.com/avoynikov/tenderlens/internal/extract"
	"github.com/avoynikov/tenderlens/internal/publish"
	"github.com/avoynikov/tenderlens/pkg/types"
)

// Server wires the pipeline stages behind the HTTP API.
type Server struct {
	cfg       types.ServerConfig
	analyzer  *analyze.Analyzer
	extractor *extract.Extractor
	store     *publish.Store
	backendOK bool
	publishOK bool
	log       *zap.Logger

	// background tracks in-flight analysis goroutines so tests and
	// shutdown can wait for them.
	background chan struct{}
}

// New builds a Server. backendOK and publishOK drive the status endpoint and
// whether uploads are queued for publishing.
func New(cfg types.ServerConfig, analyzer *analyze.Analyzer, extractor *extract.Extractor, store *publish.Store, backendOK, publishOK bool, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:        cfg,
		analyzer:   analyzer,
		extractor:  extractor,
		store:      store,
		backendOK:  backendOK,
		publishOK:  publishOK,
		log:        log,
		background: make(chan struct{}, 64),
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	if s.cfg.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = s.cfg.MaxUploadBytes
	}

	api := r.Group("/api")
	{
		api.GET("/status", s.handleStatus)
		api.POST("/upload", s.handleUpload)
		api.POST("/preview", s.handlePreview)
		api.GET("/analyses", s.handleListAnalyses)
		api.GET("/analyses/:file", s.handleGetAnalysis)
		api.GET("/publish-status/:file", s.handlePublishStatus)
	}
	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Router(),
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	status := func(ok bool) string {
		if ok {
			return "connected"
		}
		return "disconnected"
	}
	c.JSON(http.StatusOK, gin.H{
		"server":    "running",
		"backend":   status(s.backendOK),
		"workspace": status(s.publishOK),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
