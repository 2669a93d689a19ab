// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avoynikov/tenderlens/internal/extract"
	"github.com/avoynikov/tenderlens/internal/publish"
	"github.com/avoynikov/tenderlens/pkg/types"
)

// analysisTimeout bounds one background analysis run.
const analysisTimeout = 30 * time.Minute

func wantsFullText(c *gin.Context) bool {
	v := c.PostForm("full_text")
	return v == "1" || v == "true"
}

// resultKey derives the analysis result file name from the uploaded name,
// e.g. "tz.pdf" -> "tz_1700000000000.json".
func resultKey(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return fmt.Sprintf("%s_%d.json", base, time.Now().UnixMilli())
}

func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file"})
		return
	}
	if !s.extractor.Supported(file.Filename, file.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type"})
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	uploadPath := filepath.Join(s.cfg.UploadDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, uploadPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	fullText := wantsFullText(c)
	fileKey := resultKey(file.Filename)

	// Pre-create the result file so polling clients see "processing"
	// before the analysis finishes.
	if err := s.writeResult(fileKey, []byte(`{"status":"processing"}`)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	mode := "standard"
	if fullText {
		mode = "full_text"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"filename": fileKey,
		"mode":     mode,
		"publish":  gin.H{"queued": s.publishOK},
	})

	s.background <- struct{}{}
	go func() {
		defer func() { <-s.background }()
		defer os.Remove(uploadPath)
		s.runAnalysis(fileKey, uploadPath, file.Filename, file.Header.Get("Content-Type"), fullText)
	}()
}

// runAnalysis is the background half of an upload: extract, analyze, store,
// enqueue. Failures are written into the result file for polling clients.
func (s *Server) runAnalysis(fileKey, path, name, mediaType string, fullText bool) {
	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	log := s.log.With(zap.String("file", fileKey), zap.String("name", name))

	text, err := s.extractor.Text(path, name, mediaType)
	if err != nil {
		log.Error("text extraction failed", zap.Error(err))
		s.failResult(fileKey, err)
		return
	}

	var res *types.AnalysisResult
	if fullText {
		res, err = s.analyzer.AnalyzeFull(ctx, name, text)
	} else {
		res, err = s.analyzer.Analyze(ctx, name, text)
	}
	if err != nil {
		log.Error("analysis failed", zap.Error(err))
		s.failResult(fileKey, err)
		return
	}

	if err := s.writeResult(fileKey, []byte(res.JSON)); err != nil {
		log.Error("writing result file", zap.Error(err))
	}
	if err := s.store.SaveAnalysis(ctx, fileKey, res); err != nil {
		log.Error("storing analysis", zap.Error(err))
		return
	}
	if s.publishOK {
		if _, err := s.store.Enqueue(ctx, fileKey, name); err != nil {
			log.Error("enqueueing publish job", zap.Error(err))
		}
	}
	log.Info("analysis stored", zap.String("mode", res.Mode))
}

func (s *Server) writeResult(fileKey string, data []byte) error {
	if err := os.MkdirAll(s.cfg.ResultsDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.cfg.ResultsDir, fileKey), data, 0o644)
}

func (s *Server) failResult(fileKey string, cause error) {
	payload, _ := json.Marshal(gin.H{"error": cause.Error()})
	if err := s.writeResult(fileKey, payload); err != nil {
		s.log.Error("writing failure result", zap.String("file", fileKey), zap.Error(err))
	}
}

func (s *Server) handlePreview(c *gin.Context) {
	file, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file"})
		return
	}

	tmpPath := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer os.Remove(tmpPath)

	text, err := s.extractor.Text(tmpPath, file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	fullText := wantsFullText(c)
	mode := "standard"
	if fullText {
		mode = "full_text"
	}
	c.JSON(http.StatusOK, gin.H{
		"messages": s.analyzer.Preview(text, fullText),
		"mode":     mode,
		"filename": file.Filename,
	})
}

func (s *Server) handleListAnalyses(c *gin.Context) {
	list, err := s.store.ListAnalyses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []publish.Analysis{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetAnalysis(c *gin.Context) {
	fileKey := filepath.Base(c.Param("file")) // no path traversal
	path := filepath.Join(s.cfg.ResultsDir, fileKey)
	if data, err := os.ReadFile(path); err == nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	// Result file may be gone (restart, cleanup); fall back to the store.
	analysis, err := s.store.GetAnalysis(c.Request.Context(), fileKey)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(analysis.JSON))
}

func (s *Server) handlePublishStatus(c *gin.Context) {
	fileKey := filepath.Base(c.Param("file"))
	job, err := s.store.JobStatus(c.Request.Context(), fileKey)
	if errors.Is(err, publish.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"status": "unknown"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := gin.H{"status": job.Status, "attempts": job.Attempts}
	if job.PageURL != "" {
		out["pageUrl"] = job.PageURL
	}
	if job.Message != "" {
		out["message"] = job.Message
	}
	c.JSON(http.StatusOK, out)
}
