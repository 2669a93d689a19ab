// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avoynikov/tenderlens/internal/httputil"
	"github.com/avoynikov/tenderlens/pkg/types"
)

const (
	apiVersion = "2022-06-28"

	// The create-page call accepts at most 50 child blocks; the rest are
	// appended in chunks of up to 90.
	createBlockLimit = 50
	appendBlockLimit = 90
)

// Workspace is the outbound client for the Notion-compatible workspace API.
type Workspace struct {
	cfg        types.PublishConfig
	httpClient *http.Client
	log        *zap.Logger
}

// NewWorkspace builds a workspace client from config.
func NewWorkspace(cfg types.PublishConfig, log *zap.Logger) *Workspace {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.notion.com"
	}
	return &Workspace{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Configured reports whether the client has credentials to publish.
func (w *Workspace) Configured() bool {
	return w.cfg.Token != "" && w.cfg.DatabaseID != ""
}

// PublishAnalysis creates a database page for the record and fills it with
// the rendered blocks. It returns the page URL. The page is created with a
// "Новый" status and flipped to "Готово" once all blocks are in; a failed
// status flip is logged but does not fail the publish.
func (w *Workspace) PublishAnalysis(ctx context.Context, fileKey, fallbackTitle string, rec *types.ExtractionRecord) (string, error) {
	if !w.Configured() {
		return "", fmt.Errorf("workspace is not configured: missing token or database id")
	}

	title := NormalizeCompanyName(rec.Company.First())
	if title == "" {
		title = NormalizeCompanyName(fallbackTitle)
	}

	blocks := BuildBlocks(rec)
	first := blocks
	var rest []map[string]any
	if len(blocks) > createBlockLimit {
		first = blocks[:createBlockLimit]
		rest = blocks[createBlockLimit:]
	}

	pageID, err := w.createPage(ctx, title, fileKey, rec, first)
	if err != nil {
		return "", err
	}

	for start := 0; start < len(rest); start += appendBlockLimit {
		end := start + appendBlockLimit
		if end > len(rest) {
			end = len(rest)
		}
		if err := w.appendBlocks(ctx, pageID, rest[start:end]); err != nil {
			return "", fmt.Errorf("appending blocks to page %s: %w", pageID, err)
		}
	}

	if err := w.setStatus(ctx, pageID, "Готово"); err != nil {
		w.log.Warn("could not update page status", zap.String("page_id", pageID), zap.Error(err))
	}

	pageURL := "https://www.notion.so/" + strings.ReplaceAll(pageID, "-", "")
	w.log.Info("published analysis",
		zap.String("file", fileKey),
		zap.String("page_url", pageURL),
		zap.Int("blocks", len(blocks)),
	)
	return pageURL, nil
}

func (w *Workspace) createPage(ctx context.Context, title, fileKey string, rec *types.ExtractionRecord, children []map[string]any) (string, error) {
	props := map[string]any{
		"Name": map[string]any{
			"title": []any{map[string]any{
				"text": map[string]any{"content": truncate(title)},
			}},
		},
		"Дата загрузки": map[string]any{
			"date": map[string]any{"start": time.Now().UTC().Format(time.RFC3339)},
		},
		"Статус": map[string]any{
			"select": map[string]any{"name": "Новый"},
		},
		"FileKey": map[string]any{
			"rich_text": richText(fileKey),
		},
	}
	if rec.Summary != "" {
		props["Описание"] = map[string]any{"rich_text": richText(rec.Summary)}
	}
	if rec.SourceLink != "" {
		props["Ссылки и файлы"] = map[string]any{
			"files": []any{map[string]any{
				"name":     truncate(title),
				"external": map[string]any{"url": rec.SourceLink},
			}},
		}
	}

	body := map[string]any{
		"parent":     map[string]any{"database_id": w.cfg.DatabaseID},
		"properties": props,
		"children":   children,
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := w.call(ctx, http.MethodPost, "/v1/pages", body, &created); err != nil {
		return "", fmt.Errorf("creating page: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("creating page: response carried no page id")
	}
	return created.ID, nil
}

func (w *Workspace) appendBlocks(ctx context.Context, pageID string, children []map[string]any) error {
	body := map[string]any{"children": children}
	return w.call(ctx, http.MethodPatch, "/v1/blocks/"+pageID+"/children", body, nil)
}

func (w *Workspace) setStatus(ctx context.Context, pageID, status string) error {
	body := map[string]any{
		"properties": map[string]any{
			"Статус": map[string]any{
				"select": map[string]any{"name": status},
			},
		},
	}
	return w.call(ctx, http.MethodPatch, "/v1/pages/"+pageID, body, nil)
}

// call performs one authenticated API exchange with retry on rate limiting
// and server errors, decoding the response into out when out is non-nil.
func (w *Workspace) call(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimSuffix(w.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", apiVersion)

	resp, err := httputil.DoWithRetry(ctx, w.httpClient, req, w.cfg.MaxAttempts)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
