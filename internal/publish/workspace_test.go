// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/avoynikov/tenderlens/internal/httputil"
	"github.com/avoynikov/tenderlens/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

// fakeWorkspace is a minimal Notion-compatible API for tests.
type fakeWorkspace struct {
	mu           chan struct{}
	createdProps map[string]any
	createBlocks []any
	appendCalls  [][]any
	statusProps  []map[string]any
	failCreates  int
}

func newFakeWorkspace() *fakeWorkspace {
	f := &fakeWorkspace{mu: make(chan struct{}, 1)}
	f.mu <- struct{}{}
	return f
}

func (f *fakeWorkspace) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		<-f.mu
		defer func() { f.mu <- struct{}{} }()

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
		}

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/pages":
			if f.failCreates > 0 {
				f.failCreates--
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("auth header = %q", got)
			}
			if got := r.Header.Get("Notion-Version"); got == "" {
				t.Error("missing Notion-Version header")
			}
			f.createdProps, _ = body["properties"].(map[string]any)
			f.createBlocks, _ = body["children"].([]any)
			fmt.Fprint(w, `{"id":"page-1234"}`)

		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/v1/blocks/"):
			children, _ := body["children"].([]any)
			f.appendCalls = append(f.appendCalls, children)
			fmt.Fprint(w, `{}`)

		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/v1/pages/"):
			props, _ := body["properties"].(map[string]any)
			f.statusProps = append(f.statusProps, props)
			fmt.Fprint(w, `{}`)

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestWorkspace(t *testing.T, fake *fakeWorkspace) *Workspace {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	return NewWorkspace(types.PublishConfig{
		BaseURL:    srv.URL,
		Token:      "tok",
		DatabaseID: "db-1",
	}, zap.NewNop())
}

func bigRecord() *types.ExtractionRecord {
	rec := &types.ExtractionRecord{
		Summary: "big record",
		Company: types.StringList{`ООО «Ромашка»`},
	}
	for i := 0; i < 60; i++ {
		rec.Functional = append(rec.Functional, types.RequirementItem{
			Description: fmt.Sprintf("requirement %d", i),
		})
	}
	rec.Normalize()
	return rec
}

func TestPublishAnalysisSmallRecord(t *testing.T) {
	fake := newFakeWorkspace()
	ws := newTestWorkspace(t, fake)

	rec := &types.ExtractionRecord{Summary: "short"}
	rec.Normalize()

	url, err := ws.PublishAnalysis(context.Background(), "key.json", "tz.pdf", rec)
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://www.notion.so/page1234" {
		t.Errorf("page url = %q", url)
	}
	if len(fake.appendCalls) != 0 {
		t.Errorf("small record should fit in the create call, got %d appends", len(fake.appendCalls))
	}
	// Title falls back to the document name when no company was found.
	title := fake.createdProps["Name"].(map[string]any)["title"].([]any)[0].(map[string]any)["text"].(map[string]any)["content"]
	if title != "tz.pdf" {
		t.Errorf("title = %v", title)
	}
	// Page flips to done after blocks are in.
	if len(fake.statusProps) != 1 {
		t.Fatalf("status updates = %d, want 1", len(fake.statusProps))
	}
}

func TestPublishAnalysisChunksBlocks(t *testing.T) {
	fake := newFakeWorkspace()
	ws := newTestWorkspace(t, fake)

	_, err := ws.PublishAnalysis(context.Background(), "key.json", "tz.pdf", bigRecord())
	if err != nil {
		t.Fatal(err)
	}

	if len(fake.createBlocks) != createBlockLimit {
		t.Errorf("create blocks = %d, want %d", len(fake.createBlocks), createBlockLimit)
	}
	total := len(fake.createBlocks)
	for _, chunk := range fake.appendCalls {
		if len(chunk) > appendBlockLimit {
			t.Errorf("append chunk = %d blocks, exceeds %d", len(chunk), appendBlockLimit)
		}
		total += len(chunk)
	}
	want := len(BuildBlocks(bigRecord()))
	if total != want {
		t.Errorf("blocks delivered = %d, want %d", total, want)
	}

	// Title comes from the normalized company name.
	title := fake.createdProps["Name"].(map[string]any)["title"].([]any)[0].(map[string]any)["text"].(map[string]any)["content"]
	if title != "Ромашка" {
		t.Errorf("title = %v", title)
	}
}

func TestPublishAnalysisRetriesServerErrors(t *testing.T) {
	fake := newFakeWorkspace()
	fake.failCreates = 2
	ws := newTestWorkspace(t, fake)

	rec := &types.ExtractionRecord{Summary: "retry me"}
	rec.Normalize()

	if _, err := ws.PublishAnalysis(context.Background(), "key.json", "tz.pdf", rec); err != nil {
		t.Fatalf("publish should survive transient server errors: %v", err)
	}
}

func TestPublishAnalysisUnconfigured(t *testing.T) {
	ws := NewWorkspace(types.PublishConfig{}, zap.NewNop())
	rec := &types.ExtractionRecord{}
	rec.Normalize()

	if _, err := ws.PublishAnalysis(context.Background(), "k", "n", rec); err == nil {
		t.Fatal("expected error for unconfigured workspace")
	}
}
