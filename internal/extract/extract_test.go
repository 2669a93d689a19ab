// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// mockConverter returns a canned conversion and records the call.
type mockConverter struct {
	gotPath string
	gotHint string
	out     string
	err     error
}

func (m *mockConverter) Convert(path, hint string) (string, error) {
	m.gotPath = path
	m.gotHint = hint
	return m.out, m.err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTextPlainFile(t *testing.T) {
	path := writeTemp(t, "doc.txt", "tender text\nwith lines")
	e := New(nil, zap.NewNop())

	got, err := e.Text(path, "doc.txt", "text/plain")
	if err != nil {
		t.Fatal(err)
	}
	if got != "tender text\nwith lines" {
		t.Errorf("text = %q", got)
	}
}

func TestTextCSVFlattened(t *testing.T) {
	path := writeTemp(t, "data.csv", "name,phone\nIvan,+7 900\nAnna,+7 901\n")
	e := New(nil, zap.NewNop())

	got, err := e.Text(path, "data.csv", "text/csv")
	if err != nil {
		t.Fatal(err)
	}
	want := "name; phone\nIvan; +7 900\nAnna; +7 901\n"
	if got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestTextCSVRaggedRows(t *testing.T) {
	path := writeTemp(t, "data.csv", "a,b,c\nd,e\n")
	e := New(nil, zap.NewNop())
	if _, err := e.Text(path, "data.csv", "text/csv"); err != nil {
		t.Errorf("ragged CSV should parse, got %v", err)
	}
}

func TestTextDelegatesToConverter(t *testing.T) {
	path := writeTemp(t, "doc.pdf", "%PDF-1.4 fake")
	conv := &mockConverter{out: "# Converted"}
	e := New(conv, zap.NewNop())

	got, err := e.Text(path, "doc.pdf", "application/pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got != "# Converted" {
		t.Errorf("text = %q", got)
	}
	if conv.gotPath != path || conv.gotHint != "pdf" {
		t.Errorf("converter called with path=%q hint=%q", conv.gotPath, conv.gotHint)
	}
}

func TestTextConverterFailure(t *testing.T) {
	path := writeTemp(t, "doc.docx", "fake")
	conv := &mockConverter{err: errors.New("container exited")}
	e := New(conv, zap.NewNop())

	_, err := e.Text(path, "doc.docx", "")
	if err == nil || !strings.Contains(err.Error(), "container exited") {
		t.Errorf("err = %v", err)
	}
}

func TestTextExtensionFallback(t *testing.T) {
	// Browsers often upload with application/octet-stream; the extension
	// decides.
	path := writeTemp(t, "doc.docx", "fake")
	conv := &mockConverter{out: "converted"}
	e := New(conv, zap.NewNop())

	if _, err := e.Text(path, "doc.docx", "application/octet-stream"); err != nil {
		t.Fatal(err)
	}
	if conv.gotHint != "docx" {
		t.Errorf("hint = %q, want docx", conv.gotHint)
	}
}

func TestTextMediaTypeWithParameters(t *testing.T) {
	path := writeTemp(t, "upload.bin", "plain content")
	e := New(nil, zap.NewNop())
	got, err := e.Text(path, "upload.bin", "text/plain; charset=utf-8")
	if err != nil {
		t.Fatal(err)
	}
	if got != "plain content" {
		t.Errorf("text = %q", got)
	}
}

func TestTextUnsupported(t *testing.T) {
	path := writeTemp(t, "archive.zip", "PK")
	e := New(&mockConverter{}, zap.NewNop())

	_, err := e.Text(path, "archive.zip", "application/zip")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestTextConvertibleWithoutConverter(t *testing.T) {
	path := writeTemp(t, "doc.pdf", "fake")
	e := New(nil, zap.NewNop())

	_, err := e.Text(path, "doc.pdf", "application/pdf")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestSupported(t *testing.T) {
	withConv := New(&mockConverter{}, zap.NewNop())
	without := New(nil, zap.NewNop())

	tests := []struct {
		name      string
		mediaType string
		e         *Extractor
		want      bool
	}{
		{"doc.txt", "text/plain", without, true},
		{"doc.pdf", "application/pdf", withConv, true},
		{"doc.pdf", "application/pdf", without, false},
		{"archive.zip", "application/zip", withConv, false},
		{"noext", "", withConv, false},
		{"doc.XLSX", "application/octet-stream", withConv, true},
	}
	for _, tt := range tests {
		if got := tt.e.Supported(tt.name, tt.mediaType); got != tt.want {
			t.Errorf("Supported(%q, %q) = %v, want %v", tt.name, tt.mediaType, got, tt.want)
		}
	}
}
