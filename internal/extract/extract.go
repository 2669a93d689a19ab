// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns uploaded files into plain text for analysis. Plain
// formats (txt, markdown, csv) are handled natively; binary document formats
// go through a pluggable Converter.
package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrUnsupportedFormat reports a file whose type the extractor cannot
// handle. Callers surface it to the uploader instead of treating it as an
// internal failure.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Converter transforms a binary document (PDF, DOCX, and friends) into plain
// text or Markdown.
type Converter interface {
	// Convert reads the file at path and returns its textual content.
	// hint is the lowercase file extension without the dot.
	Convert(path, hint string) (string, error)
}

// Extractor resolves a file's format and produces its text. converter may be
// nil, in which case only native formats are supported.
type Extractor struct {
	converter Converter
	log       *zap.Logger
}

// New builds an Extractor over an optional converter.
func New(converter Converter, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{converter: converter, log: log}
}

// formats maps a lowercase extension to how the extractor handles it.
var formats = map[string]string{
	"txt":  "native",
	"md":   "native",
	"csv":  "csv",
	"pdf":  "convert",
	"docx": "convert",
	"doc":  "convert",
	"rtf":  "convert",
	"pptx": "convert",
	"xlsx": "convert",
}

// Supported reports whether the extractor can handle a file with the given
// name and declared media type.
func (e *Extractor) Supported(name, mediaType string) bool {
	kind := formats[resolveFormat(name, mediaType)]
	if kind == "convert" && e.converter == nil {
		return false
	}
	return kind != ""
}

// Text extracts the content of the file at path. name is the original
// (uploaded) file name used for format resolution; mediaType is the declared
// Content-Type, which wins over the extension when it is specific.
func (e *Extractor) Text(path, name, mediaType string) (string, error) {
	format := resolveFormat(name, mediaType)
	e.log.Debug("extracting text",
		zap.String("name", name),
		zap.String("format", format),
	)

	switch formats[format] {
	case "native":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", name, err)
		}
		return string(data), nil

	case "csv":
		return e.csvText(path, name)

	case "convert":
		if e.converter == nil {
			return "", fmt.Errorf("%w: no converter configured for .%s", ErrUnsupportedFormat, format)
		}
		text, err := e.converter.Convert(path, format)
		if err != nil {
			return "", fmt.Errorf("converting %s: %w", name, err)
		}
		return text, nil

	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// csvText flattens a CSV file into line-per-row text so the analysis prompt
// sees the tabular content.
func (e *Extractor) csvText(path, name string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are common in exported sheets

	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parsing %s as CSV: %w", name, err)
	}
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, "; "))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// mediaFormats maps specific media types to extensions. A generic type like
// application/octet-stream resolves through the file extension instead.
var mediaFormats = map[string]string{
	"text/plain":         "txt",
	"text/markdown":      "md",
	"text/csv":           "csv",
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/rtf":    "rtf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         "xlsx",
}

func resolveFormat(name, mediaType string) string {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	if f, ok := mediaFormats[mediaType]; ok {
		return f
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}
