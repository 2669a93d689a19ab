// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge loads the product-capability reference that grounds the
// required-enhancements comparison. The file is optional: a missing or
// malformed knowledge base degrades extraction quality but never fails it.
package knowledge

import (
	"bytes"
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Base holds the capability reference. The file is read at most once per
// process; concurrent analyses share the cached content.
type Base struct {
	path string
	log  *zap.Logger

	once sync.Once
	raw  string
}

// New builds a Base over path. An empty path disables the knowledge base.
func New(path string, log *zap.Logger) *Base {
	if log == nil {
		log = zap.NewNop()
	}
	return &Base{path: path, log: log}
}

// Content returns the compacted knowledge-base JSON, or "" when the file is
// absent, unreadable, or not valid JSON. The first call reads the file; later
// calls return the cached result.
func (b *Base) Content() string {
	b.once.Do(b.load)
	return b.raw
}

// Available reports whether a usable knowledge base was loaded.
func (b *Base) Available() bool {
	return b.Content() != ""
}

func (b *Base) load() {
	if b.path == "" {
		return
	}
	data, err := os.ReadFile(b.path)
	if err != nil {
		b.log.Warn("knowledge base unavailable", zap.String("path", b.path), zap.Error(err))
		return
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		b.log.Warn("knowledge base is not valid JSON", zap.String("path", b.path), zap.Error(err))
		return
	}

	b.raw = compact.String()
	b.log.Info("knowledge base loaded", zap.String("path", b.path), zap.Int("bytes", compact.Len()))
}

// Augment appends the capability reference to a system prompt. When no
// knowledge base is available the prompt is returned unchanged.
func (b *Base) Augment(prompt string) string {
	content := b.Content()
	if content == "" {
		return prompt
	}
	return prompt + "\n\nKnown product capabilities (use only for the required-enhancements comparison; do not invent facts beyond this list):\n" + content
}
