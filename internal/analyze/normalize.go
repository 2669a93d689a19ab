// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/avoynikov/tenderlens/pkg/types"
)

var (
	fenceRe         = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// Normalize turns raw backend output into an ExtractionRecord. It tries, in
// order: strict JSON decoding, decoding after mechanical repair (markdown
// fences, text around the outermost braces, trailing commas), and finally the
// numbered plain-text section format some backends fall back to. Returns nil
// when all three fail; a nil record means the window contributed nothing.
func Normalize(raw string) *types.ExtractionRecord {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if rec := decodeRecord(raw); rec != nil {
		return rec
	}
	if repaired := repairJSON(raw); repaired != "" {
		if rec := decodeRecord(repaired); rec != nil {
			return rec
		}
	}
	return parseSectionedText(raw)
}

func decodeRecord(s string) *types.ExtractionRecord {
	if !strings.HasPrefix(s, "{") {
		return nil
	}
	var rec types.ExtractionRecord
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return nil
	}
	rec.Normalize()
	return &rec
}

// repairJSON applies the mechanical fixes that recover most almost-JSON
// backend output: unwrap a markdown code fence, cut everything outside the
// outermost brace pair, and drop trailing commas before closing brackets.
func repairJSON(raw string) string {
	s := raw
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	s = strings.TrimSpace(s)

	open := strings.Index(s, "{")
	close := strings.LastIndex(s, "}")
	if open < 0 || close <= open {
		return ""
	}
	s = s[open : close+1]

	return trailingCommaRe.ReplaceAllString(s, "$1")
}
