// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"regexp"
	"strings"
)

// Company names in tender documents usually arrive wrapped in legal-form
// prefixes and quotation marks ("ООО «Ромашка»"). The workspace page title
// should carry just the distinctive part.

var (
	quotedNameRe = regexp.MustCompile(`[«“"']\s*([^«»“”"']+?)\s*[»”"']`)

	legalFormPrefixRe = regexp.MustCompile(`(?i)^(?:` +
		`общество с ограниченной ответственностью|` +
		`акционерное общество|` +
		`публичное акционерное общество|` +
		`закрытое акционерное общество|` +
		`открытое акционерное общество|` +
		`индивидуальный предприниматель|` +
		`limited liability company|` +
		`ооо|ао|пао|зао|оао|ип|llc|ltd|inc|jsc` +
		`)\s+`)

	legalFormParenRe = regexp.MustCompile(`(?i)\([^()]*?(?:ооо|ао|пао|зао|оао|ип|llc|ltd|inc|jsc)[^()]*\)`)
	legalFormTailRe  = regexp.MustCompile(`(?i)[,\-]\s*(?:ооо|ао|пао|зао|оао|ип|llc|ltd|inc|jsc)\.?\s*$`)
	quoteCharsRe     = regexp.MustCompile(`[«»"'“”]`)
	multiSpaceRe     = regexp.MustCompile(`\s{2,}`)
)

// NormalizeCompanyName strips legal-form prefixes, parenthesized legal-form
// repeats, and quotation marks from a company name. When stripping leaves
// nothing, the trimmed original is returned so the title is never empty.
func NormalizeCompanyName(original string) string {
	s := strings.TrimSpace(original)
	if s == "" {
		return ""
	}

	if m := quotedNameRe.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	s = legalFormPrefixRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(legalFormParenRe.ReplaceAllString(s, ""))
	s = quoteCharsRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(legalFormTailRe.ReplaceAllString(s, ""))
	s = strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))

	if s == "" {
		return strings.TrimSpace(original)
	}
	return s
}
