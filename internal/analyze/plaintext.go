// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"regexp"
	"strings"

	"github.com/avoynikov/tenderlens/pkg/types"
)

// Backends occasionally ignore the JSON contract and answer with a numbered
// plain-text report (sections 1-7: summary, document types, requirements by
// group, enhancements, contacts, links, source). parseSectionedText recovers
// a record from that format so the window still contributes to the merge.

var (
	sectionHeadRe = regexp.MustCompile(`^\s*([1-7])\.\s+(.+)$`)
	bulletRe      = regexp.MustCompile(`^\s*[-–•*]\s+`)
	urlRe         = regexp.MustCompile(`https?://\S+`)

	// Requirement sub-group labels, bullet lines of their own inside
	// section 3. Both Russian and English labels are accepted.
	subGroupRe = regexp.MustCompile(`(?i)^\s*[-–•*]?\s*(технические требования|функциональные требования|нефункциональные требования|инфраструктурные требования|ограничения и риски|technical requirements|functional requirements|non-functional requirements|infrastructure requirements|constraints and risks)\s*:?\s*$`)
)

type section struct {
	num   int
	lines []string
}

func parseSectionedText(raw string) *types.ExtractionRecord {
	sections := splitSections(raw)
	if len(sections) == 0 {
		return nil
	}

	rec := &types.ExtractionRecord{}
	found := false
	for _, sec := range sections {
		switch sec.num {
		case 1:
			rec.Summary = strings.TrimSpace(strings.Join(sec.lines, "\n"))
			found = found || rec.Summary != ""
		case 2:
			for _, item := range parseBullets(sec.lines) {
				rec.Documents = append(rec.Documents, types.DocumentSpec{Document: item})
				found = true
			}
		case 3:
			found = parseRequirementGroups(sec.lines, rec) || found
		case 4:
			for _, item := range parseBullets(sec.lines) {
				rec.Enhancements = append(rec.Enhancements, types.RequirementItem{Description: item})
				found = true
			}
		case 5:
			for _, item := range parseBullets(sec.lines) {
				rec.Contacts = append(rec.Contacts, types.ContactItem{Name: item})
				found = true
			}
		case 6:
			urls := urlRe.FindAllString(strings.Join(sec.lines, "\n"), -1)
			if len(urls) > 0 {
				rec.Links = urls
				rec.SourceLink = urls[0]
				found = true
			}
		case 7:
			// Source-file marker; the link, if any, was picked up in
			// section 6.
		}
	}
	if !found {
		return nil
	}
	rec.Normalize()
	return rec
}

func splitSections(raw string) []section {
	lines := strings.Split(raw, "\n")
	var sections []section
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if m := sectionHeadRe.FindStringSubmatch(line); m != nil {
			sections = append(sections, section{num: int(m[1][0] - '0')})
			continue
		}
		if len(sections) > 0 {
			last := &sections[len(sections)-1]
			last.lines = append(last.lines, line)
		}
	}
	return sections
}

// parseBullets turns section lines into items: each bullet line starts a new
// item and contiguous non-bullet lines are buffered into one item.
func parseBullets(lines []string) []string {
	var items []string
	var buffer []string
	flush := func() {
		if len(buffer) == 0 {
			return
		}
		if t := strings.TrimSpace(strings.Join(buffer, " ")); t != "" {
			items = append(items, t)
		}
		buffer = nil
	}
	for _, line := range lines {
		if bulletRe.MatchString(line) {
			flush()
			if t := strings.TrimSpace(bulletRe.ReplaceAllString(line, "")); t != "" {
				items = append(items, t)
			}
			continue
		}
		if t := strings.TrimSpace(line); t != "" {
			buffer = append(buffer, t)
		}
	}
	flush()
	return items
}

// parseRequirementGroups splits section 3 at sub-group label lines and
// assigns the bullets under each label to the matching record field.
func parseRequirementGroups(lines []string, rec *types.ExtractionRecord) bool {
	found := false
	var target *[]types.RequirementItem
	var pending []string

	flush := func() {
		if target == nil {
			pending = nil
			return
		}
		for _, item := range parseBullets(pending) {
			*target = append(*target, types.RequirementItem{Description: item})
			found = true
		}
		pending = nil
	}

	for _, line := range lines {
		if m := subGroupRe.FindStringSubmatch(line); m != nil {
			flush()
			target = groupField(m[1], rec)
			continue
		}
		pending = append(pending, line)
	}
	flush()
	return found
}

func groupField(label string, rec *types.ExtractionRecord) *[]types.RequirementItem {
	label = strings.ToLower(label)
	switch {
	case strings.Contains(label, "нефункциональные"), strings.Contains(label, "non-functional"):
		return &rec.NonFunctional
	case strings.Contains(label, "функциональные"), strings.Contains(label, "functional"):
		return &rec.Functional
	case strings.Contains(label, "технические"), strings.Contains(label, "technical"):
		return &rec.Technical
	case strings.Contains(label, "инфраструктурные"), strings.Contains(label, "infrastructure"):
		return &rec.Infrastructure
	default:
		return &rec.Risks
	}
}
