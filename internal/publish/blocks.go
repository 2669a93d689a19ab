// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"github.com/avoynikov/tenderlens/pkg/types"
)

// Workspace block payloads are deeply nested JSON; building them as generic
// maps keeps the shape visible and avoids a zoo of single-use structs.

// maxTextLen caps rich-text content per workspace API limits.
const maxTextLen = 1900

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxTextLen {
		return s
	}
	return string(runes[:maxTextLen])
}

func richText(text string) []any {
	return []any{map[string]any{
		"type": "text",
		"text": map[string]any{"content": truncate(text)},
	}}
}

func richLink(text, url string) []any {
	return []any{map[string]any{
		"type": "text",
		"text": map[string]any{
			"content": truncate(text),
			"link":    map[string]any{"url": url},
		},
	}}
}

func heading(text string, level int) map[string]any {
	key := "heading_2"
	if level == 3 {
		key = "heading_3"
	}
	return map[string]any{
		"object": "block",
		"type":   key,
		key:      map[string]any{"rich_text": richText(text)},
	}
}

func paragraph(text string) map[string]any {
	return map[string]any{
		"object":    "block",
		"type":      "paragraph",
		"paragraph": map[string]any{"rich_text": richText(text)},
	}
}

func paragraphLink(text, url string) map[string]any {
	return map[string]any{
		"object":    "block",
		"type":      "paragraph",
		"paragraph": map[string]any{"rich_text": richLink(text, url)},
	}
}

func bullet(text string, children []any) map[string]any {
	body := map[string]any{"rich_text": richText(text)}
	if len(children) > 0 {
		body["children"] = children
	}
	return map[string]any{
		"object":             "block",
		"type":               "bulleted_list_item",
		"bulleted_list_item": body,
	}
}

func numbered(text string, children []any) map[string]any {
	body := map[string]any{"rich_text": richText(text)}
	if len(children) > 0 {
		body["children"] = children
	}
	return map[string]any{
		"object":             "block",
		"type":               "numbered_list_item",
		"numbered_list_item": body,
	}
}

func quote(text string) map[string]any {
	return map[string]any{
		"object": "block",
		"type":   "quote",
		"quote":  map[string]any{"rich_text": richText(text)},
	}
}

const emptyMark = "—"

// requirementBullets renders a requirement list: one bullet per item, with
// the verbatim source quote nested under it when present.
func requirementBullets(items []types.RequirementItem) []map[string]any {
	if len(items) == 0 {
		return []map[string]any{paragraph(emptyMark)}
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		var children []any
		if it.Quote != "" {
			children = []any{quote(it.Quote)}
		}
		out = append(out, bullet(it.Description, children))
	}
	return out
}

// BuildBlocks renders an extraction record as the block list of a workspace
// page: the project description, the requirement groups, document types,
// enhancements, contacts, and links.
func BuildBlocks(rec *types.ExtractionRecord) []map[string]any {
	var blocks []map[string]any
	add := func(bs ...map[string]any) { blocks = append(blocks, bs...) }

	add(heading("Описание", 2))
	if rec.Summary != "" {
		add(paragraph(rec.Summary))
	} else {
		add(paragraph(emptyMark))
	}

	groups := []struct {
		title string
		items []types.RequirementItem
	}{
		{"Технические требования", rec.Technical},
		{"Функциональные требования", rec.Functional},
		{"Нефункциональные требования", rec.NonFunctional},
		{"Инфраструктурные требования", rec.Infrastructure},
		{"Ограничения и риски", rec.Risks},
	}
	add(heading("Требования", 2))
	for _, g := range groups {
		add(heading(g.title, 3))
		add(requirementBullets(g.items)...)
	}

	add(heading("Типы документов на обработку", 2))
	if len(rec.Documents) == 0 {
		add(paragraph(emptyMark))
	}
	for _, d := range rec.Documents {
		var children []any
		for _, f := range d.Fields {
			children = append(children, bullet(f, nil))
		}
		add(numbered(d.Document, children))
	}

	add(heading("Список необходимых доработок", 2))
	add(requirementBullets(rec.Enhancements)...)

	add(heading("Контактные лица, способ связи", 2))
	if len(rec.Contacts) == 0 {
		add(paragraph(emptyMark))
	}
	for _, c := range rec.Contacts {
		add(bullet(c.Line(), nil))
	}

	add(heading("Ссылки и файлы", 2))
	if len(rec.Links) == 0 && rec.SourceLink == "" {
		add(paragraph(emptyMark))
	}
	for _, link := range rec.Links {
		add(paragraphLink(link, link))
	}
	if rec.SourceLink != "" {
		add(paragraphLink(rec.SourceLink, rec.SourceLink))
	}

	return blocks
}
