// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"strings"

	"github.com/avoynikov/tenderlens/pkg/types"
)

// Caps bounds the merged list sizes so a many-window analysis cannot grow the
// record without limit.
type Caps struct {
	// ListItems caps every requirement group, the contact list, and the
	// link list.
	ListItems int

	// DocumentSpecs caps the required-documents list.
	DocumentSpecs int
}

// DefaultCaps matches the published record shape: a dozen items per list,
// twenty document types.
var DefaultCaps = Caps{ListItems: 12, DocumentSpecs: 20}

// Reduce merges per-window records into one. Merging is deterministic and
// order-preserving: items are taken in window order, duplicates (same
// description after trimming and case folding) keep their first occurrence,
// and scalar fields take the first non-empty value. Nil records are skipped.
func Reduce(records []*types.ExtractionRecord, caps Caps) *types.ExtractionRecord {
	if caps.ListItems <= 0 {
		caps.ListItems = DefaultCaps.ListItems
	}
	if caps.DocumentSpecs <= 0 {
		caps.DocumentSpecs = DefaultCaps.DocumentSpecs
	}

	out := &types.ExtractionRecord{}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if out.Summary == "" {
			out.Summary = strings.TrimSpace(rec.Summary)
		}
		if out.SourceLink == "" {
			out.SourceLink = strings.TrimSpace(rec.SourceLink)
		}
		out.Company = mergeStrings(out.Company, rec.Company, caps.ListItems)
		out.Technical = mergeItems(out.Technical, rec.Technical, caps.ListItems)
		out.Functional = mergeItems(out.Functional, rec.Functional, caps.ListItems)
		out.NonFunctional = mergeItems(out.NonFunctional, rec.NonFunctional, caps.ListItems)
		out.Infrastructure = mergeItems(out.Infrastructure, rec.Infrastructure, caps.ListItems)
		out.Risks = mergeItems(out.Risks, rec.Risks, caps.ListItems)
		out.Enhancements = mergeItems(out.Enhancements, rec.Enhancements, caps.ListItems)
		out.Contacts = mergeContacts(out.Contacts, rec.Contacts, caps.ListItems)
		out.Documents = mergeDocuments(out.Documents, rec.Documents, caps.DocumentSpecs)
		out.Links = mergeStrings(out.Links, rec.Links, caps.ListItems)
	}
	out.Normalize()
	return out
}

func normKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func mergeStrings(dst, src types.StringList, limit int) types.StringList {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[normKey(v)] = true
	}
	for _, v := range src {
		if len(dst) >= limit {
			break
		}
		k := normKey(v)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		dst = append(dst, strings.TrimSpace(v))
	}
	return dst
}

func mergeItems(dst, src []types.RequirementItem, limit int) []types.RequirementItem {
	seen := make(map[string]bool, len(dst))
	for _, it := range dst {
		seen[normKey(it.Description)] = true
	}
	for _, it := range src {
		if len(dst) >= limit {
			break
		}
		k := normKey(it.Description)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		dst = append(dst, it)
	}
	return dst
}

func mergeContacts(dst, src []types.ContactItem, limit int) []types.ContactItem {
	seen := make(map[string]bool, len(dst))
	for _, c := range dst {
		seen[normKey(c.Name)] = true
	}
	for _, c := range src {
		if len(dst) >= limit {
			break
		}
		k := normKey(c.Name)
		if k == "" {
			k = normKey(c.Line())
		}
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		dst = append(dst, c)
	}
	return dst
}

func mergeDocuments(dst, src []types.DocumentSpec, limit int) []types.DocumentSpec {
	seen := make(map[string]bool, len(dst))
	for _, d := range dst {
		seen[normKey(d.Document)] = true
	}
	for _, d := range src {
		if len(dst) >= limit {
			break
		}
		k := normKey(d.Document)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		dst = append(dst, d)
	}
	return dst
}
