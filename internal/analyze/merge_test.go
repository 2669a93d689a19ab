package analyze

import (
	"reflect"
	"testing"

	"github.com/avoynikov/tenderlens/pkg/types"
)

func reqs(descriptions ...string) []types.RequirementItem {
	out := make([]types.RequirementItem, len(descriptions))
	for i, d := range descriptions {
		out[i] = types.RequirementItem{Description: d}
	}
	return out
}

func TestReduceDeduplicates(t *testing.T) {
	a := &types.ExtractionRecord{
		Summary:   "first summary",
		Technical: reqs("OCR support", "REST API"),
		Links:     types.StringList{"https://a.example"},
	}
	b := &types.ExtractionRecord{
		Summary:   "second summary",
		Technical: reqs("rest api", "Batch import"),
		Links:     types.StringList{"https://a.example", "https://b.example"},
	}

	merged := Reduce([]*types.ExtractionRecord{a, b}, DefaultCaps)

	if merged.Summary != "first summary" {
		t.Errorf("summary = %q, want the first non-empty value", merged.Summary)
	}
	want := []string{"OCR support", "REST API", "Batch import"}
	var got []string
	for _, it := range merged.Technical {
		got = append(got, it.Description)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("technical = %v, want %v (case-insensitive dedup, first wins)", got, want)
	}
	if len(merged.Links) != 2 {
		t.Errorf("links = %v", merged.Links)
	}
}

func TestReduceSkipsNilRecords(t *testing.T) {
	rec := &types.ExtractionRecord{Summary: "only survivor"}
	merged := Reduce([]*types.ExtractionRecord{nil, rec, nil}, DefaultCaps)
	if merged.Summary != "only survivor" {
		t.Errorf("summary = %q", merged.Summary)
	}
}

func TestReduceRespectsCaps(t *testing.T) {
	var items []types.RequirementItem
	var docs []types.DocumentSpec
	for i := 0; i < 40; i++ {
		items = append(items, types.RequirementItem{Description: string(rune('a'+i%26)) + string(rune('0'+i/26))})
		docs = append(docs, types.DocumentSpec{Document: string(rune('a'+i%26)) + string(rune('0'+i/26))})
	}
	rec := &types.ExtractionRecord{Functional: items, Documents: docs}

	merged := Reduce([]*types.ExtractionRecord{rec}, Caps{ListItems: 12, DocumentSpecs: 20})
	if len(merged.Functional) != 12 {
		t.Errorf("functional capped at %d, want 12", len(merged.Functional))
	}
	if len(merged.Documents) != 20 {
		t.Errorf("documents capped at %d, want 20", len(merged.Documents))
	}
}

func TestReduceContactsKeyedByName(t *testing.T) {
	a := &types.ExtractionRecord{Contacts: []types.ContactItem{
		{Name: "Ivan Petrov", Email: "ivan@a.example"},
	}}
	b := &types.ExtractionRecord{Contacts: []types.ContactItem{
		{Name: "ivan petrov", Phone: "+7 900"},
		{Name: "Anna Sidorova"},
	}}

	merged := Reduce([]*types.ExtractionRecord{a, b}, DefaultCaps)
	if len(merged.Contacts) != 2 {
		t.Fatalf("contacts = %+v", merged.Contacts)
	}
	// First occurrence wins; the duplicate's phone is not merged in.
	if merged.Contacts[0].Email != "ivan@a.example" || merged.Contacts[0].Phone != "" {
		t.Errorf("contacts[0] = %+v", merged.Contacts[0])
	}
}

func TestReduceIdempotent(t *testing.T) {
	rec := &types.ExtractionRecord{
		Summary:    "s",
		Company:    types.StringList{"Acme"},
		Functional: reqs("f1", "f2"),
		Documents:  []types.DocumentSpec{{Document: "passport"}},
	}
	once := Reduce([]*types.ExtractionRecord{rec}, DefaultCaps)
	twice := Reduce([]*types.ExtractionRecord{once, once}, DefaultCaps)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merging a record with itself changed it:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestReduceEmptyInput(t *testing.T) {
	merged := Reduce(nil, DefaultCaps)
	if merged == nil {
		t.Fatal("Reduce(nil) = nil, want an empty normalized record")
	}
	if merged.Technical == nil || merged.Contacts == nil || merged.Links == nil {
		t.Error("empty merge must still have non-nil lists")
	}
}

func TestReduceScalarFirstNonEmptyWins(t *testing.T) {
	records := []*types.ExtractionRecord{
		{Summary: "", SourceLink: ""},
		{Summary: "  padded  ", SourceLink: "https://src.example"},
		{Summary: "later", SourceLink: "https://other.example"},
	}
	merged := Reduce(records, DefaultCaps)
	if merged.Summary != "padded" {
		t.Errorf("summary = %q", merged.Summary)
	}
	if merged.SourceLink != "https://src.example" {
		t.Errorf("source_link = %q", merged.SourceLink)
	}
}
