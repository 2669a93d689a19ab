// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data and configuration types shared across the
// analysis pipeline stages.
package types

import (
	"encoding/json"
	"strings"
)

// StringList accepts either a single JSON string or an array of strings.
// Generation backends are inconsistent about which they return for
// candidate-value fields, so the decoder tolerates both.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		one = strings.TrimSpace(one)
		if one == "" {
			*s = StringList{}
		} else {
			*s = StringList{one}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		out := make(StringList, 0, len(many))
		for _, v := range many {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		*s = out
		return nil
	}

	// Anything else (null, number, object) contributes nothing.
	*s = StringList{}
	return nil
}

// First returns the first value or the empty string.
func (s StringList) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// RequirementItem is one extracted requirement: a free-text description and
// an optional verbatim quotation from the source document.
type RequirementItem struct {
	// Description is the normalized statement of the requirement.
	Description string `json:"description" yaml:"description"`

	// Quote is a verbatim excerpt from the source supporting the
	// description. Empty when the backend did not supply one.
	Quote string `json:"quote,omitempty" yaml:"quote,omitempty"`
}

// UnmarshalJSON accepts either an object or a bare string (treated as the
// description).
func (r *RequirementItem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Description = strings.TrimSpace(s)
		r.Quote = ""
		return nil
	}
	type plain RequirementItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = RequirementItem(p)
	return nil
}

// ContactItem is a person mentioned in the document together with whatever
// contact details were found.
type ContactItem struct {
	Name  string `json:"name" yaml:"name"`
	Role  string `json:"role,omitempty" yaml:"role,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone string `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// UnmarshalJSON accepts either an object or a bare string (treated as the
// full name).
func (c *ContactItem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ContactItem{Name: strings.TrimSpace(s)}
		return nil
	}
	type plain ContactItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = ContactItem(p)
	return nil
}

// Line renders the contact as a single display line.
func (c ContactItem) Line() string {
	parts := make([]string, 0, 4)
	for _, v := range []string{c.Name, c.Role, c.Email, c.Phone} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " — ")
}

// DocumentSpec names a document type the tender requires and the fields it
// must carry.
type DocumentSpec struct {
	Document string   `json:"document" yaml:"document"`
	Fields   []string `json:"fields" yaml:"fields"`
}

// UnmarshalJSON accepts either an object or a bare string (treated as the
// document title with no field list).
func (d *DocumentSpec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = DocumentSpec{Document: strings.TrimSpace(s)}
		return nil
	}
	type plain DocumentSpec
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = DocumentSpec(p)
	return nil
}

// ExtractionRecord is the canonical structured result of analyzing either a
// whole document or a single window of it. A merged record produced by the
// reducer has the same shape. Every list field is non-nil after
// Normalize; absence of information is an empty list, never null.
type ExtractionRecord struct {
	// Summary describes the project: what it is, for whom, and why.
	Summary string `json:"summary" yaml:"summary"`

	// Company holds candidate names for the customer organization.
	Company StringList `json:"company" yaml:"company"`

	Technical      []RequirementItem `json:"technical_requirements" yaml:"technical_requirements"`
	Functional     []RequirementItem `json:"functional_requirements" yaml:"functional_requirements"`
	NonFunctional  []RequirementItem `json:"non_functional_requirements" yaml:"non_functional_requirements"`
	Infrastructure []RequirementItem `json:"infrastructure_requirements" yaml:"infrastructure_requirements"`
	Risks          []RequirementItem `json:"constraints_and_risks" yaml:"constraints_and_risks"`

	// Enhancements lists the gaps found by comparing the extracted
	// requirements against the capability knowledge base.
	Enhancements []RequirementItem `json:"required_enhancements" yaml:"required_enhancements"`

	// Contacts lists people named in the document.
	Contacts []ContactItem `json:"contacts" yaml:"contacts"`

	// Documents lists document types the tender requires to be processed.
	Documents []DocumentSpec `json:"required_documents" yaml:"required_documents"`

	// Links collects URLs found in the document.
	Links StringList `json:"links" yaml:"links"`

	// SourceLink points at the original uploaded file, when known.
	SourceLink string `json:"source_link,omitempty" yaml:"source_link,omitempty"`
}

// Normalize replaces nil list fields with empty slices and trims scalar
// fields, so downstream consumers never see null lists.
func (r *ExtractionRecord) Normalize() {
	r.Summary = strings.TrimSpace(r.Summary)
	r.SourceLink = strings.TrimSpace(r.SourceLink)
	if r.Company == nil {
		r.Company = StringList{}
	}
	for _, items := range []*[]RequirementItem{
		&r.Technical, &r.Functional, &r.NonFunctional,
		&r.Infrastructure, &r.Risks, &r.Enhancements,
	} {
		if *items == nil {
			*items = []RequirementItem{}
		}
	}
	if r.Contacts == nil {
		r.Contacts = []ContactItem{}
	}
	if r.Documents == nil {
		r.Documents = []DocumentSpec{}
	}
	if r.Links == nil {
		r.Links = StringList{}
	}
}

// AnalysisResult is what the pipeline hands to callers: the merged record
// plus its canonical JSON serialization and run metadata.
type AnalysisResult struct {
	// ID correlates log events and stored artifacts for one invocation.
	ID string `json:"id"`

	// Name is the document name the caller supplied.
	Name string `json:"name"`

	// Mode is "full" for a single-call analysis or "windowed".
	Mode string `json:"mode"`

	// Windows is the number of windows analyzed (1 in full mode).
	Windows int `json:"windows"`

	// Failed counts windows whose extraction contributed nothing.
	Failed int `json:"failed"`

	// Record is the canonical merged record.
	Record *ExtractionRecord `json:"record"`

	// JSON is the canonical serialization of Record (or the finalized
	// text when the finalization pass ran and parsed cleanly).
	JSON string `json:"-"`
}
