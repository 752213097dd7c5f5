// Package compliance implements the compliance matrix subsystem: extracting
// traceable requirements from RFP text, mapping proposal sections against
// them, and scoring coverage of mandatory obligations.
package compliance

import "strings"

// Category classifies an RFP requirement.
type Category string

const (
	CategoryMandatory          Category = "mandatory"
	CategoryOptional           Category = "optional"
	CategoryEvaluationCriteria Category = "evaluation_criteria"
	CategoryDeliverable        Category = "deliverable"
	CategoryTechnical          Category = "technical"
	CategoryBusiness           Category = "business"
	CategoryOther              Category = "other"
)

// ParseCategory maps free-form category text to a Category.
// Unknown values map to CategoryOther.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryMandatory:
		return CategoryMandatory
	case CategoryOptional:
		return CategoryOptional
	case CategoryEvaluationCriteria:
		return CategoryEvaluationCriteria
	case CategoryDeliverable:
		return CategoryDeliverable
	case CategoryTechnical:
		return CategoryTechnical
	case CategoryBusiness:
		return CategoryBusiness
	default:
		return CategoryOther
	}
}

// Status is the compliance verdict for one requirement mapping.
type Status string

const (
	StatusFullyCompliant     Status = "fully_compliant"
	StatusPartiallyCompliant Status = "partially_compliant"
	StatusNonCompliant       Status = "non_compliant"
	StatusNotAddressed       Status = "not_addressed"
)

// Icon returns the single-character marker used in rendered reports.
func (s Status) Icon() string {
	switch s {
	case StatusFullyCompliant:
		return "✓"
	case StatusPartiallyCompliant:
		return "◐"
	case StatusNonCompliant:
		return "✗"
	case StatusNotAddressed:
		return "○"
	default:
		return "?"
	}
}

// Requirement is one discrete, traceable obligation extracted from RFP text.
// Requirements are immutable after extraction; a re-extraction produces a
// fresh list rather than merging with a prior one.
type Requirement struct {
	// ID is a stable short identifier, unique within one extraction pass.
	// Ordering carries no meaning.
	ID string `json:"id"`

	// Text is the requirement statement, verbatim or close paraphrase.
	Text string `json:"text"`

	// Category classifies the requirement.
	Category Category `json:"category"`

	// Priority ranges from 1 (critical) to 5 (optional).
	Priority int `json:"priority"`

	// SectionReference points into the source RFP (page/section), optional.
	SectionReference string `json:"section_reference,omitempty"`

	// Keywords are salient terms derived from Text, used only for
	// matching, never as compliance truth.
	Keywords []string `json:"keywords,omitempty"`

	// IsMandatory marks requirements whose absence disqualifies a proposal.
	IsMandatory bool `json:"is_mandatory"`
}

// MatchesKeywords reports whether text contains any of the requirement's
// keywords, case-insensitively.
func (r *Requirement) MatchesKeywords(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range r.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Mapping records the single best proposal section for one requirement.
// Every requirement in a matrix has exactly one mapping.
type Mapping struct {
	Requirement Requirement `json:"requirement"`

	// ProposalSection names the matched section, or "N/A" when the best
	// score fell below the match threshold.
	ProposalSection string `json:"proposal_section"`

	Status Status `json:"compliance_status"`

	// ResponseText is the excerpt of the section judged most relevant.
	ResponseText string `json:"response_text,omitempty"`

	SectionReference string `json:"section_reference"`

	// Confidence is the match score in [0,1] that produced Status.
	Confidence float64 `json:"confidence"`

	Notes string `json:"notes,omitempty"`
}

// IsCompliant reports whether the mapping is fully compliant.
func (m *Mapping) IsCompliant() bool {
	return m.Status == StatusFullyCompliant
}
