package compliance

import (
	"fmt"
	"strings"
)

// Matrix aggregates the requirement list for one evaluation pass with the
// mapping of each requirement to its best proposal section. It is rebuilt
// from scratch every workflow iteration because proposal content changes
// each pass.
type Matrix struct {
	Requirements []Requirement `json:"requirements"`
	Mappings     []Mapping     `json:"mappings"`
}

// Score computes overall compliance as the percentage of mandatory
// requirements with a fully-compliant mapping. Non-mandatory requirements
// never affect the score. With no mandatory requirements the score is
// vacuously 100; callers must check for a degraded extraction before
// trusting that.
func (m *Matrix) Score() float64 {
	mandatory := 0
	for _, r := range m.Requirements {
		if r.IsMandatory {
			mandatory++
		}
	}
	if mandatory == 0 {
		return 100
	}

	compliant := 0
	for i := range m.Mappings {
		if m.Mappings[i].Requirement.IsMandatory && m.Mappings[i].IsCompliant() {
			compliant++
		}
	}

	return float64(compliant) / float64(mandatory) * 100
}

// IsFullyCompliant reports whether every mandatory requirement is met.
func (m *Matrix) IsFullyCompliant() bool {
	return m.Score() == 100
}

// Gaps returns requirements lacking a fully-compliant mapping, in the
// requirement list's original order. Derived on demand, never stored.
func (m *Matrix) Gaps() []Requirement {
	compliant := make(map[string]struct{})
	for i := range m.Mappings {
		if m.Mappings[i].IsCompliant() {
			compliant[m.Mappings[i].Requirement.ID] = struct{}{}
		}
	}

	var gaps []Requirement
	for _, r := range m.Requirements {
		if _, ok := compliant[r.ID]; !ok {
			gaps = append(gaps, r)
		}
	}
	return gaps
}

// ToReport renders the matrix as a stable human-readable markdown table,
// one row per mapping in requirement order, followed by a gaps section.
func (m *Matrix) ToReport() string {
	var b strings.Builder

	b.WriteString("# Compliance Matrix\n\n")
	fmt.Fprintf(&b, "**Overall Compliance**: %.1f%%\n\n", m.Score())
	b.WriteString("| Req ID | Category | Requirement | Status | Proposal Section | Reference |\n")
	b.WriteString("|--------|----------|-------------|--------|------------------|-----------|\n")

	for i := range m.Mappings {
		mp := &m.Mappings[i]
		req := &mp.Requirement
		fmt.Fprintf(&b, "| %s | %s | %s | %s %s | %s | %s |\n",
			req.ID, req.Category, truncate(req.Text, 50),
			mp.Status.Icon(), mp.Status,
			mp.ProposalSection, mp.SectionReference)
	}

	gaps := m.Gaps()
	if len(gaps) > 0 {
		b.WriteString("\n## Gaps (Not Addressed)\n\n")
		b.WriteString("| Req ID | Category | Requirement |\n")
		b.WriteString("|--------|----------|-------------|\n")
		for _, req := range gaps {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", req.ID, req.Category, truncate(req.Text, 80))
		}
	}

	return b.String()
}
