package prompts

import (
	"fmt"
	"strings"

	"github.com/c360studio/rfpflow/compliance"
)

// Per-consumer requirement formatting. Each stage tolerates a different
// level of detail, so each gets its own renderer.

// analysisLimit caps the requirement list passed to the analyst.
const analysisLimit = 50

// RequirementsForAnalysis renders a compact requirement list for the
// analyst, capped at analysisLimit entries.
func RequirementsForAnalysis(reqs []compliance.Requirement) string {
	if len(reqs) > analysisLimit {
		reqs = reqs[:analysisLimit]
	}
	lines := make([]string, 0, len(reqs))
	for _, r := range reqs {
		lines = append(lines, fmt.Sprintf("- [%s] %s (Priority: %d, Mandatory: %t)", r.ID, r.Text, r.Priority, r.IsMandatory))
	}
	return strings.Join(lines, "\n")
}

// RequirementsForDesign renders the full requirement list with category
// and priority for the architect.
func RequirementsForDesign(reqs []compliance.Requirement) string {
	lines := []string{"Requirements to address in proposal:"}
	for _, r := range reqs {
		lines = append(lines, fmt.Sprintf("  %s: %s", r.ID, r.Text))
		lines = append(lines, fmt.Sprintf("    Category: %s, Priority: %d", r.Category, r.Priority))
	}
	return strings.Join(lines, "\n")
}

// RequirementsForNarrative renders only the mandatory requirements,
// each flagged, for the writer.
func RequirementsForNarrative(reqs []compliance.Requirement) string {
	lines := []string{"CRITICAL: Each requirement MUST be addressed explicitly in the proposal:"}
	for _, r := range reqs {
		if !r.IsMandatory {
			continue
		}
		lines = append(lines, fmt.Sprintf("\n%s (MANDATORY): %s", r.ID, r.Text))
	}
	return strings.Join(lines, "\n")
}

var teamTerms = []string{
	"team", "personnel", "experience", "qualification", "certification",
	"expertise", "skills", "cv", "resume",
	"équipe", "expérience", "compétence",
}

// otherLimit caps the non-team context requirements for the profiler.
const otherLimit = 10

// RequirementsForProfiling partitions requirements into team-related
// and other, listing team-related first and capping the rest.
func RequirementsForProfiling(reqs []compliance.Requirement) string {
	var team, other []compliance.Requirement
	for _, r := range reqs {
		lower := strings.ToLower(r.Text)
		matched := false
		for _, term := range teamTerms {
			if strings.Contains(lower, term) {
				matched = true
				break
			}
		}
		if matched {
			team = append(team, r)
		} else {
			other = append(other, r)
		}
	}

	lines := []string{"RFP Requirements (focus on team/qualifications-related):"}
	if len(team) > 0 {
		lines = append(lines, "\n** TEAM-RELATED REQUIREMENTS (HIGH PRIORITY FOR CV MATCHING):")
		for _, r := range team {
			lines = append(lines, fmt.Sprintf("  %s: %s", r.ID, r.Text))
			lines = append(lines, fmt.Sprintf("    Priority: %d, Mandatory: %t", r.Priority, r.IsMandatory))
		}
	}
	if len(other) > otherLimit {
		other = other[:otherLimit]
	}
	if len(other) > 0 {
		lines = append(lines, "\n** OTHER REQUIREMENTS (for context):")
		for _, r := range other {
			lines = append(lines, fmt.Sprintf("  %s: %s", r.ID, r.Text))
		}
	}
	return strings.Join(lines, "\n")
}
