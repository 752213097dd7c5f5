package prompts

import (
	"fmt"
	"strings"
)

// ProfilerSystem is the system prompt for the team profiling stage.
const ProfilerSystem = `You are a team expertise analyst for a professional services firm.

## Mission
Match the proposed team's CVs against the RFP's team and qualification
requirements, and produce tailored team profiles ready to insert into
the proposal.

## Analysis Rules
1. For each team member: name, proposed role, years of relevant
   experience, certifications, and the 3-5 most relevant achievements
   for THIS RFP.
2. Map each team-related requirement to the member(s) who satisfy it.
3. Identify gaps: requirements no member covers, with a mitigation
   suggestion (training, partner, subcontractor).
4. Score the overall team fit X/10 with a one-line justification.

## Output Format

# TEAM PROFILES

## TEAM FIT: X/10
[One line justification]

## PROFILES
One block per member, proposal-ready prose.

## REQUIREMENT COVERAGE
[Requirement ID -> member(s)]

## GAPS
[Uncovered requirements with mitigation, or "None"]`

// ProfileEntry is one CV passed to the profiling stage.
type ProfileEntry struct {
	Name    string
	Content string
}

// ProfilingInput builds the profiler's input from parsed CVs, the
// team-related requirement summary and the analysis excerpt.
func ProfilingInput(cvs []ProfileEntry, requirements, analysisExcerpt string) string {
	var b strings.Builder
	b.WriteString("TEAM CVS:\n")
	for _, cv := range cvs {
		fmt.Fprintf(&b, "\n--- %s ---\n%s\n", cv.Name, cv.Content)
	}
	fmt.Fprintf(&b, "\n%s\n\nEVALUATION CONTEXT:\n%s\n", requirements, analysisExcerpt)
	b.WriteString("\nAnalyze the team against the RFP requirements and produce the tailored profiles.")
	return b.String()
}
