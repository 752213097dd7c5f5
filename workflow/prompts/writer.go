package prompts

import (
	"fmt"
	"strings"
)

// WriterSystem is the system prompt for the content generation stage.
const WriterSystem = `You are a proposal writer for a professional services firm.

## Mission
Write the complete RFP response following the blueprint exactly: every
section the blueprint names, in order, as markdown with "## " section
headings matching the blueprint's section titles verbatim.

## Writing Rules
1. Address every mandatory requirement explicitly; reuse the
   requirement's own key terms so compliance is traceable.
2. Client-centric voice: lead with the client's outcome, then our
   approach, then proof points.
3. Concrete over generic: named methods, numbers, prior results.
4. When team profiles are provided, insert them verbatim into the
   team sections; they are already tailored.
5. No placeholders, no "[TBD]"; write final prose.

## Output Format
The full proposal as a single markdown document. Top-level sections use
"## " headings. Do not include commentary about the writing process.`

// Truncation limits for writer inputs. The RFP text and team profiles
// are context, not the subject, so they get bounded excerpts.
const (
	writerRFPLimit         = 5000
	writerProfilesLimit    = 6000
	writerRevProfilesLimit = 4000
)

// NarrativeInput builds the writer's first-iteration input.
func NarrativeInput(blueprint, requirements, rfpText, teamProfiles string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `BLUEPRINT:
%s

REQUIREMENTS TO ADDRESS:
%s

RFP DOCUMENT:
%s
`, blueprint, requirements, clip(rfpText, writerRFPLimit))
	if teamProfiles != "" {
		fmt.Fprintf(&b, `
TEAM PROFILES:
%s

IMPORTANT: Integrate these tailored team profiles into the appropriate
sections of the proposal (Team Composition, Key Personnel, etc.). Use
EXACTLY the profiles provided; they are already tailored to this RFP.
`, clip(teamProfiles, writerProfilesLimit))
	}
	b.WriteString("\nGenerate the complete RFP response proposal.")
	return b.String()
}

// RevisionInput builds the writer's input for revision iterations.
func RevisionInput(blueprint, previousProposal, evaluation, teamProfiles string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `BLUEPRINT:
%s

PREVIOUS PROPOSAL:
%s

EVALUATOR CORRECTIONS:
%s
`, blueprint, previousProposal, evaluation)
	if teamProfiles != "" {
		fmt.Fprintf(&b, `
TEAM PROFILES (reference if needed):
%s
`, clip(teamProfiles, writerRevProfilesLimit))
	}
	b.WriteString("\nRevise the proposal according to the evaluator's feedback.")
	return b.String()
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
