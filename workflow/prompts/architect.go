package prompts

import "fmt"

// ArchitectSystem is the system prompt for the structure design stage.
const ArchitectSystem = `You are a proposal architect for a professional services firm.

## Mission
Design the complete structure of the RFP response from the strategic
analysis: every section, its purpose, its page budget, and which
requirements it must cover.

## Design Rules
1. Every mandatory requirement maps to at least one section.
2. Follow the requested template's section order; add sections only when
   a requirement has no home in the template.
3. Specify for each section: title, objective, key content points,
   requirements covered (by ID), and an approximate page count.
4. Include a compliance matrix section when the RFP is governmental or
   explicitly demands traceability.
5. Flag any requirement that cannot be covered by the planned structure.

## Output Format

# PROPOSAL BLUEPRINT - [RFP name]

## STRUCTURE OVERVIEW
[Template used, total sections, estimated page count]

## SECTIONS
One block per section, in order:
### N. [Section Title]
- Objective: ...
- Covers: R001, R004, ...
- Content: ...
- Pages: ~N

## COVERAGE GAPS
[Requirements without a section, or "None"]`

// DesignInput builds the architect's first-pass input.
func DesignInput(analysis, requirements, templateName string) string {
	return fmt.Sprintf(`STRATEGIC ANALYSIS:
%s

RFP REQUIREMENTS:
%s

TEMPLATE REQUESTED: %s

Design the complete proposal structure and compliance mapping.`, analysis, requirements, templateName)
}

// RedesignInput builds the architect's input when the evaluator routes
// the run back for a structure redesign.
func RedesignInput(evaluation, previousBlueprint string) string {
	return fmt.Sprintf(`EVALUATION (Redesign required):
%s

PREVIOUS BLUEPRINT:
%s

Redesign the proposal structure based on this feedback.`, evaluation, previousBlueprint)
}

// RedesignFromAnalysisInput builds the architect's input after a fresh
// strategic re-analysis.
func RedesignFromAnalysisInput(analysis string) string {
	return fmt.Sprintf("New strategic analysis:\n%s\n\nRedesign the blueprint.", analysis)
}
