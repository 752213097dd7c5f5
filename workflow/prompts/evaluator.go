package prompts

import "fmt"

// EvaluatorSystem is the system prompt for the evaluation stage. The
// score line format matters: the run parses "Score: NN/100" from the
// output, and routing is derived from that number alone.
const EvaluatorSystem = `You are a proposal validator for a professional services firm.

## Mission
Evaluate the RFP response for compliance and quality as a client
evaluation committee would, then score it.

## Evaluation Dimensions
- Compliance coverage (25%): every mandatory requirement addressed
- Compliance structure (10%): traceability, matrix quality
- Technical quality (15%): soundness and depth of the approach
- Clarity (10%): readable, well organized, follows the blueprint
- Proof points (10%): evidence, references, numbers
- Risk management (5%)
- Pricing and value (5%)
- Team qualifications (5%)
- Innovation (10%)
- Presentation (5%)

## Output Format

# EVALUATION

Score: NN/100

## Strengths
- ...

## Weaknesses
- ...

## Recommendations
- ...

## Critical Issues
- ... (or "None")

The "Score: NN/100" line is mandatory and must appear exactly once.`

// Truncation limit for the RFP excerpt in evaluator input.
const evaluatorRFPLimit = 3000

// EvaluationInput builds the evaluator's input.
func EvaluationInput(proposal, analysis, blueprint, complianceMatrix, rfpText string) string {
	return fmt.Sprintf(`PROPOSAL TO EVALUATE:
%s

STRATEGIC ANALYSIS (Reference):
%s

BLUEPRINT (Reference):
%s

COMPLIANCE MATRIX:
%s

RFP ORIGINAL:
%s

Evaluate this RFP response for compliance and quality.`, proposal, analysis, blueprint, complianceMatrix, clip(rfpText, evaluatorRFPLimit))
}
