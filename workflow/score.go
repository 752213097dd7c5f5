package workflow

import (
	"regexp"
	"strconv"
)

// Decision is the routing outcome derived from an evaluation score.
type Decision string

const (
	// DecisionAccept validates the proposal as ready to submit.
	DecisionAccept Decision = "accept"

	// DecisionReviseContent loops back to content generation.
	DecisionReviseContent Decision = "revise_content"

	// DecisionRestructure loops back to structure design.
	DecisionRestructure Decision = "restructure"

	// DecisionReanalyze loops back to strategic analysis.
	DecisionReanalyze Decision = "reanalyze"
)

// defaultScore is returned when no score pattern matches. It lands in
// the revision band deliberately: an unparseable evaluation should
// trigger another pass, never auto-accept or auto-reanalyze.
const defaultScore = 75

var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Score\s*:\s*(\d+)\s*/\s*100`),
	regexp.MustCompile(`(\d+)/100`),
	regexp.MustCompile(`(?i)Score\s*=\s*(\d+)`),
}

// ParseScore extracts a 0-100 score from evaluation text. Patterns are
// tried in order and the first match wins, clamped into [0,100]. Total:
// any input, including the empty string, yields a valid score.
func ParseScore(evaluation string) int {
	for _, pattern := range scorePatterns {
		m := pattern.FindStringSubmatch(evaluation)
		if m == nil {
			continue
		}
		score, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if score < 0 {
			return 0
		}
		if score > 100 {
			return 100
		}
		return score
	}
	return defaultScore
}

// ParseDecision derives the routing decision from evaluation text.
// The decision is a function of the parsed score ONLY. Explicit decision
// text in the evaluation (a literal "DECISION: VALIDE" and the like) is
// ignored: evaluators sometimes write an optimistic verdict next to a
// failing score, and the numeric threshold must win.
func ParseDecision(evaluation string) Decision {
	return decisionForScore(ParseScore(evaluation))
}

func decisionForScore(score int) Decision {
	switch {
	case score >= 85:
		return DecisionAccept
	case score >= 50:
		return DecisionReviseContent
	case score >= 30:
		return DecisionRestructure
	default:
		return DecisionReanalyze
	}
}
