package workflow

import "strings"

// Feedback is the structured critique pulled out of evaluator prose.
// It feeds the next revision pass and the final report.
type Feedback struct {
	Strengths       []string `json:"strengths,omitempty"`
	Weaknesses      []string `json:"weaknesses,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	CriticalIssues  []string `json:"critical_issues,omitempty"`
}

// IsEmpty reports whether no feedback items were found.
func (f *Feedback) IsEmpty() bool {
	return len(f.Strengths) == 0 && len(f.Weaknesses) == 0 &&
		len(f.Recommendations) == 0 && len(f.CriticalIssues) == 0
}

// ExtractFeedback scans evaluation text for section headings and
// collects the bullet items under each. Headings are matched loosely;
// French evaluator output uses the same section vocabulary.
func ExtractFeedback(evaluation string) Feedback {
	var fb Feedback
	var current *[]string

	for _, line := range strings.Split(evaluation, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		switch {
		case strings.Contains(lower, "strength") || strings.Contains(lower, "forces"):
			current = &fb.Strengths
		case strings.Contains(lower, "weakness") || strings.Contains(lower, "faiblesse") || strings.Contains(lower, "amélioration"):
			current = &fb.Weaknesses
		case strings.Contains(lower, "recommendation") || strings.Contains(lower, "recommandation"):
			current = &fb.Recommendations
		case strings.Contains(lower, "critical") || strings.Contains(lower, "critique"):
			current = &fb.CriticalIssues
		default:
			trimmed := strings.TrimSpace(line)
			if current == nil || !isBullet(trimmed) {
				continue
			}
			item := strings.TrimSpace(strings.TrimLeft(trimmed, "-•*"))
			if item != "" {
				*current = append(*current, item)
			}
		}
	}
	return fb
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*")
}
