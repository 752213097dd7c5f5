package compliance

import "regexp"

// keywordPattern matches capitalized words and acronyms, the terms most
// likely to be load-bearing in a requirement (product names, standards,
// proper nouns).
var keywordPattern = regexp.MustCompile(`\b[A-Z][a-z]+\b|\b[A-Z]{2,}\b`)

// maxKeywords bounds how many terms a requirement carries for matching.
const maxKeywords = 5

// ExtractKeywords derives salient matching terms from requirement text.
// Returns up to maxKeywords unique terms in order of first appearance,
// so repeated extraction over the same text is deterministic.
func ExtractKeywords(text string) []string {
	matches := keywordPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, maxKeywords)
	keywords := make([]string, 0, maxKeywords)
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		keywords = append(keywords, m)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
