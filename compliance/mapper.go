package compliance

import (
	"sort"
	"strings"
)

// Status thresholds on the match score. Fixed, not tunable per call.
const (
	fullyCompliantThreshold     = 0.8
	partiallyCompliantThreshold = 0.5
	matchThreshold              = 0.3
)

// maxExcerptLength bounds the response excerpt carried on a mapping.
const maxExcerptLength = 200

// Mapper matches proposal sections against requirements. It is fully
// deterministic: no LLM call, no randomness, no hidden state, so the same
// requirements and section text always produce the same matrix.
type Mapper struct{}

// NewMapper creates a compliance mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map builds a compliance matrix by finding, for every requirement, the
// single best-scoring proposal section. Sections are never partitioned
// among requirements; one section may be the best match for many.
// Every requirement yields exactly one mapping.
func (m *Mapper) Map(requirements []Requirement, sections map[string]string) *Matrix {
	matrix := &Matrix{Requirements: requirements}

	names := sortedSectionNames(sections)
	for _, req := range requirements {
		matrix.Mappings = append(matrix.Mappings, m.findMapping(req, names, sections))
	}

	return matrix
}

// sortedSectionNames fixes the iteration order so that ties between
// equally-scoring sections resolve to the lexicographically first name.
func sortedSectionNames(sections map[string]string) []string {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Mapper) findMapping(req Requirement, names []string, sections map[string]string) Mapping {
	bestName := ""
	bestScore := 0.0

	for _, name := range names {
		// Strictly greater keeps the first of equally-scoring sections.
		if score := MatchScore(&req, sections[name]); score > bestScore {
			bestScore = score
			bestName = name
		}
	}

	if bestScore > matchThreshold {
		content := sections[bestName]
		return Mapping{
			Requirement:      req,
			ProposalSection:  bestName,
			Status:           assessStatus(bestScore),
			ResponseText:     relevantExcerpt(&req, content),
			SectionReference: bestName,
			Confidence:       bestScore,
		}
	}

	return Mapping{
		Requirement:      req,
		ProposalSection:  "N/A",
		Status:           StatusNotAddressed,
		ResponseText:     "",
		SectionReference: "N/A",
		Confidence:       0,
		Notes:            "Requirement not addressed in proposal",
	}
}

// MatchScore computes how well section content addresses a requirement.
// Two deterministic terms: 0.5 for any keyword hit, plus up to 0.5 scaled
// by the fraction of the requirement's own words found in the content.
// Capped at 1.0.
func MatchScore(req *Requirement, content string) float64 {
	score := 0.0

	if req.MatchesKeywords(content) {
		score += 0.5
	}

	reqWords := wordSet(req.Text)
	if len(reqWords) > 0 {
		contentWords := wordSet(content)
		overlap := 0
		for w := range reqWords {
			if _, ok := contentWords[w]; ok {
				overlap++
			}
		}
		score += float64(overlap) / float64(len(reqWords)) * 0.5
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func wordSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func assessStatus(score float64) Status {
	switch {
	case score > fullyCompliantThreshold:
		return StatusFullyCompliant
	case score > partiallyCompliantThreshold:
		return StatusPartiallyCompliant
	case score > matchThreshold:
		return StatusNonCompliant
	default:
		return StatusNotAddressed
	}
}

// relevantExcerpt pulls the sentences of content that hit the
// requirement's keywords, falling back to the leading text.
func relevantExcerpt(req *Requirement, content string) string {
	var relevant []string
	for _, sentence := range strings.Split(content, ".") {
		sentence = strings.TrimSpace(sentence)
		if sentence != "" && req.MatchesKeywords(sentence) {
			relevant = append(relevant, sentence)
			if len(relevant) == 2 {
				break
			}
		}
	}

	if len(relevant) > 0 {
		return truncate(strings.Join(relevant, ". "), maxExcerptLength)
	}
	return truncate(content, maxExcerptLength)
}
