package compliance_test

import (
	"strings"
	"testing"

	"github.com/c360studio/rfpflow/compliance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapperEveryRequirementGetsOneMapping(t *testing.T) {
	reqs := []compliance.Requirement{
		{ID: "R001", Text: "must provide 24/7 support", Keywords: []string{"Support"}, IsMandatory: true},
		{ID: "R002", Text: "totally unrelated quantum blockchain requirement", IsMandatory: false},
	}
	sections := map[string]string{
		"Support Services": "We provide 24/7 support with guaranteed response times. Our Support team is on call.",
		"Pricing":          "Fixed monthly fee.",
	}

	matrix := compliance.NewMapper().Map(reqs, sections)

	require.Len(t, matrix.Mappings, 2)

	m1 := matrix.Mappings[0]
	assert.Equal(t, "Support Services", m1.ProposalSection)
	assert.Equal(t, compliance.StatusFullyCompliant, m1.Status)
	assert.Greater(t, m1.Confidence, 0.8)
	assert.NotEmpty(t, m1.ResponseText)

	// Unmatched requirement still yields a mapping record
	m2 := matrix.Mappings[1]
	assert.Equal(t, "N/A", m2.ProposalSection)
	assert.Equal(t, compliance.StatusNotAddressed, m2.Status)
	assert.Equal(t, 0.0, m2.Confidence)
	assert.Empty(t, m2.ResponseText)
}

func TestMapperScenarioMandatoryFullyAddressed(t *testing.T) {
	// One mandatory requirement fully addressed, one optional unaddressed:
	// the score counts only the mandatory one, so 100%.
	reqs := []compliance.Requirement{
		{ID: "R001", Text: "must provide 24/7 support", Keywords: []string{"Support"}, IsMandatory: true},
		{ID: "R002", Text: "should offer onsite training workshops", IsMandatory: false},
	}
	sections := map[string]string{
		"Support Services": "Our Support desk must provide 24/7 support coverage every day of the year.",
	}

	matrix := compliance.NewMapper().Map(reqs, sections)

	assert.Equal(t, 100.0, matrix.Score())
	assert.True(t, matrix.IsFullyCompliant())

	gaps := matrix.Gaps()
	require.Len(t, gaps, 1)
	assert.Equal(t, "R002", gaps[0].ID)
}

func TestMapperDeterministic(t *testing.T) {
	reqs := []compliance.Requirement{
		{ID: "R001", Text: "must provide managed Database hosting", Keywords: []string{"Database"}, IsMandatory: true},
	}
	// Both sections score identically; the lexicographically first wins.
	sections := map[string]string{
		"Beta":  "must provide managed Database hosting",
		"Alpha": "must provide managed Database hosting",
	}

	first := compliance.NewMapper().Map(reqs, sections)
	for range 20 {
		again := compliance.NewMapper().Map(reqs, sections)
		assert.Equal(t, first.Mappings[0].ProposalSection, again.Mappings[0].ProposalSection)
	}
	assert.Equal(t, "Alpha", first.Mappings[0].ProposalSection)
}

func TestMatchScoreThresholds(t *testing.T) {
	tests := []struct {
		name    string
		req     compliance.Requirement
		content string
		want    compliance.Status
	}{
		{
			name:    "keyword hit plus full overlap",
			req:     compliance.Requirement{Text: "provide cloud backup", Keywords: []string{"cloud"}},
			content: "we provide cloud backup services",
			want:    compliance.StatusFullyCompliant,
		},
		{
			// Full word overlap without a keyword hit lands exactly on
			// 0.5, which does not clear the partial threshold.
			name:    "overlap only",
			req:     compliance.Requirement{Text: "alpha beta gamma delta", Keywords: []string{"Zeta"}},
			content: "alpha beta gamma delta",
			want:    compliance.StatusNonCompliant,
		},
		{
			name:    "keyword only",
			req:     compliance.Requirement{Text: "alpha beta gamma delta", Keywords: []string{"omega"}},
			content: "omega",
			want:    compliance.StatusNonCompliant,
		},
		{
			name:    "keyword plus partial overlap",
			req:     compliance.Requirement{Text: "alpha beta gamma delta", Keywords: []string{"omega"}},
			content: "omega alpha beta",
			want:    compliance.StatusPartiallyCompliant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matrix := compliance.NewMapper().Map(
				[]compliance.Requirement{tt.req},
				map[string]string{"S": tt.content},
			)
			require.Len(t, matrix.Mappings, 1)
			assert.Equal(t, tt.want, matrix.Mappings[0].Status)
		})
	}
}

func TestMatchScoreMonotoneInOverlap(t *testing.T) {
	// Holding keyword presence fixed, adding overlapping tokens never
	// decreases the score.
	req := compliance.Requirement{
		Text:     "one two three four five six seven eight",
		Keywords: []string{"Anchor"},
	}

	words := strings.Fields(req.Text)
	prev := -1.0
	for i := 0; i <= len(words); i++ {
		content := "Anchor " + strings.Join(words[:i], " ")
		score := compliance.MatchScore(&req, content)
		assert.GreaterOrEqual(t, score, prev, "overlap %d", i)
		assert.LessOrEqual(t, score, 1.0)
		prev = score
	}
}

func TestMatchScoreCappedAtOne(t *testing.T) {
	req := compliance.Requirement{Text: "exact match", Keywords: []string{"exact"}}
	score := compliance.MatchScore(&req, "exact match")
	assert.Equal(t, 1.0, score)
}

func TestMapperEmptySections(t *testing.T) {
	reqs := []compliance.Requirement{
		{ID: "R001", Text: "must provide support", IsMandatory: true},
	}

	matrix := compliance.NewMapper().Map(reqs, map[string]string{})

	require.Len(t, matrix.Mappings, 1)
	assert.Equal(t, compliance.StatusNotAddressed, matrix.Mappings[0].Status)
	assert.Equal(t, 0.0, matrix.Score())
}
