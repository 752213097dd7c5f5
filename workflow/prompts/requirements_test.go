package prompts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/c360studio/rfpflow/compliance"
)

func sampleRequirements() []compliance.Requirement {
	return []compliance.Requirement{
		{ID: "R001", Text: "The vendor must provide 24/7 support.", Category: compliance.CategoryTechnical, Priority: 1, IsMandatory: true},
		{ID: "R002", Text: "The team must hold PMP certification.", Category: compliance.CategoryMandatory, Priority: 2, IsMandatory: true},
		{ID: "R003", Text: "The vendor may describe optional training.", Category: compliance.CategoryBusiness, Priority: 4, IsMandatory: false},
	}
}

func TestRequirementsForNarrativeMandatoryOnly(t *testing.T) {
	out := RequirementsForNarrative(sampleRequirements())
	if !strings.Contains(out, "R001 (MANDATORY)") || !strings.Contains(out, "R002 (MANDATORY)") {
		t.Errorf("missing mandatory requirements:\n%s", out)
	}
	if strings.Contains(out, "R003") {
		t.Errorf("optional requirement leaked into narrative input:\n%s", out)
	}
}

func TestRequirementsForAnalysisCapped(t *testing.T) {
	var reqs []compliance.Requirement
	for i := 0; i < analysisLimit+10; i++ {
		reqs = append(reqs, compliance.Requirement{ID: fmt.Sprintf("R%03d", i+1), Text: "req"})
	}
	out := RequirementsForAnalysis(reqs)
	if got := strings.Count(out, "\n") + 1; got != analysisLimit {
		t.Errorf("rendered %d requirements, want %d", got, analysisLimit)
	}
}

func TestRequirementsForProfilingPartition(t *testing.T) {
	out := RequirementsForProfiling(sampleRequirements())
	teamIdx := strings.Index(out, "TEAM-RELATED")
	otherIdx := strings.Index(out, "OTHER REQUIREMENTS")
	if teamIdx < 0 || otherIdx < 0 || teamIdx > otherIdx {
		t.Fatalf("expected team-related section before context section:\n%s", out)
	}
	if !strings.Contains(out[teamIdx:otherIdx], "R002") {
		t.Errorf("certification requirement not listed as team-related:\n%s", out)
	}
}

func TestNarrativeInputIncludesProfilesOnlyWhenPresent(t *testing.T) {
	with := NarrativeInput("blueprint", "reqs", "rfp", "profiles text")
	if !strings.Contains(with, "TEAM PROFILES") {
		t.Error("profiles missing from writer input")
	}
	without := NarrativeInput("blueprint", "reqs", "rfp", "")
	if strings.Contains(without, "TEAM PROFILES") {
		t.Error("profiles block present despite empty profiles")
	}
}

func TestNarrativeInputTruncatesRFP(t *testing.T) {
	long := strings.Repeat("x", writerRFPLimit+500)
	out := NarrativeInput("b", "r", long, "")
	if strings.Contains(out, strings.Repeat("x", writerRFPLimit+1)) {
		t.Error("RFP text not truncated")
	}
}
