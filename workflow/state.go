// Package workflow runs the iterative RFP response loop: strategic
// analysis, structure design, optional team profiling, then a bounded
// content/evaluation cycle with score-based routing back to earlier
// stages. A run always terminates in Validated, Escalated, or Errored.
package workflow

import (
	"time"

	"github.com/c360studio/rfpflow/compliance"
	"github.com/c360studio/rfpflow/llm"
)

// Stage is a node of the run state machine.
type Stage string

const (
	StageAnalysisPending   Stage = "analysis_pending"
	StageStructurePending  Stage = "structure_pending"
	StageContentPending    Stage = "content_pending"
	StageEvaluationPending Stage = "evaluation_pending"
	StageValidated         Stage = "validated"
	StageEscalated         Stage = "escalated"
	StageErrored           Stage = "errored"
)

// IsTerminal reports whether the stage ends the run.
func (s Stage) IsTerminal() bool {
	return s == StageValidated || s == StageEscalated || s == StageErrored
}

// Status summarizes a run's overall outcome.
type Status string

const (
	StatusInProgress Status = "in_progress"

	// StatusValidated means the proposal met the quality threshold.
	StatusValidated Status = "validated"

	// StatusEscalated means the iteration budget ran out without
	// acceptance. Needs a human, not a retry.
	StatusEscalated Status = "escalated"

	StatusErrored Status = "errored"
)

// Anomaly flags non-fatal conditions an operator should review.
type Anomaly string

const (
	// AnomalyExtractionDegraded: requirement extraction failed and the
	// run proceeded with zero requirements, so the compliance score is
	// the vacuous 100% and must not be read as success.
	AnomalyExtractionDegraded Anomaly = "extraction_degraded"

	// AnomalyMissingSections: generated content was missing required
	// template sections on the final pass.
	AnomalyMissingSections Anomaly = "missing_sections"
)

// LogEntry is one line of the run's chronological narrative.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Stage   Stage     `json:"stage"`
	Message string    `json:"message"`
}

// State is the full record of one workflow run. Stage outputs are
// overwritten in place on each revisit; the log keeps the history.
type State struct {
	RunID        string    `json:"run_id"`
	TemplateName string    `json:"template_name"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at,omitempty"`

	Stage     Stage  `json:"stage"`
	Status    Status `json:"status"`
	Iteration int    `json:"iteration"`

	Requirements []compliance.Requirement `json:"requirements,omitempty"`

	// Latest stage outputs.
	Analysis     string `json:"analysis,omitempty"`
	Blueprint    string `json:"blueprint,omitempty"`
	TeamProfiles string `json:"team_profiles,omitempty"`
	Proposal     string `json:"proposal,omitempty"`
	Evaluation   string `json:"evaluation,omitempty"`

	ComplianceReport string   `json:"compliance_report,omitempty"`
	ComplianceScore  float64  `json:"compliance_score"`
	ComplianceGaps   []string `json:"compliance_gaps,omitempty"`
	MissingSections  []string `json:"missing_sections,omitempty"`

	Score    int      `json:"score"`
	Decision Decision `json:"decision,omitempty"`
	Feedback Feedback `json:"feedback,omitempty"`

	Log       []LogEntry `json:"log"`
	Anomalies []Anomaly  `json:"anomalies,omitempty"`

	Costs *llm.BudgetSummary `json:"costs,omitempty"`

	// Error holds the failure message when Status is errored.
	Error string `json:"error,omitempty"`
}

// AppendLog records a log line against the current stage.
func (s *State) AppendLog(message string) {
	s.Log = append(s.Log, LogEntry{Time: time.Now(), Stage: s.Stage, Message: message})
}

// Flag records an anomaly once.
func (s *State) Flag(a Anomaly) {
	for _, existing := range s.Anomalies {
		if existing == a {
			return
		}
	}
	s.Anomalies = append(s.Anomalies, a)
}

// HasAnomaly reports whether the anomaly was flagged.
func (s *State) HasAnomaly(a Anomaly) bool {
	for _, existing := range s.Anomalies {
		if existing == a {
			return true
		}
	}
	return false
}
