package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/rfpflow/llm"
	"github.com/c360studio/rfpflow/llm/testutil"
	"github.com/c360studio/rfpflow/model"
	"github.com/c360studio/rfpflow/notify"
	"github.com/c360studio/rfpflow/workflow/prompts"
)

const extractionFixture = `ID: R001
TEXT: The vendor must provide 24/7 technical support coverage.
MANDATORY: yes
CATEGORY: technical
PRIORITY: 1
SECTION: 3.2
---
ID: R002
TEXT: The vendor should describe optional training services.
MANDATORY: no
CATEGORY: business
PRIORITY: 4
SECTION: 4.1`

const proposalFixture = `# Proposal

## Executive Summary
We respond to every mandatory requirement in this RFP.

## Support Services
We provide 24/7 technical support coverage with follow-the-sun staffing.

## Training
We describe optional training services for administrators.`

// stagedResponder returns canned content per agent. Evaluator responses
// come from evaluations in order; the last one repeats.
func stagedResponder(evaluations ...string) func(llm.Request) (*llm.Response, error) {
	var evalIdx int
	return func(req llm.Request) (*llm.Response, error) {
		switch req.Agent {
		case model.AgentExtractor:
			return &llm.Response{Content: extractionFixture}, nil
		case model.AgentAnalyst:
			return &llm.Response{Content: "# RFP ANALYSIS\nGo decision, strong fit."}, nil
		case model.AgentArchitect:
			return &llm.Response{Content: "# PROPOSAL BLUEPRINT\n### 1. Executive Summary"}, nil
		case model.AgentProfiler:
			return &llm.Response{Content: "# TEAM PROFILES\nTEAM FIT: 8/10"}, nil
		case model.AgentWriter:
			return &llm.Response{Content: proposalFixture}, nil
		case model.AgentEvaluator:
			i := evalIdx
			if i >= len(evaluations) {
				i = len(evaluations) - 1
			}
			evalIdx++
			return &llm.Response{Content: evaluations[i]}, nil
		}
		return nil, fmt.Errorf("unexpected agent %s", req.Agent)
	}
}

func countAgentCalls(mock *testutil.MockLLMClient, agent model.Agent) int {
	n := 0
	for _, req := range mock.CapturedRequests() {
		if req.Agent == agent {
			n++
		}
	}
	return n
}

func TestEngineRunValidatedFirstPass(t *testing.T) {
	mock := &testutil.MockLLMClient{RespondFunc: stagedResponder("Score: 92/100\n\n## Strengths\n- Complete coverage")}
	engine := NewEngine(mock)

	st, err := engine.Run(context.Background(), "RFP: the vendor must provide support.", RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, StageValidated, st.Stage)
	assert.Equal(t, StatusValidated, st.Status)
	assert.Equal(t, 1, st.Iteration)
	assert.Equal(t, 92, st.Score)
	assert.Equal(t, DecisionAccept, st.Decision)
	assert.NotEmpty(t, st.RunID)
	assert.False(t, st.CompletedAt.IsZero())

	require.Len(t, st.Requirements, 2)
	assert.True(t, st.Requirements[0].IsMandatory)
	assert.False(t, st.Requirements[1].IsMandatory)
	assert.NotEmpty(t, st.ComplianceReport)
	assert.NotEmpty(t, st.Proposal)
	assert.NotEmpty(t, st.Log)

	// One call per stage, no profiler without CVs.
	assert.Equal(t, 5, mock.GetCallCount())
	assert.Equal(t, 0, countAgentCalls(mock, model.AgentProfiler))
}

func TestEngineRunEscalatesAfterMaxIterations(t *testing.T) {
	mock := &testutil.MockLLMClient{RespondFunc: stagedResponder("Score: 60/100")}
	engine := NewEngine(mock)

	st, err := engine.Run(context.Background(), "RFP text.", RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, StageEscalated, st.Stage)
	assert.Equal(t, StatusEscalated, st.Status)
	assert.Equal(t, DefaultMaxIterations, st.Iteration)
	assert.Equal(t, DecisionReviseContent, st.Decision)
	assert.Equal(t, DefaultMaxIterations, countAgentCalls(mock, model.AgentWriter))
	assert.Equal(t, DefaultMaxIterations, countAgentCalls(mock, model.AgentEvaluator))
}

// A literal "DECISION: VALIDE" next to a 42/100 score routes to
// restructure, not acceptance.
func TestEngineRunRestructureRoute(t *testing.T) {
	mock := &testutil.MockLLMClient{RespondFunc: stagedResponder(
		"Score: 42/100\n\nDECISION: VALIDE",
		"Score: 90/100",
	)}
	engine := NewEngine(mock)

	st, err := engine.Run(context.Background(), "RFP text.", RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, StatusValidated, st.Status)
	assert.Equal(t, 2, st.Iteration)
	assert.Equal(t, 1, countAgentCalls(mock, model.AgentAnalyst))
	assert.Equal(t, 2, countAgentCalls(mock, model.AgentArchitect), "initial design plus one redesign")
}

func TestEngineRunReanalyzeRoute(t *testing.T) {
	mock := &testutil.MockLLMClient{RespondFunc: stagedResponder(
		"Score: 10/100",
		"Score: 95/100",
	)}
	engine := NewEngine(mock)

	st, err := engine.Run(context.Background(), "RFP text.", RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, StatusValidated, st.Status)
	assert.Equal(t, 2, st.Iteration)
	assert.Equal(t, 2, countAgentCalls(mock, model.AgentAnalyst), "initial analysis plus re-analysis")
	assert.Equal(t, 2, countAgentCalls(mock, model.AgentArchitect), "initial design plus redesign from new analysis")
}

func TestEngineRunStageFailureErrorsRun(t *testing.T) {
	base := stagedResponder("Score: 90/100")
	mock := &testutil.MockLLMClient{RespondFunc: func(req llm.Request) (*llm.Response, error) {
		if req.Agent == model.AgentWriter {
			return nil, errors.New("provider unavailable")
		}
		return base(req)
	}}
	engine := NewEngine(mock)

	st, err := engine.Run(context.Background(), "RFP text.", RunOptions{})
	require.Error(t, err)
	require.NotNil(t, st)

	assert.Equal(t, StageErrored, st.Stage)
	assert.Equal(t, StatusErrored, st.Status)
	assert.NotEmpty(t, st.Error)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, model.AgentWriter.String(), stageErr.Agent)
	assert.False(t, IsBudgetExceeded(err))
}

func TestEngineRunBudgetExhaustionDistinguishable(t *testing.T) {
	base := stagedResponder("Score: 90/100")
	mock := &testutil.MockLLMClient{RespondFunc: func(req llm.Request) (*llm.Response, error) {
		if req.Agent == model.AgentEvaluator {
			return nil, fmt.Errorf("reserving funds: %w", llm.ErrBudgetExceeded)
		}
		return base(req)
	}}
	engine := NewEngine(mock)

	st, err := engine.Run(context.Background(), "RFP text.", RunOptions{})
	require.Error(t, err)
	assert.Equal(t, StatusErrored, st.Status)
	assert.True(t, IsBudgetExceeded(err))
}

// A failed extraction degrades the run rather than aborting it: zero
// requirements, vacuous 100% compliance, and an anomaly flag.
func TestEngineRunExtractionDegraded(t *testing.T) {
	base := stagedResponder("Score: 90/100")
	mock := &testutil.MockLLMClient{RespondFunc: func(req llm.Request) (*llm.Response, error) {
		if req.Agent == model.AgentExtractor {
			return nil, errors.New("model timeout")
		}
		return base(req)
	}}
	engine := NewEngine(mock)

	st, err := engine.Run(context.Background(), "RFP text.", RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, StatusValidated, st.Status)
	assert.Empty(t, st.Requirements)
	assert.True(t, st.HasAnomaly(AnomalyExtractionDegraded))
	assert.Equal(t, 100.0, st.ComplianceScore)
}

func TestEngineRunUnknownTemplate(t *testing.T) {
	mock := &testutil.MockLLMClient{RespondFunc: stagedResponder("Score: 90/100")}
	engine := NewEngine(mock)

	st, err := engine.Run(context.Background(), "RFP text.", RunOptions{TemplateName: "no-such-template"})
	require.Error(t, err)
	assert.Equal(t, StatusErrored, st.Status)
	assert.Equal(t, 0, mock.GetCallCount(), "no LLM calls before template validation")
}

func TestEngineRunTeamProfiles(t *testing.T) {
	mock := &testutil.MockLLMClient{RespondFunc: stagedResponder("Score: 92/100")}
	engine := NewEngine(mock)

	st, err := engine.Run(context.Background(), "RFP text.", RunOptions{
		TeamCVs: []prompts.ProfileEntry{{Name: "jane-doe", Content: "15 years of cloud operations."}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, countAgentCalls(mock, model.AgentProfiler))
	assert.Contains(t, st.TeamProfiles, "TEAM PROFILES")

	var writerInput string
	for _, req := range mock.CapturedRequests() {
		if req.Agent == model.AgentWriter {
			writerInput = req.Messages[1].Content
		}
	}
	assert.Contains(t, writerInput, "TEAM PROFILES", "profiles threaded into the writer input")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func TestEngineRunPublishesTransitions(t *testing.T) {
	mock := &testutil.MockLLMClient{RespondFunc: stagedResponder("Score: 92/100")}
	pub := &recordingPublisher{}
	engine := NewEngine(mock, WithPublisher(pub))

	st, err := engine.Run(context.Background(), "RFP text.", RunOptions{RunID: "run-42"})
	require.NoError(t, err)
	require.Equal(t, StatusValidated, st.Status)

	var stages []string
	for _, ev := range pub.events {
		assert.Equal(t, "run-42", ev.RunID)
		stages = append(stages, ev.To)
	}
	assert.Equal(t, []string{
		string(StageStructurePending),
		string(StageContentPending),
		string(StageEvaluationPending),
		string(StageValidated),
	}, stages)
}

func TestEngineRunLedgerSummaryAttached(t *testing.T) {
	mock := &testutil.MockLLMClient{RespondFunc: stagedResponder("Score: 92/100")}
	ledger := llm.NewLedger(10)
	engine := NewEngine(mock, WithLedger(ledger))

	st, err := engine.Run(context.Background(), "RFP text.", RunOptions{})
	require.NoError(t, err)
	require.NotNil(t, st.Costs)
	assert.Equal(t, 10.0, st.Costs.LimitUSD)
}

func TestEngineRunHonorsCancellation(t *testing.T) {
	mock := &testutil.MockLLMClient{RespondFunc: stagedResponder("Score: 92/100")}
	engine := NewEngine(mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := engine.Run(ctx, "RFP text.", RunOptions{})
	require.Error(t, err)
	assert.Equal(t, StatusErrored, st.Status)
	assert.ErrorIs(t, err, context.Canceled)
}
