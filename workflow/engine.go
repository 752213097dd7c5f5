package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/rfpflow/compliance"
	"github.com/c360studio/rfpflow/document"
	"github.com/c360studio/rfpflow/llm"
	"github.com/c360studio/rfpflow/model"
	"github.com/c360studio/rfpflow/notify"
	"github.com/c360studio/rfpflow/structure"
	"github.com/c360studio/rfpflow/workflow/prompts"
)

const (
	// DefaultMaxIterations bounds the content/evaluation loop.
	DefaultMaxIterations = 3

	// DefaultQualityThreshold is the acceptance score.
	DefaultQualityThreshold = 85

	// DefaultTemplate is used when the caller names none.
	DefaultTemplate = "government_canada"
)

// Engine drives workflow runs. Safe for concurrent runs: all per-run
// state lives in the State value, and the shared ledger serializes its
// own bookkeeping.
type Engine struct {
	client           llm.Completer
	extractor        *compliance.Extractor
	mapper           *compliance.Mapper
	ledger           *llm.Ledger
	publisher        notify.Publisher
	logger           *slog.Logger
	maxIterations    int
	qualityThreshold int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithPublisher sets the transition event publisher.
func WithPublisher(p notify.Publisher) EngineOption {
	return func(e *Engine) { e.publisher = p }
}

// WithLedger attaches a budget ledger whose summary is copied onto the
// finished state.
func WithLedger(l *llm.Ledger) EngineOption {
	return func(e *Engine) { e.ledger = l }
}

// WithMaxIterations overrides the iteration bound.
func WithMaxIterations(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithQualityThreshold overrides the acceptance score.
func WithQualityThreshold(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.qualityThreshold = n
		}
	}
}

// NewEngine builds an Engine on top of an LLM completer.
func NewEngine(client llm.Completer, opts ...EngineOption) *Engine {
	e := &Engine{
		client:           client,
		extractor:        compliance.NewExtractor(client),
		mapper:           compliance.NewMapper(),
		publisher:        notify.Nop{},
		logger:           slog.Default(),
		maxIterations:    DefaultMaxIterations,
		qualityThreshold: DefaultQualityThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOptions carries per-run inputs beyond the RFP text.
type RunOptions struct {
	// RunID correlates logs, costs and events. Generated when empty.
	RunID string

	// TemplateName selects the proposal template. DefaultTemplate when
	// empty; unknown names fail the run before any LLM call.
	TemplateName string

	// TeamCVs are parsed CV texts. When present, a team profiling
	// stage runs after structure design.
	TeamCVs []prompts.ProfileEntry
}

// Run executes the full workflow for one RFP and returns the final
// state. The returned state is never nil; on failure its Status is
// errored and the error is also returned. Cancellation is honored at
// stage boundaries.
func (e *Engine) Run(ctx context.Context, rfpText string, opts RunOptions) (*State, error) {
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	if opts.TemplateName == "" {
		opts.TemplateName = DefaultTemplate
	}

	st := &State{
		RunID:        opts.RunID,
		TemplateName: opts.TemplateName,
		StartedAt:    time.Now(),
		Stage:        StageAnalysisPending,
		Status:       StatusInProgress,
	}
	st.AppendLog("run started")

	tmpl := structure.GetTemplate(opts.TemplateName)
	if tmpl == nil {
		return e.fail(ctx, st, fmt.Errorf("unknown template %q", opts.TemplateName))
	}

	err := e.run(ctx, st, rfpText, tmpl, opts)
	e.finish(st)
	if err != nil {
		return e.fail(ctx, st, err)
	}
	return st, nil
}

func (e *Engine) run(ctx context.Context, st *State, rfpText string, tmpl *structure.Template, opts RunOptions) error {
	// Requirement extraction. A failed extraction degrades the run
	// instead of aborting it: zero requirements makes the compliance
	// score vacuously 100, so the anomaly flag is the only honest
	// signal left.
	st.AppendLog("requirement extraction")
	reqs, err := e.extractor.Extract(ctx, st.RunID, rfpText)
	if err != nil {
		if !errors.Is(err, compliance.ErrExtractionDegraded) {
			return err
		}
		st.Flag(AnomalyExtractionDegraded)
		st.AppendLog("extraction degraded, continuing with zero requirements")
		e.logger.Warn("requirement extraction degraded", "run_id", st.RunID, "error", err)
	}
	st.Requirements = reqs
	st.AppendLog(fmt.Sprintf("extracted %d requirements (%d mandatory)", len(reqs), countMandatory(reqs)))

	if err := e.analyze(ctx, st, rfpText, false); err != nil {
		return err
	}
	if err := e.design(ctx, st, false, ""); err != nil {
		return err
	}
	if err := e.profile(ctx, st, opts.TeamCVs); err != nil {
		return err
	}

	for {
		st.Iteration++
		if err := e.write(ctx, st, rfpText); err != nil {
			return err
		}
		e.mapCompliance(st, tmpl)
		if err := e.evaluate(ctx, st, rfpText); err != nil {
			return err
		}

		if st.Decision == DecisionAccept || st.Score >= e.qualityThreshold {
			e.transition(ctx, st, StageValidated, fmt.Sprintf("score %d/100, accepted", st.Score))
			st.Status = StatusValidated
			return nil
		}

		// Escalation is checked before committing to a loop-back.
		if st.Iteration >= e.maxIterations {
			e.transition(ctx, st, StageEscalated, fmt.Sprintf("iteration budget exhausted at score %d/100", st.Score))
			st.Status = StatusEscalated
			if len(st.MissingSections) > 0 {
				st.Flag(AnomalyMissingSections)
			}
			return nil
		}

		switch st.Decision {
		case DecisionReviseContent:
			e.transition(ctx, st, StageContentPending, fmt.Sprintf("score %d/100, revising content", st.Score))
		case DecisionRestructure:
			e.transition(ctx, st, StageStructurePending, fmt.Sprintf("score %d/100, restructuring", st.Score))
			if err := e.design(ctx, st, true, st.Evaluation); err != nil {
				return err
			}
		case DecisionReanalyze:
			e.transition(ctx, st, StageAnalysisPending, fmt.Sprintf("score %d/100, re-analyzing", st.Score))
			if err := e.analyze(ctx, st, rfpText, true); err != nil {
				return err
			}
			if err := e.designFromAnalysis(ctx, st); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) analyze(ctx context.Context, st *State, rfpText string, redo bool) error {
	e.transitionIfNew(ctx, st, StageAnalysisPending, "strategic analysis")
	input := prompts.AnalysisInput(rfpText, prompts.RequirementsForAnalysis(st.Requirements))
	if redo {
		input = prompts.ReanalysisInput(st.Evaluation, st.Analysis)
	}
	out, err := e.call(ctx, st, model.AgentAnalyst, model.TaskAnalysis, prompts.AnalystSystem, input)
	if err != nil {
		return err
	}
	st.Analysis = out
	st.AppendLog("analysis complete")
	return nil
}

func (e *Engine) design(ctx context.Context, st *State, redo bool, evaluation string) error {
	e.transitionIfNew(ctx, st, StageStructurePending, "structure design")
	input := prompts.DesignInput(st.Analysis, prompts.RequirementsForDesign(st.Requirements), st.TemplateName)
	if redo {
		input = prompts.RedesignInput(evaluation, st.Blueprint)
	}
	out, err := e.call(ctx, st, model.AgentArchitect, model.TaskDesign, prompts.ArchitectSystem, input)
	if err != nil {
		return err
	}
	st.Blueprint = out
	st.AppendLog("blueprint complete")
	return nil
}

func (e *Engine) designFromAnalysis(ctx context.Context, st *State) error {
	e.transitionIfNew(ctx, st, StageStructurePending, "structure redesign from new analysis")
	out, err := e.call(ctx, st, model.AgentArchitect, model.TaskDesign, prompts.ArchitectSystem, prompts.RedesignFromAnalysisInput(st.Analysis))
	if err != nil {
		return err
	}
	st.Blueprint = out
	st.AppendLog("blueprint complete")
	return nil
}

func (e *Engine) profile(ctx context.Context, st *State, cvs []prompts.ProfileEntry) error {
	if len(cvs) == 0 {
		return nil
	}
	st.AppendLog(fmt.Sprintf("team profiling: %d CVs", len(cvs)))
	excerpt := st.Analysis
	if len(excerpt) > 2000 {
		excerpt = excerpt[:2000]
	}
	input := prompts.ProfilingInput(cvs, prompts.RequirementsForProfiling(st.Requirements), excerpt)
	out, err := e.call(ctx, st, model.AgentProfiler, model.TaskProfiling, prompts.ProfilerSystem, input)
	if err != nil {
		return err
	}
	st.TeamProfiles = out
	st.AppendLog("team profiles generated")
	return nil
}

func (e *Engine) write(ctx context.Context, st *State, rfpText string) error {
	e.transitionIfNew(ctx, st, StageContentPending, fmt.Sprintf("content generation, iteration %d", st.Iteration))
	var input string
	if st.Iteration == 1 {
		input = prompts.NarrativeInput(st.Blueprint, prompts.RequirementsForNarrative(st.Requirements), rfpText, st.TeamProfiles)
	} else {
		input = prompts.RevisionInput(st.Blueprint, st.Proposal, st.Evaluation, st.TeamProfiles)
	}
	out, err := e.call(ctx, st, model.AgentWriter, model.TaskNarrative, prompts.WriterSystem, input)
	if err != nil {
		return err
	}
	st.Proposal = out
	st.AppendLog("proposal generated")
	return nil
}

// mapCompliance rebuilds the compliance matrix from the current
// proposal and validates it against the template. Pure and local, no
// LLM involved; runs once per iteration.
func (e *Engine) mapCompliance(st *State, tmpl *structure.Template) {
	sections := document.SplitSections(st.Proposal)
	matrix := e.mapper.Map(st.Requirements, sections)

	st.ComplianceReport = matrix.ToReport()
	st.ComplianceScore = matrix.Score()
	st.ComplianceGaps = nil
	for _, gap := range matrix.Gaps() {
		st.ComplianceGaps = append(st.ComplianceGaps, gap.ID)
	}
	st.AppendLog(fmt.Sprintf("compliance score %.1f%%, %d gaps", st.ComplianceScore, len(st.ComplianceGaps)))

	if ok, missing := tmpl.Validate(document.SectionNames(st.Proposal)); !ok {
		st.MissingSections = missing
		st.AppendLog("missing required sections: " + strings.Join(missing, ", "))
	} else {
		st.MissingSections = nil
	}
}

func (e *Engine) evaluate(ctx context.Context, st *State, rfpText string) error {
	e.transition(ctx, st, StageEvaluationPending, "evaluation")

	// Missing template sections ride along with the matrix shown to
	// the evaluator so revision feedback covers them.
	report := st.ComplianceReport
	if len(st.MissingSections) > 0 {
		report += "\n\nMISSING REQUIRED TEMPLATE SECTIONS: " + strings.Join(st.MissingSections, ", ")
	}
	input := prompts.EvaluationInput(st.Proposal, st.Analysis, st.Blueprint, report, rfpText)
	out, err := e.call(ctx, st, model.AgentEvaluator, model.TaskEvaluation, prompts.EvaluatorSystem, input)
	if err != nil {
		return err
	}
	st.Evaluation = out
	st.Score = ParseScore(out)
	st.Decision = ParseDecision(out)
	st.Feedback = ExtractFeedback(out)
	st.AppendLog(fmt.Sprintf("evaluated: score %d/100, decision %s", st.Score, st.Decision))
	e.logger.Info("evaluation complete",
		"run_id", st.RunID,
		"iteration", st.Iteration,
		"score", st.Score,
		"decision", st.Decision,
	)
	return nil
}

// call dispatches one stage LLM call. Any failure is fatal to the run;
// budget refusals stay distinguishable through the error chain.
func (e *Engine) call(ctx context.Context, st *State, agent model.Agent, task model.Task, system, user string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &StageError{Stage: st.Stage, Agent: agent.String(), Err: err}
	}
	resp, err := e.client.Complete(ctx, llm.Request{
		Agent: agent,
		Task:  task,
		RunID: st.RunID,
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", &StageError{Stage: st.Stage, Agent: agent.String(), Err: err}
	}
	return resp.Content, nil
}

func (e *Engine) transition(ctx context.Context, st *State, to Stage, cause string) {
	from := st.Stage
	st.Stage = to
	st.AppendLog(cause)
	if err := e.publisher.Publish(ctx, notify.Event{
		RunID: st.RunID,
		From:  string(from),
		To:    string(to),
		Cause: cause,
		Time:  time.Now(),
	}); err != nil {
		e.logger.Warn("publishing transition event", "run_id", st.RunID, "error", err)
	}
}

// transitionIfNew avoids a duplicate entry when the run is already in
// the target stage (the initial analysis and the first content pass).
func (e *Engine) transitionIfNew(ctx context.Context, st *State, to Stage, cause string) {
	if st.Stage == to {
		st.AppendLog(cause)
		return
	}
	e.transition(ctx, st, to, cause)
}

func (e *Engine) fail(ctx context.Context, st *State, err error) (*State, error) {
	e.transition(ctx, st, StageErrored, err.Error())
	st.Status = StatusErrored
	st.Error = err.Error()
	e.finish(st)
	e.logger.Error("run failed", "run_id", st.RunID, "error", err)
	return st, err
}

func (e *Engine) finish(st *State) {
	if st.CompletedAt.IsZero() {
		st.CompletedAt = time.Now()
	}
	if e.ledger != nil && st.Costs == nil {
		summary := e.ledger.Summary()
		st.Costs = &summary
	}
}

func countMandatory(reqs []compliance.Requirement) int {
	n := 0
	for _, r := range reqs {
		if r.IsMandatory {
			n++
		}
	}
	return n
}
