// Package model provides route-based model selection for workflow stages.
// Instead of hardcoding model names, stages specify an (agent, task) route
// and the registry resolves it to available models with fallback chains.
package model

// Agent identifies a workflow agent role.
type Agent string

const (
	// AgentAnalyst performs strategic RFP analysis.
	AgentAnalyst Agent = "analyst"

	// AgentArchitect designs the proposal structure.
	AgentArchitect Agent = "architect"

	// AgentProfiler analyzes team CVs against RFP requirements.
	AgentProfiler Agent = "profiler"

	// AgentWriter generates proposal content.
	AgentWriter Agent = "writer"

	// AgentEvaluator scores proposals for quality and compliance.
	AgentEvaluator Agent = "evaluator"

	// AgentExtractor extracts requirements from RFP text.
	AgentExtractor Agent = "extractor"
)

// IsValid checks if an agent string is a known agent.
func (a Agent) IsValid() bool {
	switch a {
	case AgentAnalyst, AgentArchitect, AgentProfiler, AgentWriter, AgentEvaluator, AgentExtractor:
		return true
	}
	return false
}

// String returns the string representation of the agent.
func (a Agent) String() string {
	return string(a)
}

// Task identifies the kind of work an agent is asked to do.
type Task string

const (
	// TaskAnalysis is deep strategic reasoning over RFP text.
	TaskAnalysis Task = "analysis"

	// TaskExtraction is structured requirement extraction.
	TaskExtraction Task = "extraction"

	// TaskDesign is proposal structure and scenario design.
	TaskDesign Task = "design"

	// TaskProfiling is team CV analysis.
	TaskProfiling Task = "profiling"

	// TaskNarrative is long-form proposal writing.
	TaskNarrative Task = "narrative"

	// TaskEvaluation is quality and compliance scoring.
	TaskEvaluation Task = "evaluation"
)

// IsValid checks if a task string is a known task.
func (t Task) IsValid() bool {
	switch t {
	case TaskAnalysis, TaskExtraction, TaskDesign, TaskProfiling, TaskNarrative, TaskEvaluation:
		return true
	}
	return false
}

// String returns the string representation of the task.
func (t Task) String() string {
	return string(t)
}

// Route is the lookup key for model selection: which agent doing which task.
type Route struct {
	Agent Agent `json:"agent" yaml:"agent"`
	Task  Task  `json:"task" yaml:"task"`
}

// AgentDefaultTasks maps each agent to its primary task.
// Used to resolve a route when only the agent is known.
var AgentDefaultTasks = map[Agent]Task{
	AgentAnalyst:   TaskAnalysis,
	AgentArchitect: TaskDesign,
	AgentProfiler:  TaskProfiling,
	AgentWriter:    TaskNarrative,
	AgentEvaluator: TaskEvaluation,
	AgentExtractor: TaskExtraction,
}

// DefaultRoute returns the default route for an agent.
// Falls back to TaskNarrative for unknown agents.
func DefaultRoute(agent Agent) Route {
	if task, ok := AgentDefaultTasks[agent]; ok {
		return Route{Agent: agent, Task: task}
	}
	return Route{Agent: agent, Task: TaskNarrative}
}
