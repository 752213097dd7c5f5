package model

import (
	"encoding/json"
	"testing"
)

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	// Check that routes are configured
	routes := r.ListRoutes()
	if len(routes) != 6 {
		t.Errorf("expected 6 routes, got %d", len(routes))
	}

	// Check that endpoints are configured
	endpoints := r.ListEndpoints()
	if len(endpoints) < 3 {
		t.Errorf("expected at least 3 endpoints, got %d", len(endpoints))
	}
}

func TestRegistryResolve(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name     string
		route    Route
		expected string
	}{
		{"analyst analysis", Route{AgentAnalyst, TaskAnalysis}, "claude-opus"},
		{"extractor extraction", Route{AgentExtractor, TaskExtraction}, "claude-sonnet"},
		{"writer narrative", Route{AgentWriter, TaskNarrative}, "claude-sonnet"},
		{"evaluator evaluation", Route{AgentEvaluator, TaskEvaluation}, "claude-opus"},
		// Unknown task falls back to the agent's default route
		{"analyst unknown task", Route{AgentAnalyst, Task("summarize")}, "claude-opus"},
		// Unknown agent falls back to the registry default
		{"unknown agent", Route{Agent("clerk"), TaskAnalysis}, "claude-sonnet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.route)
			if got != tt.expected {
				t.Errorf("Resolve(%v) = %q, want %q", tt.route, got, tt.expected)
			}
		})
	}
}

func TestRegistryGetFallbackChain(t *testing.T) {
	r := NewDefaultRegistry()

	chain := r.GetFallbackChain(Route{AgentAnalyst, TaskAnalysis})

	if len(chain) < 2 {
		t.Fatalf("expected at least 2 models in chain, got %d", len(chain))
	}
	if chain[0] != "claude-opus" {
		t.Errorf("expected preferred model first, got %q", chain[0])
	}
	if chain[len(chain)-1] != "qwen" {
		t.Errorf("expected fallback model last, got %q", chain[len(chain)-1])
	}
}

func TestRegistryGetFallbackChainUnknownRoute(t *testing.T) {
	r := NewDefaultRegistry()

	chain := r.GetFallbackChain(Route{Agent("clerk"), Task("summarize")})
	if len(chain) != 1 || chain[0] != "claude-sonnet" {
		t.Errorf("expected default-only chain, got %v", chain)
	}
}

func TestRegistryGetEndpoint(t *testing.T) {
	r := NewDefaultRegistry()

	ep := r.GetEndpoint("claude-sonnet")
	if ep == nil {
		t.Fatal("expected endpoint for claude-sonnet")
	}
	if ep.Provider != "anthropic" {
		t.Errorf("expected anthropic provider, got %q", ep.Provider)
	}
	if ep.InputUSDPerMTok <= 0 {
		t.Error("expected input pricing to be set")
	}

	if r.GetEndpoint("nonexistent") != nil {
		t.Error("expected nil for unknown endpoint")
	}
}

func TestRegistrySetRouteAndEndpoint(t *testing.T) {
	r := NewRegistry(nil, nil)
	r.SetDefault("local")

	route := Route{AgentWriter, TaskNarrative}
	r.SetRoute(route, &RouteConfig{Preferred: []string{"local"}})
	r.SetEndpoint("local", &EndpointConfig{Provider: "ollama", Model: "llama3.2"})

	if got := r.Resolve(route); got != "local" {
		t.Errorf("Resolve = %q, want local", got)
	}
	if ep := r.GetEndpoint("local"); ep == nil || ep.Model != "llama3.2" {
		t.Errorf("unexpected endpoint %+v", ep)
	}
}

func TestRegistryJSONRoundTrip(t *testing.T) {
	r := NewDefaultRegistry()

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := &Registry{}
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(restored.ListRoutes()) != len(r.ListRoutes()) {
		t.Errorf("route count mismatch: %d vs %d",
			len(restored.ListRoutes()), len(r.ListRoutes()))
	}
	if got := restored.Resolve(Route{AgentAnalyst, TaskAnalysis}); got != "claude-opus" {
		t.Errorf("restored Resolve = %q, want claude-opus", got)
	}
}

func TestDefaultRoute(t *testing.T) {
	if got := DefaultRoute(AgentEvaluator); got.Task != TaskEvaluation {
		t.Errorf("DefaultRoute(evaluator).Task = %q", got.Task)
	}
	if got := DefaultRoute(Agent("clerk")); got.Task != TaskNarrative {
		t.Errorf("DefaultRoute(unknown).Task = %q, want narrative", got.Task)
	}
}
