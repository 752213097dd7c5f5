package model

import (
	"encoding/json"
	"sync"
)

// Registry manages model selection based on (agent, task) routes.
// It maps routes to preferred models with fallback chains.
type Registry struct {
	mu        sync.RWMutex
	routes    map[Route]*RouteConfig
	endpoints map[string]*EndpointConfig
	defaults  *DefaultsConfig
	health    *healthState
}

// RouteConfig defines model preferences for a route.
type RouteConfig struct {
	// Description explains what this route is for.
	Description string `json:"description"`

	// Preferred lists models in order of preference.
	// The first available model is used.
	Preferred []string `json:"preferred"`

	// Fallback lists backup models if all preferred fail.
	Fallback []string `json:"fallback"`
}

// EndpointConfig defines an available model endpoint.
type EndpointConfig struct {
	// Provider is the model provider (anthropic, openai, ollama).
	Provider string `json:"provider"`

	// URL is the API endpoint URL (for non-Anthropic providers).
	URL string `json:"url,omitempty"`

	// Model is the actual model identifier to send to the provider.
	Model string `json:"model"`

	// MaxTokens is the context window size.
	MaxTokens int `json:"max_tokens,omitempty"`

	// InputUSDPerMTok is the input token price in USD per million tokens.
	InputUSDPerMTok float64 `json:"input_usd_per_mtok,omitempty"`

	// OutputUSDPerMTok is the output token price in USD per million tokens.
	OutputUSDPerMTok float64 `json:"output_usd_per_mtok,omitempty"`
}

// DefaultsConfig holds default model settings.
type DefaultsConfig struct {
	// Model is the default model when no route matches.
	Model string `json:"model"`
}

// NewRegistry creates a new model registry with the given configuration.
func NewRegistry(routes map[Route]*RouteConfig, endpoints map[string]*EndpointConfig) *Registry {
	return &Registry{
		routes:    routes,
		endpoints: endpoints,
		defaults: &DefaultsConfig{
			Model: "default",
		},
	}
}

// NewDefaultRegistry creates a registry with sensible defaults.
// Used when no configuration is provided.
func NewDefaultRegistry() *Registry {
	return &Registry{
		routes: map[Route]*RouteConfig{
			{AgentAnalyst, TaskAnalysis}: {
				Description: "Strategic RFP analysis, deep reasoning",
				Preferred:   []string{"claude-opus", "claude-sonnet"},
				Fallback:    []string{"qwen"},
			},
			{AgentExtractor, TaskExtraction}: {
				Description: "Structured requirement extraction",
				Preferred:   []string{"claude-sonnet"},
				Fallback:    []string{"claude-haiku", "qwen"},
			},
			{AgentArchitect, TaskDesign}: {
				Description: "Proposal structure and scenario design",
				Preferred:   []string{"claude-sonnet"},
				Fallback:    []string{"claude-haiku", "qwen"},
			},
			{AgentProfiler, TaskProfiling}: {
				Description: "Team CV analysis against requirements",
				Preferred:   []string{"claude-sonnet"},
				Fallback:    []string{"claude-haiku", "qwen"},
			},
			{AgentWriter, TaskNarrative}: {
				Description: "Long-form proposal writing",
				Preferred:   []string{"claude-sonnet"},
				Fallback:    []string{"claude-haiku", "qwen"},
			},
			{AgentEvaluator, TaskEvaluation}: {
				Description: "Quality and compliance scoring",
				Preferred:   []string{"claude-opus", "claude-sonnet"},
				Fallback:    []string{"qwen"},
			},
		},
		endpoints: map[string]*EndpointConfig{
			"claude-opus": {
				Provider:         "anthropic",
				Model:            "claude-opus-4-5-20251101",
				MaxTokens:        200000,
				InputUSDPerMTok:  15.0,
				OutputUSDPerMTok: 75.0,
			},
			"claude-sonnet": {
				Provider:         "anthropic",
				Model:            "claude-sonnet-4-5-20250929",
				MaxTokens:        200000,
				InputUSDPerMTok:  3.0,
				OutputUSDPerMTok: 15.0,
			},
			"claude-haiku": {
				Provider:         "anthropic",
				Model:            "claude-haiku-4-5-20251001",
				MaxTokens:        200000,
				InputUSDPerMTok:  0.80,
				OutputUSDPerMTok: 4.0,
			},
			"qwen": {
				Provider:  "ollama",
				URL:       "http://localhost:11434/v1",
				Model:     "qwen2.5:14b",
				MaxTokens: 128000,
			},
		},
		defaults: &DefaultsConfig{
			Model: "claude-sonnet",
		},
	}
}

// Resolve returns the preferred model for a route.
// Resolution order: exact route, agent default route, registry default.
func (r *Registry) Resolve(route Route) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cfg, ok := r.routes[route]; ok && len(cfg.Preferred) > 0 {
		return cfg.Preferred[0]
	}
	if cfg, ok := r.routes[DefaultRoute(route.Agent)]; ok && len(cfg.Preferred) > 0 {
		return cfg.Preferred[0]
	}
	return r.defaults.Model
}

// GetFallbackChain returns all models for a route in order of preference.
// Used by the LLM client when the primary fails to try alternatives.
func (r *Registry) GetFallbackChain(route Route) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.routes[route]
	if !ok {
		cfg, ok = r.routes[DefaultRoute(route.Agent)]
	}
	if ok {
		chain := make([]string, 0, len(cfg.Preferred)+len(cfg.Fallback))
		chain = append(chain, cfg.Preferred...)
		chain = append(chain, cfg.Fallback...)
		return chain
	}
	return []string{r.defaults.Model}
}

// GetEndpoint returns the endpoint configuration for a model name.
// Returns nil if the model is not configured.
func (r *Registry) GetEndpoint(modelName string) *EndpointConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.endpoints[modelName]
}

// SetRoute updates or adds a route configuration.
func (r *Registry) SetRoute(route Route, cfg *RouteConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.routes == nil {
		r.routes = make(map[Route]*RouteConfig)
	}
	r.routes[route] = cfg
}

// SetEndpoint updates or adds an endpoint configuration.
func (r *Registry) SetEndpoint(name string, cfg *EndpointConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.endpoints == nil {
		r.endpoints = make(map[string]*EndpointConfig)
	}
	r.endpoints[name] = cfg
}

// SetDefault sets the default model.
func (r *Registry) SetDefault(model string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.defaults == nil {
		r.defaults = &DefaultsConfig{}
	}
	r.defaults.Model = model
}

// ListRoutes returns all configured routes.
func (r *Registry) ListRoutes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make([]Route, 0, len(r.routes))
	for route := range r.routes {
		routes = append(routes, route)
	}
	return routes
}

// ListEndpoints returns all configured endpoint names.
func (r *Registry) ListEndpoints() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.endpoints))
	for name := range r.endpoints {
		names = append(names, name)
	}
	return names
}

// routeKey is the JSON representation of a route for marshaling.
type routeKey struct {
	Agent Agent        `json:"agent"`
	Task  Task         `json:"task"`
	Cfg   *RouteConfig `json:"config"`
}

// MarshalJSON implements json.Marshaler for the registry.
func (r *Registry) MarshalJSON() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make([]routeKey, 0, len(r.routes))
	for route, cfg := range r.routes {
		routes = append(routes, routeKey{Agent: route.Agent, Task: route.Task, Cfg: cfg})
	}

	return json.Marshal(struct {
		Routes    []routeKey                 `json:"routes"`
		Endpoints map[string]*EndpointConfig `json:"endpoints"`
		Defaults  *DefaultsConfig            `json:"defaults,omitempty"`
	}{
		Routes:    routes,
		Endpoints: r.endpoints,
		Defaults:  r.defaults,
	})
}

// UnmarshalJSON implements json.Unmarshaler for the registry.
func (r *Registry) UnmarshalJSON(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tmp struct {
		Routes    []routeKey                 `json:"routes"`
		Endpoints map[string]*EndpointConfig `json:"endpoints"`
		Defaults  *DefaultsConfig            `json:"defaults,omitempty"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}

	r.routes = make(map[Route]*RouteConfig, len(tmp.Routes))
	for _, entry := range tmp.Routes {
		r.routes[Route{Agent: entry.Agent, Task: entry.Task}] = entry.Cfg
	}
	r.endpoints = tmp.Endpoints
	r.defaults = tmp.Defaults
	return nil
}
