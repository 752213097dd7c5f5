// Package config provides configuration loading and management for rfpflow.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/rfpflow/structure"
)

// Config represents the complete rfpflow configuration
type Config struct {
	Workflow WorkflowConfig `yaml:"workflow"`
	Model    ModelConfig    `yaml:"model"`
	Budget   BudgetConfig   `yaml:"budget"`
	NATS     NATSConfig     `yaml:"nats"`
	Store    StoreConfig    `yaml:"store"`
}

// WorkflowConfig configures the run loop
type WorkflowConfig struct {
	// MaxIterations bounds the content/evaluation loop (default: 3)
	MaxIterations int `yaml:"max_iterations"`
	// QualityThreshold is the acceptance score 1-100 (default: 85)
	QualityThreshold int `yaml:"quality_threshold"`
	// Template is the default proposal template name
	Template string `yaml:"template"`
}

// ModelConfig configures the LLM model settings
type ModelConfig struct {
	// Default is the default model to use (e.g., "qwen2.5-coder:32b")
	Default string `yaml:"default"`
	// Endpoint is the local model API endpoint (default: http://localhost:11434/v1)
	Endpoint string `yaml:"endpoint"`
	// Temperature controls randomness (0.0-1.0, default: 0.2)
	Temperature float64 `yaml:"temperature"`
	// Timeout is the maximum time to wait for model responses
	Timeout time.Duration `yaml:"timeout"`
}

// BudgetConfig configures cost tracking
type BudgetConfig struct {
	// LimitUSD caps total spend per process (0 = unlimited)
	LimitUSD float64 `yaml:"limit_usd"`
	// HistoryPath is the SQLite call-history database (empty = disabled)
	HistoryPath string `yaml:"history_path"`
}

// NATSConfig configures transition event publishing
type NATSConfig struct {
	// URL is the NATS server URL (empty = publishing disabled)
	URL string `yaml:"url"`
}

// StoreConfig configures run snapshot persistence
type StoreConfig struct {
	// Path is the SQLite run-store database (empty = in-memory)
	Path string `yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Workflow: WorkflowConfig{
			MaxIterations:    3,
			QualityThreshold: 85,
			Template:         "government_canada",
		},
		Model: ModelConfig{
			Default:     "qwen2.5-coder:32b",
			Endpoint:    "http://localhost:11434/v1",
			Temperature: 0.2,
			Timeout:     5 * time.Minute,
		},
		Budget: BudgetConfig{
			LimitUSD: 0, // Unlimited
		},
		NATS: NATSConfig{
			URL: "",
		},
		Store: StoreConfig{
			Path: "",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Workflow.MaxIterations < 1 {
		return fmt.Errorf("workflow.max_iterations must be at least 1")
	}
	if c.Workflow.QualityThreshold < 1 || c.Workflow.QualityThreshold > 100 {
		return fmt.Errorf("workflow.quality_threshold must be between 1 and 100")
	}
	if c.Workflow.Template != "" && structure.GetTemplate(c.Workflow.Template) == nil {
		return fmt.Errorf("workflow.template %q is not a known template", c.Workflow.Template)
	}
	if c.Model.Default == "" {
		return fmt.Errorf("model.default is required")
	}
	if c.Model.Endpoint == "" {
		return fmt.Errorf("model.endpoint is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Budget.LimitUSD < 0 {
		return fmt.Errorf("budget.limit_usd cannot be negative")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Workflow
	if other.Workflow.MaxIterations != 0 {
		c.Workflow.MaxIterations = other.Workflow.MaxIterations
	}
	if other.Workflow.QualityThreshold != 0 {
		c.Workflow.QualityThreshold = other.Workflow.QualityThreshold
	}
	if other.Workflow.Template != "" {
		c.Workflow.Template = other.Workflow.Template
	}

	// Model
	if other.Model.Default != "" {
		c.Model.Default = other.Model.Default
	}
	if other.Model.Endpoint != "" {
		c.Model.Endpoint = other.Model.Endpoint
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}

	// Budget
	if other.Budget.LimitUSD != 0 {
		c.Budget.LimitUSD = other.Budget.LimitUSD
	}
	if other.Budget.HistoryPath != "" {
		c.Budget.HistoryPath = other.Budget.HistoryPath
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}

	// Store
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}
}
