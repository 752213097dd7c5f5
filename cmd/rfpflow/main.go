// Package main provides the rfpflow binary entry point.
// Rfpflow generates RFP responses through an iterative multi-agent
// workflow: requirement extraction, strategic analysis, structure
// design, content generation, and score-routed revision.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	// Register LLM providers via init()
	_ "github.com/c360studio/rfpflow/llm/providers"

	"github.com/spf13/cobra"

	"github.com/c360studio/rfpflow/config"
	"github.com/c360studio/rfpflow/llm"
	"github.com/c360studio/rfpflow/model"
	"github.com/c360studio/rfpflow/notify"
	"github.com/c360studio/rfpflow/storage"
	"github.com/c360studio/rfpflow/structure"
	"github.com/c360studio/rfpflow/workflow"
	"github.com/c360studio/rfpflow/workflow/prompts"
)

const (
	Version = "0.1.0"
	appName = "rfpflow"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "RFP response generator",
		Long: `Rfpflow turns an RFP document into a compliant proposal draft.

It extracts requirements, designs and writes the proposal with a set of
LLM agents, maps every requirement to proposal sections in a compliance
matrix, and iterates on evaluator feedback until the response meets the
quality threshold or needs human review.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(runCmd())
	cmd.AddCommand(templatesCmd())
	cmd.AddCommand(configCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func configureLogging(level string) {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

func runCmd() *cobra.Command {
	var (
		rfpPath      string
		templateName string
		cvPaths      []string
		outDir       string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full workflow against an RFP document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd.Context(), rfpPath, templateName, cvPaths, outDir)
		},
	}

	cmd.Flags().StringVar(&rfpPath, "rfp", "", "RFP document path (markdown or plain text)")
	cmd.Flags().StringVar(&templateName, "template", "", "Proposal template (see 'rfpflow templates')")
	cmd.Flags().StringSliceVar(&cvPaths, "cvs", nil, "Team CV paths for the optional profiling stage")
	cmd.Flags().StringVar(&outDir, "out", "out", "Output directory for generated documents")
	_ = cmd.MarkFlagRequired("rfp")

	return cmd
}

func runWorkflow(ctx context.Context, rfpPath, templateName string, cvPaths []string, outDir string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewLoader(slog.Default()).Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if templateName == "" {
		templateName = cfg.Workflow.Template
	}

	rfpText, err := os.ReadFile(rfpPath)
	if err != nil {
		return fmt.Errorf("read RFP: %w", err)
	}

	cvs, err := loadCVs(cvPaths)
	if err != nil {
		return err
	}

	registry := buildRegistry(cfg)
	ledger := llm.NewLedger(cfg.Budget.LimitUSD)

	clientOpts := []llm.ClientOption{
		llm.WithLogger(slog.Default()),
		llm.WithLedger(ledger),
	}
	if cfg.Budget.HistoryPath != "" {
		callStore, err := llm.OpenCallStore(cfg.Budget.HistoryPath)
		if err != nil {
			return fmt.Errorf("open call history: %w", err)
		}
		defer callStore.Close()
		clientOpts = append(clientOpts, llm.WithCallStore(callStore))
	}
	client := llm.NewClient(registry, clientOpts...)

	var publisher notify.Publisher = notify.Nop{}
	if cfg.NATS.URL != "" {
		natsPub, err := notify.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("connect NATS: %w", err)
		}
		defer natsPub.Close()
		publisher = natsPub
	}

	var store storage.RunStore = storage.NewMemoryStore()
	if cfg.Store.Path != "" {
		sqlStore, err := storage.OpenSQLiteStore(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer sqlStore.Close()
		store = sqlStore
	}

	engine := workflow.NewEngine(client,
		workflow.WithEngineLogger(slog.Default()),
		workflow.WithPublisher(publisher),
		workflow.WithLedger(ledger),
		workflow.WithMaxIterations(cfg.Workflow.MaxIterations),
		workflow.WithQualityThreshold(cfg.Workflow.QualityThreshold),
	)

	state, runErr := engine.Run(ctx, string(rfpText), workflow.RunOptions{
		TemplateName: templateName,
		TeamCVs:      cvs,
	})

	// Persist and report even on failure; the snapshot carries the log.
	if err := store.Put(context.WithoutCancel(ctx), state); err != nil {
		slog.Warn("persisting run snapshot", "run_id", state.RunID, "error", err)
	}
	if err := writeOutputs(state, outDir); err != nil {
		slog.Warn("writing outputs", "run_id", state.RunID, "error", err)
	}
	printSummary(state)

	return runErr
}

func loadCVs(paths []string) ([]prompts.ProfileEntry, error) {
	var cvs []prompts.ProfileEntry
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read CV %s: %w", path, err)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		cvs = append(cvs, prompts.ProfileEntry{Name: name, Content: string(content)})
	}
	return cvs, nil
}

// buildRegistry starts from the default routes and points the local
// endpoint at the configured model.
func buildRegistry(cfg *config.Config) *model.Registry {
	registry := model.NewDefaultRegistry()
	registry.SetEndpoint("qwen", &model.EndpointConfig{
		Provider:  "ollama",
		URL:       cfg.Model.Endpoint,
		Model:     cfg.Model.Default,
		MaxTokens: 128000,
	})
	return registry
}

func writeOutputs(state *workflow.State, outDir string) error {
	dir := filepath.Join(outDir, state.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	files := map[string]string{
		"analysis.md":          state.Analysis,
		"blueprint.md":         state.Blueprint,
		"team_profiles.md":     state.TeamProfiles,
		"proposal.md":          state.Proposal,
		"evaluation.md":        state.Evaluation,
		"compliance_matrix.md": state.ComplianceReport,
	}
	for name, content := range files {
		if content == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return err
		}
	}

	snapshot, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "state.json"), snapshot, 0o644)
}

func printSummary(state *workflow.State) {
	fmt.Printf("\nRun %s finished: %s\n", state.RunID, state.Status)
	fmt.Printf("  Iterations:       %d\n", state.Iteration)
	fmt.Printf("  Evaluation score: %d/100\n", state.Score)
	fmt.Printf("  Compliance score: %.1f%%\n", state.ComplianceScore)
	if len(state.ComplianceGaps) > 0 {
		fmt.Printf("  Gaps:             %s\n", strings.Join(state.ComplianceGaps, ", "))
	}
	for _, anomaly := range state.Anomalies {
		fmt.Printf("  Anomaly:          %s\n", anomaly)
	}
	if state.Costs != nil {
		fmt.Printf("  Cost:             $%.4f\n", state.Costs.SpentUSD)
	}
	if state.Error != "" {
		fmt.Printf("  Error:            %s\n", state.Error)
	}
}

func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List proposal templates",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range structure.ListTemplates() {
				tmpl := structure.GetTemplate(name)
				fmt.Printf("%-28s %d sections (%d required)\n", name, len(tmpl.Sections), len(tmpl.RequiredSections()))
			}
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the user config file with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.NewLoader(slog.Default()).EnsureUserConfig()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(slog.Default()).Load()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	})

	return cmd
}
