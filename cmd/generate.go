package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/threatsmith/povforge-cli/api/schemas"
	"github.com/threatsmith/povforge-cli/internal/config"
	"github.com/threatsmith/povforge-cli/internal/engine"
	"github.com/threatsmith/povforge-cli/internal/generator"
	"github.com/threatsmith/povforge-cli/internal/observability"
	"github.com/threatsmith/povforge-cli/internal/registry"
	"github.com/threatsmith/povforge-cli/internal/reporting"
	"github.com/threatsmith/povforge-cli/internal/scenario"
)

// generateOptions collects every generate flag so runGenerate stays testable
// without Cobra.
type generateOptions struct {
	schemaKey    string
	scenarioPath string
	scenarioDir  string
	schemaFiles  []string
	artifacts    []string
	outputDir    string
	concurrency  int

	// Inline scenario fields, for runs without a scenario file.
	name        string
	category    string
	severity    string
	description string
	indicators  []string
}

// newGenerateCmd creates and configures the `generate` command.
func newGenerateCmd() *cobra.Command {
	var opts generateOptions

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate POV content artifacts for a threat scenario",
		Long: `Generates correlation rules, playbooks, alert layouts, and dashboards for a
threat scenario against a registered dataset schema. Scenarios come from a
YAML file (--scenario), a directory of YAML files generated concurrently
(--scenario-dir), or inline flags (--name/--category/--severity).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}

			// Delegate to the testable core logic function.
			return runGenerate(ctx, logger, cfg, opts)
		},
	}

	generateCmd.Flags().StringVar(&opts.schemaKey, "schema", "", "Registry key of the dataset schema to generate against (required)")
	_ = generateCmd.MarkFlagRequired("schema")
	generateCmd.Flags().StringVar(&opts.scenarioPath, "scenario", "", "Path to a scenario YAML file")
	generateCmd.Flags().StringVar(&opts.scenarioDir, "scenario-dir", "", "Directory of scenario YAML files to process as a batch")
	generateCmd.Flags().StringArrayVar(&opts.schemaFiles, "schema-file", nil, "Schema YAML file to register before generating (repeatable)")
	generateCmd.Flags().StringSliceVar(&opts.artifacts, "artifacts", nil, "Artifact kinds to generate (rule,playbook,layout,dashboard); default all")
	generateCmd.Flags().StringVarP(&opts.outputDir, "out", "o", "", "Output directory, or 'stdout' to stream (default from config)")
	generateCmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Worker count for batch generation (default from config)")

	generateCmd.Flags().StringVar(&opts.name, "name", "", "Inline scenario name")
	generateCmd.Flags().StringVar(&opts.category, "category", "", "Inline scenario category (endpoint, cloud, network, identity)")
	generateCmd.Flags().StringVar(&opts.severity, "severity", "", "Inline scenario severity (critical, high, medium, low, info)")
	generateCmd.Flags().StringVar(&opts.description, "description", "", "Inline scenario description")
	generateCmd.Flags().StringArrayVar(&opts.indicators, "indicator", nil, "Inline scenario indicator phrase (repeatable)")

	return generateCmd
}

// runGenerate contains the core, testable logic for content generation.
func runGenerate(ctx context.Context, logger *zap.Logger, cfg *config.Config, opts generateOptions) error {
	reg := registry.NewWithBuiltins()
	for _, path := range opts.schemaFiles {
		key, err := reg.RegisterFile(path)
		if err != nil {
			return fmt.Errorf("failed to register schema file: %w", err)
		}
		logger.Info("Registered schema", zap.String("key", key), zap.String("path", path))
	}

	kinds, err := parseArtifactKinds(opts.artifacts)
	if err != nil {
		return err
	}

	files, err := resolveScenarios(opts)
	if err != nil {
		return err
	}

	outputDir := cfg.Output.Directory
	if opts.outputDir != "" {
		outputDir = opts.outputDir
	}
	writer, err := reporting.New(outputDir, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Warn("Failed to close artifact writer cleanly", zap.Error(err))
		}
	}()

	concurrency := cfg.Engine.WorkerConcurrency
	if opts.concurrency > 0 {
		concurrency = opts.concurrency
	}

	gen := generator.New(reg, logger, generator.Options{MaxLayoutFields: cfg.Generator.MaxLayoutFields})
	eng := engine.New(gen, writer, logger, concurrency)

	if err := eng.Run(ctx, engine.BuildJobs(opts.schemaKey, files, kinds)); err != nil {
		var notFound *registry.NotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("%w: select a registered schema (povforge schemas list) or configure one with --schema-file", err)
		}
		return err
	}
	return nil
}

// resolveScenarios turns the flag set into scenario files, from whichever of
// the three mutually exclusive sources is in use.
func resolveScenarios(opts generateOptions) ([]scenario.File, error) {
	sources := 0
	for _, set := range []bool{opts.scenarioPath != "", opts.scenarioDir != "", opts.name != ""} {
		if set {
			sources++
		}
	}
	if sources == 0 {
		return nil, fmt.Errorf("no scenario given: provide --scenario, --scenario-dir, or an inline --name")
	}
	if sources > 1 {
		return nil, fmt.Errorf("--scenario, --scenario-dir, and inline --name are mutually exclusive")
	}

	switch {
	case opts.scenarioDir != "":
		return scenario.LoadDir(opts.scenarioDir)
	case opts.scenarioPath != "":
		s, err := scenario.Load(opts.scenarioPath)
		if err != nil {
			return nil, err
		}
		return []scenario.File{{Path: opts.scenarioPath, Scenario: s}}, nil
	default:
		s := schemas.ThreatScenario{
			Name:        opts.name,
			Category:    schemas.ThreatCategory(opts.category),
			Severity:    schemas.Severity(opts.severity),
			Description: opts.description,
			Indicators:  opts.indicators,
		}
		if err := scenario.Validate(s); err != nil {
			return nil, fmt.Errorf("inline scenario: %w", err)
		}
		return []scenario.File{{Path: "<inline>", Scenario: s}}, nil
	}
}

// parseArtifactKinds validates the --artifacts values. An empty input means
// all kinds.
func parseArtifactKinds(raw []string) ([]schemas.ArtifactKind, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	kinds := make([]schemas.ArtifactKind, 0, len(raw))
	for _, entry := range raw {
		kind := schemas.ArtifactKind(strings.ToLower(strings.TrimSpace(entry)))
		if kind == "" {
			continue
		}
		if !schemas.IsValidArtifactKind(kind) {
			return nil, fmt.Errorf("unknown artifact kind %q (valid kinds: rule, playbook, layout, dashboard)", entry)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}
