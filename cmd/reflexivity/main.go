package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theimaginaryfoundation/reflex-o-bot/internal/logging"
	"github.com/theimaginaryfoundation/reflex-o-bot/scenario"
	"github.com/theimaginaryfoundation/reflex-o-bot/scenario/provider"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	flags := defaultRunFlags()

	root := &cobra.Command{
		Use:   "reflexivity",
		Short: "Run a reflexivity scenario for a topic",
		Long: "reflexivity asks a negative and a positive feedback agent about a topic, then blends\n" +
			"their price paths and labels into a neutralized outcome with independent comparators.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScenario(cmd, flags)
		},
	}

	f := root.Flags()
	f.StringVar(&flags.topic, "topic", "", "Topic under analysis (required)")
	f.StringVar(&flags.context, "context", "", "Supporting context text (required)")
	f.BoolVar(&flags.mock, "mock", false, "Use the deterministic mock generator")
	f.Uint64Var(&flags.seed, "seed", scenario.DefaultMockSeed, "Seed for the mock generator")
	f.BoolVar(&flags.asJSON, "json", false, "Print the full result as JSON")
	f.StringVar(&flags.weights, "weights", "", "Override weights as 'w_neg,w_pos' (e.g. 0.4,0.6)")
	f.Float64Var(&flags.damp, "damp", scenario.DefaultDampening, "Neutral dampening factor")
	f.Float64Var(&flags.eps, "eps", scenario.DefaultSnapEpsilon, "Snap-to-zero threshold for the neutral path")
	f.StringVar(&flags.neutral, "neutral", string(scenario.StyleConcise), "Neutralization style: concise|compare")
	f.IntVar(&flags.horizon, "horizon", scenario.DefaultHorizon, "Number of points in the projected price path")
	f.StringVar(&flags.unit, "unit", scenario.DefaultUnit, "Label for horizon steps: days|weeks")
	f.StringVar(&flags.pathMode, "path-mode", string(scenario.PathLinear), "Path shape: linear|geom")
	f.StringVar(&flags.indepMode, "indep-mode", string(scenario.ComparatorDrift), "Comparator mode: drift|decay")
	f.Float64Var(&flags.kappa, "kappa", scenario.DefaultKappa, "Decay for independent comparator paths")
	f.Float64Var(&flags.drift, "drift", scenario.DefaultDrift, "Outward drift step for comparator paths")
	f.StringVar(&flags.exportPath, "export", "", "Write the full JSON result to this path")
	f.StringVar(&flags.csvPath, "csv", "", "Write the step-by-step paths to this CSV path")
	f.BoolVar(&flags.showIndep, "show-indep", false, "Print the independent comparator paths")
	f.StringVar(&flags.configPath, "config", "", "YAML config file; explicitly set flags override it")
	f.StringVar(&flags.model, "model", flags.model, "OpenAI model (env OPENAI_MODEL)")
	f.StringVar(&flags.apiKey, "api-key", "", "OpenAI API key (env OPENAI_API_KEY)")
	f.BoolVar(&flags.verbose, "verbose", false, "Enable debug logging")
	f.StringVar(&flags.logFormat, "log-format", logging.FormatJSON, "Log format: json|console")

	_ = root.MarkFlagRequired("topic")
	_ = root.MarkFlagRequired("context")

	root.AddCommand(newSchemaCmd(), newValidateCmd())
	return root
}

func runScenario(cmd *cobra.Command, flags *runFlags) error {
	cfg, err := resolveConfig(cmd.Flags(), flags)
	if err != nil {
		return err
	}

	logger, err := logging.New(flags.verbose, flags.logFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gen, err := newGenerator(flags)
	if err != nil {
		return err
	}

	result, err := scenario.Run(cmd.Context(), gen, flags.topic, flags.context, cfg, scenario.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("run scenario: %w", err)
	}

	out := cmd.OutOrStdout()
	if flags.exportPath != "" {
		if err := scenario.WriteJSON(flags.exportPath, result); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved JSON → %s\n", flags.exportPath)
	}
	if flags.csvPath != "" {
		if err := scenario.ExportCSV(flags.csvPath, result); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved CSV → %s\n", flags.csvPath)
	}

	if flags.asJSON {
		return writeJSON(out, result)
	}
	renderText(out, result, flags.showIndep)
	return nil
}

func newGenerator(flags *runFlags) (scenario.Generator, error) {
	if flags.mock {
		return scenario.MockGenerator{Seed: flags.seed}, nil
	}
	return provider.NewOpenAIGenerator(flags.apiKey, flags.model, provider.Options{
		Schema: provider.GenerateSchema[scenario.SignalReport](),
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
