// reflexivity-mcp exposes scenario runs as an MCP stdio server.
//
// Environment variables:
//
//	OPENAI_API_KEY     OpenAI API key, used only when REFLEXIVITY_LIVE=1
//	OPENAI_MODEL       OpenAI model (default: gpt-4o-mini)
//	REFLEXIVITY_LIVE   set to 1 to reason with the live model instead of the mock generator
//	REFLEXIVITY_CONFIG optional YAML config applied under each call's arguments
//	REFLEXIVITY_DEBUG  set to 1 for debug logging (stderr)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/theimaginaryfoundation/reflex-o-bot/internal/logging"
	"github.com/theimaginaryfoundation/reflex-o-bot/scenario"
	"github.com/theimaginaryfoundation/reflex-o-bot/scenario/provider"
)

var version = "dev"

func main() {
	logger, err := logging.New(os.Getenv("REFLEXIVITY_DEBUG") == "1", logging.FormatJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	base := scenario.DefaultConfig()
	if p := os.Getenv("REFLEXIVITY_CONFIG"); p != "" {
		base, err = scenario.LoadConfig(p)
		if err != nil {
			logger.Fatal("load config", zap.Error(err))
		}
	}

	gen, err := generatorFromEnv()
	if err != nil {
		logger.Fatal("configure generator", zap.Error(err))
	}

	server := newServer(gen, base, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logger.Error("reflexivity-mcp stopped", zap.Error(err))
	}
}

func generatorFromEnv() (scenario.Generator, error) {
	key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if key == "" || os.Getenv("REFLEXIVITY_LIVE") != "1" {
		return scenario.MockGenerator{Seed: scenario.DefaultMockSeed}, nil
	}
	return provider.NewOpenAIGenerator(key, os.Getenv("OPENAI_MODEL"), provider.Options{
		Schema: provider.GenerateSchema[scenario.SignalReport](),
	})
}

func newServer(gen scenario.Generator, base scenario.Config, logger *zap.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "reflexivity-mcp",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name: "run_scenario",
		Description: "Run negative and positive reflexive feedback agents on a topic and return the neutralized " +
			"outcome, stance outcomes, independent comparators and run metadata as JSON.",
	}, runScenarioHandler(gen, base, logger))

	return server
}

type runScenarioInput struct {
	Topic          string  `json:"topic"                     jsonschema:"Topic under analysis"`
	Context        string  `json:"context"                   jsonschema:"Supporting context text"`
	Weights        string  `json:"weights,omitempty"         jsonschema:"Optional weight override as w_neg,w_pos (e.g. 0.4,0.6)"`
	Damp           float64 `json:"damp,omitempty"            jsonschema:"Neutral dampening factor (default 0.55)"`
	Eps            float64 `json:"eps,omitempty"             jsonschema:"Snap-to-zero threshold (default 0.049)"`
	Neutral        string  `json:"neutral,omitempty"         jsonschema:"Neutralization style: concise or compare"`
	Horizon        int     `json:"horizon,omitempty"         jsonschema:"Number of path points (default 5)"`
	Unit           string  `json:"unit,omitempty"            jsonschema:"Step label: days or weeks"`
	PathMode       string  `json:"path_mode,omitempty"       jsonschema:"linear or geom"`
	ComparatorMode string  `json:"comparator_mode,omitempty" jsonschema:"drift or decay"`
	Kappa          float64 `json:"kappa,omitempty"           jsonschema:"Decay rate for the decay comparator (default 0.15)"`
	Drift          float64 `json:"drift,omitempty"           jsonschema:"Outward step for the drift comparator (default 0.2)"`
	Seed           uint64  `json:"seed,omitempty"            jsonschema:"Mock generator seed; ignored in live mode"`
}

// config overlays the non-zero input fields on base. Out-of-range values are kept so
// Validate can report them.
func (in runScenarioInput) config(base scenario.Config) scenario.Config {
	cfg := base
	if in.Weights != "" {
		cfg.Weights = in.Weights
	}
	if in.Damp != 0 {
		cfg.Damp = in.Damp
	}
	if in.Eps != 0 {
		cfg.Eps = in.Eps
	}
	if in.Neutral != "" {
		cfg.NeutralStyle = scenario.NeutralStyle(in.Neutral)
	}
	if in.Horizon != 0 {
		cfg.Horizon = in.Horizon
	}
	if in.Unit != "" {
		cfg.Unit = in.Unit
	}
	if in.PathMode != "" {
		cfg.PathMode = scenario.PathMode(in.PathMode)
	}
	if in.ComparatorMode != "" {
		cfg.ComparatorMode = scenario.ComparatorMode(in.ComparatorMode)
	}
	if in.Kappa != 0 {
		cfg.Kappa = in.Kappa
	}
	if in.Drift != 0 {
		cfg.Drift = in.Drift
	}
	return cfg
}

func runScenarioHandler(gen scenario.Generator, base scenario.Config, logger *zap.Logger) func(context.Context, *mcp.CallToolRequest, runScenarioInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input runScenarioInput) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(input.Topic) == "" {
			return errorResult("topic is required"), nil, nil
		}
		cfg := input.config(base)
		if err := cfg.Validate(); err != nil {
			return errorResult(fmt.Sprintf("invalid config: %v", err)), nil, nil
		}

		g := gen
		if m, ok := gen.(scenario.MockGenerator); ok && input.Seed != 0 {
			m.Seed = input.Seed
			g = m
		}

		result, err := scenario.Run(ctx, g, input.Topic, input.Context, cfg, scenario.WithLogger(logger))
		if err != nil {
			return errorResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(jsonString(result)), nil, nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	r := textResult(text)
	r.IsError = true
	return r
}

func jsonString(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(b)
}
