package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/theimaginaryfoundation/reflex-o-bot/scenario"
	"github.com/theimaginaryfoundation/reflex-o-bot/scenario/provider"
)

type runFlags struct {
	topic   string
	context string

	mock bool
	seed uint64

	asJSON     bool
	exportPath string
	csvPath    string
	showIndep  bool

	weights   string
	damp      float64
	eps       float64
	neutral   string
	horizon   int
	unit      string
	pathMode  string
	indepMode string
	kappa     float64
	drift     float64

	configPath string
	model      string
	apiKey     string
	verbose    bool
	logFormat  string
}

func defaultRunFlags() *runFlags {
	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = provider.DefaultModel
	}
	return &runFlags{model: model}
}

// resolveConfig layers the config file (or defaults) under the flags the user set, then
// fills credentials from the environment.
func resolveConfig(fs *pflag.FlagSet, flags *runFlags) (scenario.Config, error) {
	if strings.TrimSpace(flags.topic) == "" {
		return scenario.Config{}, errors.New("--topic must not be empty")
	}

	cfg := scenario.DefaultConfig()
	if flags.configPath != "" {
		loaded, err := scenario.LoadConfig(flags.configPath)
		if err != nil {
			return scenario.Config{}, err
		}
		cfg = loaded
	}

	if fs.Changed("weights") {
		cfg.Weights = flags.weights
	}
	if fs.Changed("damp") {
		cfg.Damp = flags.damp
	}
	if fs.Changed("eps") {
		cfg.Eps = flags.eps
	}
	if fs.Changed("neutral") {
		cfg.NeutralStyle = scenario.NeutralStyle(flags.neutral)
	}
	if fs.Changed("horizon") {
		cfg.Horizon = flags.horizon
	}
	if fs.Changed("unit") {
		cfg.Unit = flags.unit
	}
	if fs.Changed("path-mode") {
		cfg.PathMode = scenario.PathMode(flags.pathMode)
	}
	if fs.Changed("indep-mode") {
		cfg.ComparatorMode = scenario.ComparatorMode(flags.indepMode)
	}
	if fs.Changed("kappa") {
		cfg.Kappa = flags.kappa
	}
	if fs.Changed("drift") {
		cfg.Drift = flags.drift
	}

	if err := cfg.Validate(); err != nil {
		return scenario.Config{}, fmt.Errorf("invalid config: %w", err)
	}

	if flags.apiKey == "" {
		flags.apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}
