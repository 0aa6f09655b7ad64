package scenario

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// NeutralStyle selects the template for the neutralized thesis.
type NeutralStyle string

const (
	StyleConcise NeutralStyle = "concise"
	StyleCompare NeutralStyle = "compare"
)

// PathMode selects linear or geometric path semantics for the blended and comparator paths.
type PathMode string

const (
	PathLinear PathMode = "linear"
	PathGeom   PathMode = "geom"
)

// ComparatorMode selects how the independent baselines are projected.
type ComparatorMode string

const (
	ComparatorDrift ComparatorMode = "drift"
	ComparatorDecay ComparatorMode = "decay"
)

const (
	DefaultHorizon = 5
	DefaultUnit    = "days"
	DefaultKappa   = 0.15
	DefaultDrift   = 0.2
)

// Config is the configuration surface consumed by the builder.
type Config struct {
	// Weights is an optional "w_neg,w_pos" override. Malformed or all-zero values fall back
	// to confidence-derived weights.
	Weights string `yaml:"weights"`

	// Damp, Eps, Kappa and Drift treat zero as unset: the builder uses their defaults.
	Damp float64 `yaml:"damp"`
	Eps  float64 `yaml:"eps"`

	NeutralStyle NeutralStyle `yaml:"neutral_style"`

	// Horizon <= 0 means DefaultHorizon.
	Horizon int    `yaml:"horizon"`
	Unit    string `yaml:"unit"`

	PathMode       PathMode       `yaml:"path_mode"`
	ComparatorMode ComparatorMode `yaml:"comparator_mode"`

	Kappa float64 `yaml:"kappa"`
	Drift float64 `yaml:"drift"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Damp:           DefaultDampening,
		Eps:            DefaultSnapEpsilon,
		NeutralStyle:   StyleConcise,
		Horizon:        DefaultHorizon,
		Unit:           DefaultUnit,
		PathMode:       PathLinear,
		ComparatorMode: ComparatorDrift,
		Kappa:          DefaultKappa,
		Drift:          DefaultDrift,
	}
}

// Validate rejects values outside the accepted choices. The builder itself is lenient;
// Validate is for user-facing surfaces, which start from DefaultConfig: every numeric knob
// must be positive and finite there, and kappa at most 1. Unparseable weights are not rejected: they fall back to confidence-derived weights at
// build time.
func (c Config) Validate() error {
	switch c.NeutralStyle {
	case "", StyleConcise, StyleCompare:
	default:
		return fmt.Errorf("neutral style must be concise or compare, got %q", c.NeutralStyle)
	}
	switch c.PathMode {
	case "", PathLinear, PathGeom:
	default:
		return fmt.Errorf("path mode must be linear or geom, got %q", c.PathMode)
	}
	switch c.ComparatorMode {
	case "", ComparatorDrift, ComparatorDecay:
	default:
		return fmt.Errorf("comparator mode must be drift or decay, got %q", c.ComparatorMode)
	}
	switch c.Unit {
	case "", "days", "weeks":
	default:
		return fmt.Errorf("unit must be days or weeks, got %q", c.Unit)
	}
	if c.Horizon < 0 {
		return errors.New("horizon must be >= 0")
	}
	for _, k := range []struct {
		name string
		v    float64
	}{
		{"damp", c.Damp},
		{"eps", c.Eps},
		{"kappa", c.Kappa},
		{"drift", c.Drift},
	} {
		if math.IsNaN(k.v) || math.IsInf(k.v, 0) || k.v <= 0 {
			return fmt.Errorf("%s must be a positive number, got %v", k.name, k.v)
		}
	}
	if c.Kappa > 1 {
		return errors.New("kappa must be <= 1")
	}
	return nil
}

// withDefaults resolves unset and out-of-range values. Every numeric knob follows the
// same rule: zero, negative or non-finite means the default.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	c.Damp = knobOr(c.Damp, d.Damp)
	c.Eps = knobOr(c.Eps, d.Eps)
	c.Kappa = knobOr(c.Kappa, d.Kappa)
	c.Drift = knobOr(c.Drift, d.Drift)
	if c.Horizon <= 0 {
		c.Horizon = d.Horizon
	}
	if strings.TrimSpace(c.Unit) == "" {
		c.Unit = d.Unit
	}
	c.NeutralStyle = normalizeStyle(c.NeutralStyle)
	c.PathMode = normalizePathMode(c.PathMode)
	c.ComparatorMode = normalizeComparatorMode(c.ComparatorMode)
	return c
}

func knobOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return def
	}
	return v
}

func normalizeStyle(s NeutralStyle) NeutralStyle {
	if strings.HasPrefix(strings.ToLower(string(s)), "compare") {
		return StyleCompare
	}
	return StyleConcise
}

func normalizePathMode(m PathMode) PathMode {
	if strings.HasPrefix(strings.ToLower(string(m)), "geom") {
		return PathGeom
	}
	return PathLinear
}

func normalizeComparatorMode(m ComparatorMode) ComparatorMode {
	if strings.HasPrefix(strings.ToLower(string(m)), "decay") {
		return ComparatorDecay
	}
	return ComparatorDrift
}

// LoadConfig reads a YAML config file on top of DefaultConfig. Keys missing from the file
// keep their defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("LoadConfig: path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("LoadConfig: read file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("LoadConfig: unmarshal: %w", err)
	}
	return cfg, nil
}
