package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theimaginaryfoundation/reflex-o-bot/scenario"
	"github.com/theimaginaryfoundation/reflex-o-bot/scenario/provider"
)

const (
	enronTopic   = "Enron 2001 accounting stress"
	enronContext = "Auditor turnover and SPE structures raised off-balance-sheet questions."
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_MockJSON(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "--topic", enronTopic, "--context", enronContext, "--mock", "--seed", "42", "--json")
	require.NoError(t, err)

	var r scenario.RunResult
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, scenario.ModeMock, r.Meta.Mode)
	assert.Len(t, r.Outcomes.Neutralized.PricePath, 5)
	assert.Equal(t, 0.62, r.Outcomes.Neutralized.Confidence)
	assert.Empty(t, r.Meta.ValidationError)
	require.NoError(t, scenario.ValidateJSON([]byte(out)))
}

func TestRoot_TextOutput(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "--topic", enronTopic, "--context", enronContext, "--mock", "--show-indep", "--unit", "weeks")
	require.NoError(t, err)

	for _, want := range []string{
		"Topic: " + enronTopic,
		"Mode: mock",
		"[NEGATIVE]",
		"[NEUTRALIZED]",
		"[POSITIVE]",
		"Price path (5 weeks):",
		"Confidence: 0.62",
		"[COMPARATORS]",
		"NEG_INDEP",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "-0.0%")
}

func TestRoot_HorizonFlag(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "--topic", enronTopic, "--context", enronContext, "--mock", "--horizon", "9", "--json")
	require.NoError(t, err)

	var r scenario.RunResult
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 9, r.Meta.Horizon)
	assert.Len(t, r.Outcomes.Neutralized.PricePath, 9)
	assert.Len(t, r.Comparators.NegIndependent, 9)
}

func TestRoot_ConfigFileWithFlagOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "reflexivity.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("horizon: 7\nweights: \"0.4,0.6\"\npath_mode: geom\n"), 0o644))

	out, err := execute(t, "--topic", enronTopic, "--context", enronContext, "--mock",
		"--config", cfgPath, "--horizon", "6", "--json")
	require.NoError(t, err)

	var r scenario.RunResult
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 6, r.Meta.Horizon)
	assert.Equal(t, scenario.PathGeom, r.Meta.PathMode)
	assert.InDelta(t, 0.4, r.Meta.Weights.Neg, 1e-9)
	assert.InDelta(t, 0.6, r.Meta.Weights.Pos, 1e-9)
}

func TestRoot_Exports(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out", "result.json")
	csvPath := filepath.Join(dir, "out", "paths.csv")

	out, err := execute(t, "--topic", enronTopic, "--context", enronContext, "--mock",
		"--export", jsonPath, "--csv", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved JSON → "+jsonPath)
	assert.Contains(t, out, "Saved CSV → "+csvPath)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	require.NoError(t, scenario.ValidateJSON(data))

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, scenario.CSVHeader, records[0])
	assert.Equal(t, "1", records[1][0])

	validated, err := execute(t, "validate", jsonPath)
	require.NoError(t, err)
	assert.Contains(t, validated, "ok")
}

func TestRoot_RejectsBadChoices(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "--topic", enronTopic, "--context", enronContext, "--mock", "--neutral", "verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neutral style")

	_, err = execute(t, "--topic", enronTopic, "--context", enronContext, "--mock", "--unit", "months")
	require.Error(t, err)
}

func TestRoot_RejectsInvalidNumericKnobs(t *testing.T) {
	t.Parallel()

	cases := [][]string{
		{"--damp", "-1"},
		{"--damp", "0"},
		{"--drift", "-3"},
		{"--eps", "-1"},
		{"--kappa", "NaN", "--indep-mode", "decay"},
		{"--kappa", "2"},
	}
	for _, knob := range cases {
		args := append([]string{"--topic", enronTopic, "--context", enronContext, "--mock", "--json"}, knob...)
		out, err := execute(t, args...)
		if err == nil {
			t.Fatalf("%v: err=nil, want invalid config", knob)
		}
		if !strings.Contains(err.Error(), "invalid config") {
			t.Fatalf("%v: err=%v, want invalid config", knob, err)
		}
		assert.NotContains(t, out, `"outcomes"`, "no result is printed for %v", knob)
	}
}

func TestRoot_RequiresTopicAndContext(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "--topic", enronTopic, "--mock")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context")
}

func TestRoot_MalformedWeightsFallBack(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "--topic", enronTopic, "--context", enronContext, "--mock", "--weights", "abc", "--json")
	require.NoError(t, err)

	var r scenario.RunResult
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.InDelta(t, 0.6/1.25, r.Meta.Weights.Neg, 1e-9)
}

func TestRoot_LiveWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := execute(t, "--topic", enronTopic, "--context", enronContext)
	require.ErrorIs(t, err, provider.ErrMissingAPIKey)
}

func TestSchemaCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "object", schema["type"])
	assert.True(t, strings.Contains(out, "neg_independent"))
}

func TestValidateCmd_ReportsMissingOutcomes(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"topic":"t","context":"c"}`), 0o644))

	_, err := execute(t, "validate", p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outcomes")
}

func TestFormatPercent(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		0:     "+0.0%",
		-0.01: "+0.0%",
		1.25:  "+1.2%",
		-0.22: "-0.2%",
		2.01:  "+2.0%",
		-3:    "-3.0%",
	}
	for v, want := range cases {
		if got := formatPercent(v); got != want {
			t.Fatalf("formatPercent(%v)=%q, want %q", v, got, want)
		}
	}
}
