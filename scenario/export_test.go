package scenario

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportFixture() RunResult {
	return RunResult{
		Topic:   "t",
		Context: "c",
		Outcomes: Outcomes{
			Negative:    Bundle{PricePath: []float64{-3, -2}},
			Neutralized: Bundle{PricePath: []float64{-0.22, 0}},
			Positive:    Bundle{PricePath: []float64{2, 1.5}},
		},
		Comparators: &Comparators{
			NegIndependent: []float64{-3, -3.2},
			PosIndependent: []float64{2},
		},
	}
}

func TestPathRows(t *testing.T) {
	t.Parallel()

	rows := PathRows(exportFixture())
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Step)
	assert.Equal(t, -0.22, rows[0].Neu)
	require.NotNil(t, rows[1].NegIndep)
	assert.Equal(t, -3.2, *rows[1].NegIndep)
	assert.Nil(t, rows[1].PosIndep)

	noComparators := exportFixture()
	noComparators.Comparators = nil
	for _, row := range PathRows(noComparators) {
		assert.Nil(t, row.NegIndep)
		assert.Nil(t, row.PosIndep)
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportFixture()))

	want := strings.Join([]string{
		"step,NEG,NEU,POS,NEG_INDEP,POS_INDEP",
		"1,-3,-0.22,2,-3,2",
		"2,-2,0,1.5,-3.2,",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("WriteCSV mismatch (-want +got):\n%s", diff)
	}
}

func TestExportCSVAndWriteJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	neg, pos := stanceBundles()
	r := testBuilder().Build("t", "c", neg, pos, DefaultConfig())

	csvPath := filepath.Join(dir, "nested", "paths.csv")
	require.NoError(t, ExportCSV(csvPath, r))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 6, strings.Count(string(data), "\n"), "header plus five rows")

	jsonPath := filepath.Join(dir, "nested", "result.json")
	require.NoError(t, WriteJSON(jsonPath, r))
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	require.NoError(t, ValidateJSON(data))

	var back RunResult
	require.NoError(t, json.Unmarshal(data, &back))
	if diff := cmp.Diff(r, back); diff != "" {
		t.Fatalf("JSON export lost data (-want +got):\n%s", diff)
	}
}
