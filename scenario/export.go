package scenario

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/theimaginaryfoundation/reflex-o-bot/scenario/fileutils"
)

// CSVHeader is the header row of the tabular path export.
var CSVHeader = []string{"step", "NEG", "NEU", "POS", "NEG_INDEP", "POS_INDEP"}

// PathRow is one step of the tabular export. The independent values are nil when the result
// carries no comparators.
type PathRow struct {
	Step     int
	Neg      float64
	Neu      float64
	Pos      float64
	NegIndep *float64
	PosIndep *float64
}

// PathRows lays the three stance paths and the comparators out step by step, 1-based. The
// row count follows the neutralized path.
func PathRows(r RunResult) []PathRow {
	neu := r.Outcomes.Neutralized.PricePath
	rows := make([]PathRow, len(neu))
	for i := range neu {
		row := PathRow{
			Step: i + 1,
			Neg:  at(r.Outcomes.Negative.PricePath, i),
			Neu:  neu[i],
			Pos:  at(r.Outcomes.Positive.PricePath, i),
		}
		if r.Comparators != nil {
			row.NegIndep = ptrAt(r.Comparators.NegIndependent, i)
			row.PosIndep = ptrAt(r.Comparators.PosIndependent, i)
		}
		rows[i] = row
	}
	return rows
}

// WriteCSV writes the header and one row per step. Missing comparator values are empty cells.
func WriteCSV(w io.Writer, r RunResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("WriteCSV: header: %w", err)
	}
	for _, row := range PathRows(r) {
		rec := []string{
			strconv.Itoa(row.Step),
			formatValue(row.Neg),
			formatValue(row.Neu),
			formatValue(row.Pos),
			formatOptional(row.NegIndep),
			formatOptional(row.PosIndep),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("WriteCSV: step %d: %w", row.Step, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: flush: %w", err)
	}
	return nil
}

// ExportCSV writes the CSV export to path atomically.
func ExportCSV(path string, r RunResult) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, r); err != nil {
		return err
	}
	if err := fileutils.WriteFileAtomicSameDir(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("ExportCSV: %w", err)
	}
	return nil
}

// WriteJSON writes the result as indented JSON to path atomically.
func WriteJSON(path string, r RunResult) error {
	if err := fileutils.WriteJSONFileAtomic(path, r, true); err != nil {
		return fmt.Errorf("WriteJSON: %w", err)
	}
	return nil
}

func at(xs []float64, i int) float64 {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}

func ptrAt(xs []float64, i int) *float64 {
	if i < len(xs) {
		v := xs[i]
		return &v
	}
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatValue(*v)
}
