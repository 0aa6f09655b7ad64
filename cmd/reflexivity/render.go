package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/theimaginaryfoundation/reflex-o-bot/scenario"
)

func writeJSON(w io.Writer, r scenario.RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func renderText(w io.Writer, r scenario.RunResult, showIndep bool) {
	fmt.Fprintf(w, "Topic: %s\n", r.Topic)
	fmt.Fprintf(w, "Context: %s\n", r.Context)
	fmt.Fprintf(w, "Mode: %s\n", r.Meta.Mode)

	blocks := []struct {
		tag string
		b   scenario.Bundle
	}{
		{"negative", r.Outcomes.Negative},
		{"neutralized", r.Outcomes.Neutralized},
		{"positive", r.Outcomes.Positive},
	}
	for _, blk := range blocks {
		fmt.Fprintf(w, "\n[%s]\n", strings.ToUpper(blk.tag))
		fmt.Fprintf(w, "Thesis: %s\n", blk.b.Thesis)
		fmt.Fprintf(w, "Drivers: %s\n", formatList(blk.b.Drivers))
		fmt.Fprintf(w, "Risks: %s\n", formatList(blk.b.Risks))
		fmt.Fprintf(w, "Price path (%d %s): %s\n", len(blk.b.PricePath), r.Meta.Unit, formatPath(blk.b.PricePath))
		fmt.Fprintf(w, "Confidence: %.2f\n", blk.b.Confidence)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, pathTable(r, showIndep))

	if showIndep && r.Comparators != nil {
		fmt.Fprintln(w, "\n[COMPARATORS]")
		fmt.Fprintf(w, "NEG (independent): %s\n", formatPath(r.Comparators.NegIndependent))
		fmt.Fprintf(w, "POS (independent): %s\n", formatPath(r.Comparators.PosIndependent))
		if r.Meta.Interaction != nil {
			fmt.Fprintf(w, "Interaction area: NEG %.2f, POS %.2f\n", r.Meta.Interaction.Neg, r.Meta.Interaction.Pos)
		}
	}
}

// pathTable renders one row per step; the comparator columns are included on request.
func pathTable(r scenario.RunResult, showIndep bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)

	header := table.Row{strings.TrimSuffix(r.Meta.Unit, "s"), "NEG", "NEU", "POS"}
	withIndep := showIndep && r.Comparators != nil
	if withIndep {
		header = append(header, "NEG_INDEP", "POS_INDEP")
	}
	tw.AppendHeader(header)

	for _, row := range scenario.PathRows(r) {
		cells := table.Row{row.Step, formatPercent(row.Neg), formatPercent(row.Neu), formatPercent(row.Pos)}
		if withIndep {
			cells = append(cells, formatOptionalPercent(row.NegIndep), formatOptionalPercent(row.PosIndep))
		}
		tw.AppendRow(cells)
	}

	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignRight}}
	for i := 2; i <= len(header); i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func formatList(xs []string) string {
	if len(xs) == 0 {
		return "—"
	}
	return strings.Join(xs, ", ")
}

func formatPath(p []float64) string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = formatPercent(v)
	}
	return strings.Join(parts, ", ")
}

// formatPercent prints a signed one-decimal percentage; values that round to zero print as +0.0%.
func formatPercent(v float64) string {
	s := fmt.Sprintf("%+.1f%%", v)
	if s == "-0.0%" {
		return "+0.0%"
	}
	return s
}

func formatOptionalPercent(v *float64) string {
	if v == nil {
		return "—"
	}
	return formatPercent(*v)
}
