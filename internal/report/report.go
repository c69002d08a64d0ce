// Package report renders estimate-versus-exact comparison tables.
package report

import (
	"fmt"
	"io"
	"math"
	"math/big"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Comparison holds the outcome of one estimate run and, optionally, the
// exact count of the same source.
type Comparison struct {
	Source       string
	Precision    uint8
	Estimate     float64
	EstimateTime time.Duration
	Exact        int
	ExactTime    time.Duration
	HasExact     bool
}

// Count returns the estimate rounded to the nearest integer, saturating at
// math.MaxUint64.
func (c Comparison) Count() uint64 {
	return roundCount(c.Estimate)
}

func roundCount(est float64) uint64 {
	est = math.Max(0, est) + 0.5
	if est >= 18446744073709551616.0 {
		return math.MaxUint64
	}
	return uint64(est)
}

// formatCount groups the digits of n without overflowing int64.
func formatCount(n uint64) string {
	return humanize.BigComma(new(big.Int).SetUint64(n))
}

// ErrorPercent returns the relative error of est against exact, in percent.
// It is zero when both are zero.
func ErrorPercent(est float64, exact uint64) float64 {
	if exact == 0 {
		if est == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return 100 * math.Abs(est-float64(exact)) / float64(exact)
}

// Render writes the comparison table for c to w.
func Render(w io.Writer, c Comparison) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(fmt.Sprintf("HyperLogLog vs exact counting: %s (p=%d)", c.Source, c.Precision))
	tbl.AppendHeader(table.Row{"Method", "Count", "Time", "Error (%)"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	estErr := "N/A"
	if c.HasExact {
		estErr = fmt.Sprintf("%.2f", ErrorPercent(c.Estimate, uint64(c.Exact)))
	}
	tbl.AppendRow(table.Row{"HyperLogLog", formatCount(c.Count()), formatDuration(c.EstimateTime), estErr})
	if c.HasExact {
		tbl.AppendRow(table.Row{"Exact", formatCount(uint64(c.Exact)), formatDuration(c.ExactTime), "N/A"})
	}

	if _, err := fmt.Fprintln(w, tbl.Render()); err != nil {
		return err
	}
	if !c.HasExact {
		return nil
	}

	saved := c.ExactTime - c.EstimateTime
	clr := color.New(color.FgGreen)
	if saved < 0 {
		clr = color.New(color.FgYellow)
	}
	_, err := clr.Fprintf(w, "Time saved: %s\n", formatDuration(saved))
	return err
}

// BenchRow is one checkpoint of a synthetic accuracy run.
type BenchRow struct {
	Exact    uint64
	Estimate float64
	Elapsed  time.Duration
}

// RenderBench writes the accuracy table for a synthetic run.
func RenderBench(w io.Writer, precision uint8, rows []BenchRow) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(fmt.Sprintf("Synthetic stream (p=%d, expected error %.2f%%)", precision, 104/math.Sqrt(float64(uint32(1)<<precision))))
	tbl.AppendHeader(table.Row{"Exact", "Estimate", "Error (%)", "Elapsed"})
	for _, r := range rows {
		tbl.AppendRow(table.Row{
			formatCount(r.Exact),
			formatCount(roundCount(r.Estimate)),
			fmt.Sprintf("%.4f", ErrorPercent(r.Estimate, r.Exact)),
			formatDuration(r.Elapsed),
		})
	}
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.4fs", d.Seconds())
}
