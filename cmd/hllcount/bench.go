package main

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesdoyle/hyperloglog"
	"github.com/wesdoyle/hyperloglog/internal/report"
)

func (a *app) newBenchCommand() *cobra.Command {
	var maxItems int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure accuracy on a synthetic stream of distinct items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hash, err := a.cfg.HashFunc()
			if err != nil {
				return err
			}
			sk, err := hyperloglog.New(a.cfg.PrecisionBits(), hyperloglog.WithHash(hash))
			if err != nil {
				return err
			}
			rows := runBench(sk, maxItems)
			a.log.Debug("bench complete", "items", maxItems, "checkpoints", len(rows))
			return report.RenderBench(cmd.OutOrStdout(), sk.Precision(), rows)
		},
	}
	cmd.Flags().IntVar(&maxItems, "max", 1000000, "number of distinct items to insert")
	return cmd
}

// runBench inserts total distinct items, recording the estimate at every
// fifth-power checkpoint and at the end.
func runBench(sk *hyperloglog.Sketch, total int) []report.BenchRow {
	var rows []report.BenchRow
	start := time.Now()
	step := 10
	for i := 1; i <= total; i++ {
		sk.Insert([]byte("stream-" + strconv.Itoa(i)))
		if i%step == 0 || i == total {
			if i%step == 0 {
				step *= 5
			}
			rows = append(rows, report.BenchRow{
				Exact:    uint64(i),
				Estimate: sk.Estimate(),
				Elapsed:  time.Since(start),
			})
		}
	}
	return rows
}
