package main

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wesdoyle/hyperloglog"
	"github.com/wesdoyle/hyperloglog/internal/config"
	"github.com/wesdoyle/hyperloglog/internal/pipeline"
	"github.com/wesdoyle/hyperloglog/internal/report"
	"github.com/wesdoyle/hyperloglog/internal/source"
	"github.com/wesdoyle/hyperloglog/promhll"
)

// app carries the state shared by every subcommand.
type app struct {
	v       *viper.Viper
	cfgPath string
	cfg     *config.Config
	log     *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "hllcount",
		Short: "Estimate distinct counts with HyperLogLog",
		Long: `hllcount estimates the number of distinct words in a data source with a
HyperLogLog sketch and, optionally, compares it to an exact count.

Commands:
  file      Count distinct words in a text file
  sqlite    Count distinct words in a SQLite column
  bench     Measure accuracy on a synthetic stream`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v, a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = cfg.Logger(cmd.ErrOrStderr())
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "path to a YAML config file")
	flags.IntP("precision", "p", 14, "number of index bits; the sketch has 2^p registers")
	flags.Int("workers", runtime.NumCPU(), "number of sketch shards built in parallel")
	flags.Int("batch-size", source.DefaultBatchSize, "rows per SQL page and items per worker batch")
	flags.String("hash", "metro", "hash function: metro, xxhash or murmur3")
	flags.Uint64("seed", hyperloglog.DefaultSeed, "seed for seeded hash functions")
	flags.Bool("exact", true, "also count exactly and report the error")
	flags.String("metrics-file", "", "write Prometheus metrics to this file")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")

	for key, flag := range map[string]string{
		"precision":    "precision",
		"workers":      "workers",
		"batch_size":   "batch-size",
		"hash":         "hash",
		"seed":         "seed",
		"exact":        "exact",
		"metrics_file": "metrics-file",
		"log.level":    "log-level",
		"log.format":   "log-format",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(a.newFileCommand())
	root.AddCommand(a.newSQLiteCommand())
	root.AddCommand(a.newBenchCommand())
	root.AddCommand(versionCmd())

	return root
}

func (a *app) pipelineOptions() (pipeline.Options, error) {
	hash, err := a.cfg.HashFunc()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Precision: a.cfg.PrecisionBits(),
		Hash:      hash,
		Workers:   a.cfg.Workers,
		BatchSize: a.cfg.BatchSize,
		Logger:    a.log,
	}, nil
}

// compare estimates src, optionally counts it exactly and prints the result.
func (a *app) compare(ctx context.Context, cmd *cobra.Command, src source.Source) error {
	opts, err := a.pipelineOptions()
	if err != nil {
		return err
	}

	start := time.Now()
	sk, err := pipeline.Estimate(ctx, src, opts)
	if err != nil {
		return err
	}
	cmp := report.Comparison{
		Source:       src.Name(),
		Precision:    sk.Precision(),
		Estimate:     sk.Estimate(),
		EstimateTime: time.Since(start),
	}
	a.log.Info("estimate complete",
		"source", src.Name(), "estimate", cmp.Count(), "workers", opts.Workers, "elapsed", cmp.EstimateTime)

	if a.cfg.Exact {
		start = time.Now()
		n, err := pipeline.Exact(ctx, src)
		if err != nil {
			return err
		}
		cmp.Exact, cmp.ExactTime, cmp.HasExact = n, time.Since(start), true
		a.log.Info("exact count complete", "source", src.Name(), "count", n, "elapsed", cmp.ExactTime)
	}

	if err := a.writeMetrics(src.Name(), sk); err != nil {
		return err
	}
	return report.Render(cmd.OutOrStdout(), cmp)
}

func (a *app) writeMetrics(name string, sk *hyperloglog.Sketch) error {
	if a.cfg.MetricsFile == "" {
		return nil
	}
	collector := promhll.NewCollector("hllcount")
	collector.Track(name, sk)

	reg := prometheus.NewRegistry()
	if err := reg.Register(collector); err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	a.log.Debug("metrics written", "path", a.cfg.MetricsFile)
	return nil
}
