// Package pipeline feeds a source into HyperLogLog sketches, either on one
// goroutine or sharded across workers whose sketches are merged at the end.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/wesdoyle/hyperloglog"
	"github.com/wesdoyle/hyperloglog/internal/exact"
	"github.com/wesdoyle/hyperloglog/internal/source"
)

const defaultBatchSize = 1024

// Options configures Estimate.
type Options struct {
	Precision uint8
	Hash      hyperloglog.HashFunc
	// Workers is the number of shards; values below 2 build sequentially.
	Workers int
	// BatchSize is the number of items handed to a worker at a time.
	BatchSize int
	Logger    *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) newSketch() (*hyperloglog.Sketch, error) {
	return hyperloglog.New(o.Precision, hyperloglog.WithHash(o.Hash))
}

// Estimate builds a sketch over every item of src. The registers of the
// result do not depend on the number of workers.
func Estimate(ctx context.Context, src source.Source, opts Options) (*hyperloglog.Sketch, error) {
	if opts.Workers < 2 {
		return estimateSequential(ctx, src, opts)
	}
	return estimateSharded(ctx, src, opts)
}

func estimateSequential(ctx context.Context, src source.Source, opts Options) (*hyperloglog.Sketch, error) {
	sk, err := opts.newSketch()
	if err != nil {
		return nil, err
	}
	var n int
	err = src.Each(ctx, func(item []byte) error {
		sk.Insert(item)
		n++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name(), err)
	}
	opts.logger().Debug("sketch built", "source", src.Name(), "items", n)
	return sk, nil
}

func estimateSharded(ctx context.Context, src source.Source, opts Options) (*hyperloglog.Sketch, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	shards := make([]*hyperloglog.Sketch, opts.Workers)
	for i := range shards {
		sk, err := opts.newSketch()
		if err != nil {
			return nil, err
		}
		shards[i] = sk
	}

	g, ctx := errgroup.WithContext(ctx)
	batches := make(chan [][]byte, opts.Workers)

	g.Go(func() error {
		defer close(batches)
		batch := make([][]byte, 0, batchSize)
		flush := func() error {
			select {
			case batches <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
			batch = make([][]byte, 0, batchSize)
			return nil
		}
		err := src.Each(ctx, func(item []byte) error {
			batch = append(batch, item)
			if len(batch) == batchSize {
				return flush()
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("read %s: %w", src.Name(), err)
		}
		if len(batch) > 0 {
			return flush()
		}
		return nil
	})

	log := opts.logger()
	for i, sk := range shards {
		i, sk := i, sk
		g.Go(func() error {
			var n int
			for batch := range batches {
				for _, item := range batch {
					sk.Insert(item)
				}
				n += len(batch)
			}
			log.Debug("shard finished", "source", src.Name(), "shard", i, "items", n)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hyperloglog.Union(shards...)
}

// Exact counts the distinct items of src exactly.
func Exact(ctx context.Context, src source.Source) (int, error) {
	c := exact.New(0)
	err := src.Each(ctx, func(item []byte) error {
		c.Add(item)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", src.Name(), err)
	}
	return c.Len(), nil
}
