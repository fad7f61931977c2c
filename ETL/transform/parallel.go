package transform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LilVoxy/customers_etl/ETL/models"
	"github.com/LilVoxy/customers_etl/ETL/utils"
)

// ChunkSource is a lazy, finite sequence of raw chunks ending with io.EOF
type ChunkSource interface {
	Next() (models.RawChunk, error)
}

// ChunkFunc transforms one chunk. It must not touch shared mutable state.
type ChunkFunc func(models.RawChunk) ([]models.TransformedRecord, error)

// ParallelDriver runs a ChunkFunc over every chunk of a source on a fixed
// pool of workers and concatenates the results in submission order
type ParallelDriver struct {
	workers int
	timeout time.Duration
	fn      ChunkFunc
	logger  *utils.ETLLogger
}

// NewParallelDriver creates a driver with the given pool size and per-result
// wait bound
func NewParallelDriver(workers int, timeout time.Duration, fn ChunkFunc, logger *utils.ETLLogger) *ParallelDriver {
	if workers < 1 {
		workers = 1
	}
	return &ParallelDriver{
		workers: workers,
		timeout: timeout,
		fn:      fn,
		logger:  logger,
	}
}

// future is the pending result of one chunk; done is closed once records
// and err are set
type future struct {
	index   int
	size    int
	records []models.TransformedRecord
	err     error
	done    chan struct{}
}

// Run transforms all chunks of source. Any chunk error, read error or a
// result not ready within the timeout aborts the run: pending work is
// cancelled and no partial output is returned.
func (d *ParallelDriver) Run(ctx context.Context, source ChunkSource) ([]models.TransformedRecord, int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		chunk models.RawChunk
		fut   *future
	}
	jobs := make(chan job)
	futures := make(chan *future, d.workers*2)

	g, gctx := errgroup.WithContext(ctx)

	// 1. Workers: each job carries its own future, so results can be read
	// back in submission order whatever the completion order
	for w := 0; w < d.workers; w++ {
		g.Go(func() error {
			for j := range jobs {
				j.fut.records, j.fut.err = d.fn(j.chunk)
				close(j.fut.done)
			}
			return nil
		})
	}

	// 2. Feeder: reads the source lazily. The futures channel is bounded,
	// which limits how far reading runs ahead of collection. A read error is
	// queued as a failed future and ends the feed.
	g.Go(func() error {
		defer close(jobs)
		defer close(futures)
		for {
			chunk, err := source.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}

			fut := &future{index: chunk.Index, size: len(chunk.Records), done: make(chan struct{})}
			if err != nil {
				fut.err = fmt.Errorf("read chunk: %w", err)
				close(fut.done)
			}

			select {
			case futures <- fut:
			case <-gctx.Done():
				return nil
			}
			if err != nil {
				return nil
			}

			select {
			case jobs <- job{chunk: chunk, fut: fut}:
			case <-gctx.Done():
				return nil
			}
		}
	})

	// 3. Collect in submission order, waiting at most the timeout for each
	// result. The first error stops collection.
	var (
		records []models.TransformedRecord
		chunks  int
		runErr  error
	)
	for fut := range futures {
		timer := time.NewTimer(d.timeout)
		select {
		case <-fut.done:
			if fut.err != nil {
				runErr = fmt.Errorf("chunk %d: %w", fut.index, fut.err)
			}
		case <-timer.C:
			runErr = fmt.Errorf("chunk %d: %w after %v", fut.index, models.ErrChunkTimeout, d.timeout)
		case <-ctx.Done():
			runErr = ctx.Err()
		}
		timer.Stop()

		if runErr != nil {
			break
		}
		records = append(records, fut.records...)
		chunks++
		d.logger.Debug("Chunk %d transformed (%d records)", fut.index, fut.size)
	}
	if runErr == nil {
		// the feeder stops early on cancellation
		runErr = ctx.Err()
	}

	// 4. On failure nothing collected so far is returned
	if runErr != nil {
		// a stuck worker cannot be interrupted; the feeder and idle
		// workers stop on cancel and the run is abandoned
		cancel()
		return nil, 0, runErr
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return records, chunks, nil
}
