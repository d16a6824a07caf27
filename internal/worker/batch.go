package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/ppiankov/vgmatch/internal/model"
)

// Comparer evaluates one comparison document
type Comparer interface {
	Compare(ctx context.Context, c *model.Comparison) (*model.ComparisonReport, error)
}

// CompareJob is one comparison of a batch
type CompareJob struct {
	Index      int
	Comparison *model.Comparison
	Comparer   Comparer
	done       func()
}

// Execute runs the comparison
func (j *CompareJob) Execute(ctx context.Context) Result {
	if j.done != nil {
		defer j.done()
	}
	report, err := j.Comparer.Compare(ctx, j.Comparison)
	return &CompareResult{
		Index:  j.Index,
		Name:   j.Comparison.Name,
		Report: report,
		Error:  err,
	}
}

// CompareResult is the outcome of a CompareJob
type CompareResult struct {
	Index  int
	Name   string
	Report *model.ComparisonReport
	Error  error
}

// GetError returns the comparison error
func (r *CompareResult) GetError() error {
	return r.Error
}

// BatchProcessor runs many comparisons concurrently
type BatchProcessor struct {
	comparer    Comparer
	concurrency int
	logger      *slog.Logger
	interval    time.Duration
}

// NewBatchProcessor creates a batch processor; a nil logger discards progress
func NewBatchProcessor(comparer Comparer, concurrency int, logger *slog.Logger) *BatchProcessor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BatchProcessor{
		comparer:    comparer,
		concurrency: concurrency,
		logger:      logger,
		interval:    2 * time.Second,
	}
}

// ProcessComparisons runs every comparison and returns the results in input
// order. Comparisons that never ran because ctx ended carry the context error.
func (b *BatchProcessor) ProcessComparisons(ctx context.Context, comparisons []model.Comparison) []*CompareResult {
	results := make([]*CompareResult, len(comparisons))
	if len(comparisons) == 0 {
		return results
	}

	var completed atomic.Int64
	total := len(comparisons)
	progress := rate.Sometimes{First: 1, Interval: b.interval}
	done := func() {
		n := completed.Add(1)
		progress.Do(func() {
			b.logger.Info("batch progress", "completed", n, "total", total)
		})
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	go func() {
		for i := range comparisons {
			pool.Submit(&CompareJob{
				Index:      i,
				Comparison: &comparisons[i],
				Comparer:   b.comparer,
				done:       done,
			})
		}
		pool.Close()
	}()

	for r := range pool.Results() {
		res := r.(*CompareResult)
		results[res.Index] = res
	}

	for i, res := range results {
		if res != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = errors.New("comparison was not run")
		}
		results[i] = &CompareResult{
			Index: i,
			Name:  comparisons[i].Name,
			Error: fmt.Errorf("cancelled: %w", err),
		}
	}

	b.logger.Info("batch finished", "completed", completed.Load(), "total", total)
	return results
}
