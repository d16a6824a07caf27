// Package pipeline turns comparison documents into reports: it resolves
// references, runs the superlocus comparator over a worker pool and renders
// the results.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/vgmatch/internal/allele"
	"github.com/ppiankov/vgmatch/internal/cache"
	"github.com/ppiankov/vgmatch/internal/genotype"
	"github.com/ppiankov/vgmatch/internal/graph"
	"github.com/ppiankov/vgmatch/internal/match"
	"github.com/ppiankov/vgmatch/internal/metrics"
	"github.com/ppiankov/vgmatch/internal/model"
	"github.com/ppiankov/vgmatch/internal/reference"
	"github.com/ppiankov/vgmatch/internal/worker"
)

// Pipeline runs comparisons with one configuration
type Pipeline struct {
	config     *model.Config
	comparator *match.Comparator
	cache      *cache.StatsCache // nil when caching is disabled
	metrics    *metrics.Metrics  // nil when metrics are not collected
	logger     *slog.Logger
	version    string
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger passed down to the comparator
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records every comparison in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithVersion sets the version stamped on reports
func WithVersion(v string) Option {
	return func(p *Pipeline) {
		p.version = v
	}
}

// NewPipeline creates a pipeline with the given configuration
func NewPipeline(cfg *model.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}

	copts := []match.Option{
		match.WithMaxPaths(cfg.Limits.MaxPaths),
		match.WithLogger(p.logger),
	}
	if cfg.Cache.Enabled {
		p.cache = cache.WithStats(cache.New(cfg.Cache.Dir, cfg.Cache.MemoryTTL, cfg.Cache.DiskTTL))
		copts = append(copts, match.WithCache(p.cache))
	}
	p.comparator = match.NewComparator(copts...)

	return p
}

// Compare evaluates one comparison document
func (p *Pipeline) Compare(ctx context.Context, c *model.Comparison) (*model.ComparisonReport, error) {
	start := time.Now()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	left, right, err := c.Loci()
	if err != nil {
		return nil, err
	}

	bounds := match.JointBounds(c.Bounds(), left, right)
	ref, err := p.resolveReference(c.Reference, bounds)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}

	result, err := p.comparator.Compare(ctx, ref, bounds, left, right)
	if err != nil {
		return nil, err
	}

	report := newComparisonReport(c, result)
	report.Elapsed = time.Since(start)

	p.logger.Debug("comparison done",
		"name", c.Name,
		"status", report.Code,
		"elapsed", report.Elapsed)
	return report, nil
}

// Run evaluates every comparison on the worker pool and assembles the report
func (p *Pipeline) Run(ctx context.Context, source string, comparisons []model.Comparison) *model.Report {
	report := &model.Report{
		RunID:     uuid.NewString(),
		Tool:      "vgmatch",
		Version:   p.version,
		StartedAt: time.Now().UTC(),
		Source:    source,
	}

	var hits0, misses0 uint64
	if p.cache != nil {
		hits0, misses0 = p.cache.Stats()
	}

	processor := worker.NewBatchProcessor(p, p.config.Concurrency.Workers, p.logger)
	for _, res := range processor.ProcessComparisons(ctx, comparisons) {
		cr := res.Report
		if res.Error != nil {
			p.logger.Warn("comparison failed", "name", res.Name, "error", res.Error)
			cr = FailedReport(&comparisons[res.Index], res.Error)
		}
		report.Comparisons = append(report.Comparisons, *cr)
		if p.metrics != nil {
			p.metrics.RecordComparison(cr)
		}
	}

	if p.metrics != nil && p.cache != nil {
		hits, misses := p.cache.Stats()
		p.metrics.RecordCache(hits-hits0, misses-misses0)
	}

	report.Summary = Summarize(report.Comparisons)
	return report
}

// resolveReference returns the window the comparison reads bases from
func (p *Pipeline) resolveReference(spec *model.ReferenceSpec, bounds graph.Bounds) (allele.Reference, error) {
	if spec.Sequence != "" {
		w := reference.NewWindow(spec.Contig, spec.Offset, spec.Sequence)
		if bounds.Start != nil && bounds.Stop != nil && !w.Covers(*bounds.Start, *bounds.Stop) {
			p.logger.Warn("reference does not cover the comparison, flanks will be clipped",
				"contig", spec.Contig,
				"window_start", w.Start(),
				"window_stop", w.Stop(),
				"start", *bounds.Start,
				"stop", *bounds.Stop)
		}
		return w, nil
	}

	if bounds.Start == nil || bounds.Stop == nil {
		return nil, fmt.Errorf("%w: a fasta reference needs loci or explicit bounds", model.ErrInvalidDocument)
	}
	start, stop, _ := reference.Span(spec.Margin, [2]int{*bounds.Start, *bounds.Stop})
	if stop <= start {
		// nothing to read; every allele is an insertion at start
		return reference.NewWindow(spec.Contig, start, ""), nil
	}
	return reference.LoadFasta(spec.Fasta, spec.Contig, start, stop)
}

func newComparisonReport(c *model.Comparison, result *match.Result) *model.ComparisonReport {
	return &model.ComparisonReport{
		Name:             c.Name,
		Contig:           c.Reference.Contig,
		Start:            result.Bounds.Start,
		Stop:             result.Bounds.Stop,
		Status:           result.Status.String(),
		Code:             result.Status.Code(),
		Matched:          result.Matched(),
		Left:             sideReport(len(c.Left), result.Left),
		Right:            sideReport(len(c.Right), result.Right),
		SharedHaplotypes: result.Shared,
		SharedGenotypes:  genotypeStrings(result.Genotypes),
	}
}

func sideReport(loci int, s match.Side) model.SideReport {
	return model.SideReport{
		Loci:        loci,
		Paths:       s.Paths,
		SharedPaths: s.SharedPaths,
		Constraints: s.Constraints,
		Genotypes:   genotypeStrings(s.Genotypes),
	}
}

func genotypeStrings(gs []genotype.Genotype) []string {
	if len(gs) == 0 {
		return nil
	}
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = g.String()
	}
	return out
}

// FailedReport records a comparison that could not be evaluated
func FailedReport(c *model.Comparison, err error) *model.ComparisonReport {
	r := &model.ComparisonReport{
		Name:   c.Name,
		Status: model.StatusError,
		Code:   model.CodeError,
		Error:  err.Error(),
		Left:   model.SideReport{Loci: len(c.Left)},
		Right:  model.SideReport{Loci: len(c.Right)},
	}
	if c.Reference != nil {
		r.Contig = c.Reference.Contig
	}
	return r
}
