// Package match compares two representations of the same diploid calls over
// a shared region, the unit known as a superlocus.
package match

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/vgmatch/internal/allele"
	"github.com/ppiankov/vgmatch/internal/cache"
	"github.com/ppiankov/vgmatch/internal/genotype"
	"github.com/ppiankov/vgmatch/internal/graph"
	"github.com/ppiankov/vgmatch/internal/haplotype"
)

// Side summarizes one representation
type Side struct {
	Paths       int                 `json:"paths"`
	SharedPaths int                 `json:"shared_paths"`
	Constraints int                 `json:"constraints"`
	Genotypes   []genotype.Genotype `json:"genotypes"`
}

// Result is the outcome of one comparison
type Result struct {
	Status    Status              `json:"status"`
	Bounds    graph.Bounds        `json:"-"`
	Left      Side                `json:"left"`
	Right     Side                `json:"right"`
	Shared    []string            `json:"shared_haplotypes"`
	Genotypes []genotype.Genotype `json:"shared_genotypes"`
}

// Matched reports whether the representations agree
func (r *Result) Matched() bool {
	return r.Status == StatusMatch
}

// Comparator runs superlocus comparisons
type Comparator struct {
	cache     cache.Cache
	maxPaths  int
	logger    *slog.Logger
	generator *haplotype.Generator
}

// Option configures a Comparator
type Option func(*Comparator)

// WithCache memoizes the per-representation pipelines in c
func WithCache(c cache.Cache) Option {
	return func(m *Comparator) {
		m.cache = c
	}
}

// WithMaxPaths caps the haplotype frontier of each representation
func WithMaxPaths(n int) Option {
	return func(m *Comparator) {
		m.maxPaths = n
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Comparator) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewComparator creates a comparator
func NewComparator(opts ...Option) *Comparator {
	c := &Comparator{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.generator = haplotype.NewGenerator(
		haplotype.WithMaxPaths(c.maxPaths),
		haplotype.WithLogger(c.logger),
	)
	return c
}

// Compare builds both representations over their joint bounds and classifies
// how they relate
func (c *Comparator) Compare(ctx context.Context, ref allele.Reference, bounds graph.Bounds, left, right []graph.Locus) (*Result, error) {
	bounds = JointBounds(bounds, left, right)

	var sides [2]*side
	g, gctx := errgroup.WithContext(ctx)
	for i, loci := range [2][]graph.Locus{left, right} {
		g.Go(func() error {
			s, err := c.side(gctx, ref, bounds, loci)
			if err != nil {
				return fmt.Errorf("%s representation: %w", sideName(i), err)
			}
			sides[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Bounds: bounds,
		Left:   Side{Paths: len(sides[0].haplotypes), Constraints: len(sides[0].constraints)},
		Right:  Side{Paths: len(sides[1].haplotypes), Constraints: len(sides[1].constraints)},
	}

	hs1, hs2 := haplotype.Intersect(sides[0].haplotypes, sides[1].haplotypes)
	result.Left.SharedPaths = len(hs1)
	result.Right.SharedPaths = len(hs2)
	result.Shared = haplotype.Sequences(hs1)

	if len(hs1) == 0 {
		result.Status = StatusHaplotypeMismatch
		c.log(result)
		return result, nil
	}

	result.Left.Genotypes = genotype.Enumerate(hs1, sides[0].constraints)
	result.Right.Genotypes = genotype.Enumerate(hs2, sides[1].constraints)
	result.Genotypes = genotype.Intersect(result.Left.Genotypes, result.Right.Genotypes)

	if len(result.Genotypes) > 0 {
		result.Status = StatusMatch
	} else {
		result.Status = StatusZygosityMismatch
	}
	c.log(result)
	return result, nil
}

func (c *Comparator) log(r *Result) {
	c.logger.Debug("superlocus compared",
		"status", r.Status.Code(),
		"shared_haplotypes", r.Shared,
		"genotypes_left", r.Left.Genotypes,
		"genotypes_right", r.Right.Genotypes)
}

// JointBounds fills the open ends of bounds from the loci of both
// representations: the smallest start and the largest stop
func JointBounds(bounds graph.Bounds, left, right []graph.Locus) graph.Bounds {
	var start, stop *int
	for _, loci := range [2][]graph.Locus{left, right} {
		for _, l := range loci {
			if start == nil || l.Start < *start {
				start = &l.Start
			}
			if stop == nil || l.Stop > *stop {
				stop = &l.Stop
			}
		}
	}

	out := bounds
	if out.Start == nil && start != nil {
		v := *start
		out.Start = &v
	}
	if out.Stop == nil && stop != nil {
		v := *stop
		out.Stop = &v
	}
	return out
}

// side holds the materialized pipeline output of one representation
type side struct {
	haplotypes  []haplotype.Haplotype
	constraints graph.Constraints
}

func (c *Comparator) side(ctx context.Context, ref allele.Reference, bounds graph.Bounds, loci []graph.Locus) (*side, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var key string
	if c.cache != nil {
		key = c.sideKey(ref, bounds, loci)
		if data, found := c.cache.Get(key); found {
			s, err := decodeSide(data)
			if err == nil {
				return s, nil
			}
			c.logger.Warn("discarding unreadable cache entry", "key", key, "error", err)
		}
	}

	g := graph.Build(ref, bounds, loci)
	hs, err := c.generator.Generate(g)
	if err != nil {
		return nil, err
	}
	constraints, err := g.Constraints()
	if err != nil {
		return nil, err
	}
	s := &side{haplotypes: hs, constraints: constraints}

	if c.cache != nil {
		data, err := encodeSide(s)
		if err == nil {
			err = c.cache.Set(key, data, 0)
		}
		if err != nil {
			c.logger.Warn("failed to cache representation", "key", key, "error", err)
		}
	}
	return s, nil
}

// sideKey identifies a pipeline run by the reference bases it reads, its
// bounds, its loci and the path limit
func (c *Comparator) sideKey(ref allele.Reference, bounds graph.Bounds, loci []graph.Locus) string {
	parts := []string{"side", strconv.Itoa(c.maxPaths), formatBound(bounds.Start), formatBound(bounds.Stop)}
	if bounds.Start != nil && bounds.Stop != nil {
		parts = append(parts, ref.Slice(*bounds.Start, *bounds.Stop))
	}
	for _, l := range loci {
		parts = append(parts, fmt.Sprintf("%d-%d:%s:%d,%d:%t",
			l.Start, l.Stop, strings.Join(l.Alleles, ","), l.Indices[0], l.Indices[1], l.Phased))
		parts = append(parts, ref.Slice(l.Start, l.Stop))
	}
	return cache.Key(parts...)
}

func formatBound(b *int) string {
	if b == nil {
		return "open"
	}
	return strconv.Itoa(*b)
}

func sideName(i int) string {
	if i == 0 {
		return "left"
	}
	return "right"
}
