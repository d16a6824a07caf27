// Package haplotype enumerates the haplotype sequences spelled by a linear
// variant graph under phase constraints, and intersects the haplotypes of two
// graphs built over the same region.
package haplotype

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/ppiankov/vgmatch/internal/allele"
	"github.com/ppiankov/vgmatch/internal/graph"
)

// ErrTooManyPaths is returned when the frontier grows past the configured limit
var ErrTooManyPaths = errors.New("too many haplotype paths")

// Haplotype is one complete path through a graph: its bases and the
// heterozygous alleles chosen along the way
type Haplotype struct {
	Seq  string
	Alts []allele.HetAlt
}

// path is a partial haplotype with its phase bookkeeping
type path struct {
	seq       string
	alts      []allele.HetAlt
	confirmed phaseSet
	excluded  phaseSet
}

// Generator expands graph segments into haplotypes
type Generator struct {
	maxPaths int
	logger   *slog.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithMaxPaths caps the frontier size; zero disables the cap
func WithMaxPaths(n int) Option {
	return func(g *Generator) {
		g.maxPaths = n
	}
}

// WithLogger sets the logger used for the per-segment trace
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator creates a generator
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate enumerates haplotypes with a default generator
func Generate(src graph.Source) ([]Haplotype, error) {
	return NewGenerator().Generate(src)
}

// Generate consumes every segment of src and returns one haplotype per
// surviving path. Distinct paths may spell the same sequence.
func (g *Generator) Generate(src graph.Source) ([]Haplotype, error) {
	frontier := []path{{}}
	trace := g.logger.Enabled(context.Background(), slog.LevelDebug)

	step := 0
	for src.Next() {
		step++
		seg := src.Segment()
		frontier = extend(frontier, seg.Alleles)

		if g.maxPaths > 0 && len(frontier) > g.maxPaths {
			return nil, fmt.Errorf("%w: %d paths at segment [%d, %d), limit %d",
				ErrTooManyPaths, len(frontier), seg.Start, seg.Stop, g.maxPaths)
		}
		if trace {
			g.logger.Debug("graph step",
				"step", step,
				"start", seg.Start,
				"stop", seg.Stop,
				"alleles", seg.Alleles,
				"paths", len(frontier))
			for i, p := range frontier {
				g.logger.Debug("path",
					"step", step,
					"index", i+1,
					"seq", p.seq,
					"alts", p.alts,
					"phases", p.confirmed.sorted(),
					"antiphases", p.excluded.sorted())
			}
		}
	}
	if err := src.Err(); err != nil {
		return nil, err
	}

	haplotypes := make([]Haplotype, len(frontier))
	for i, p := range frontier {
		haplotypes[i] = Haplotype{Seq: p.seq, Alts: p.alts}
	}
	return haplotypes, nil
}

// extend advances every path of the frontier across one segment
func extend(frontier []path, alleles []allele.Allele) []path {
	next := make([]path, 0, len(frontier)*len(alleles))
	for _, p := range frontier {
		// must be computed before pruning
		introducible := introducible(alleles, p.confirmed)

		for _, a := range prune(alleles, p.confirmed, p.excluded) {
			next = append(next, advance(p, a, introducible))
		}
	}
	return next
}

// introducible lists the phase groups of the segment the path has not committed to
func introducible(alleles []allele.Allele, confirmed phaseSet) []allele.PhaseGroup {
	var out []allele.PhaseGroup
	for _, a := range alleles {
		phase, ok := a.Phase()
		if !ok || confirmed.has(phase) || slices.Contains(out, phase) {
			continue
		}
		out = append(out, phase)
	}
	return out
}

// prune drops alleles that would break the path's phase commitments
func prune(alleles []allele.Allele, confirmed, excluded phaseSet) []allele.Allele {
	if len(confirmed) > 0 {
		var kept []allele.Allele
		for _, a := range alleles {
			if phase, ok := a.Phase(); !ok || confirmed.has(phase) {
				kept = append(kept, a)
			}
		}
		// when nothing fits the committed phases, leave the choice open
		if len(kept) > 0 {
			alleles = kept
		}
	}

	if len(excluded) > 0 {
		var kept []allele.Allele
		for _, a := range alleles {
			if phase, ok := a.Phase(); !ok || !excluded.has(phase) {
				kept = append(kept, a)
			}
		}
		alleles = kept
	}
	return alleles
}

// advance builds the path that takes allele a; p itself is left untouched
func advance(p path, a allele.Allele, introducible []allele.PhaseGroup) path {
	phase, phased := a.Phase()

	confirmed := p.confirmed
	if phased {
		confirmed = confirmed.with(phase)
	}

	excluded := p.excluded
	if len(introducible) > 0 {
		var anti []allele.PhaseGroup
		for _, g := range introducible {
			if !phased || g != phase {
				anti = append(anti, g)
			}
		}
		excluded = excluded.union(anti)
	}

	alts := p.alts
	if het, ok := a.(allele.HetAlt); ok {
		alts = append(slices.Clip(alts), het)
	}

	return path{
		seq:       p.seq + a.Seq(),
		alts:      alts,
		confirmed: confirmed,
		excluded:  excluded,
	}
}

// Intersect keeps the haplotypes of each side whose sequence also occurs on
// the other side. Input order is preserved.
func Intersect(a, b []Haplotype) ([]Haplotype, []Haplotype) {
	inA := make(map[string]struct{}, len(a))
	for _, h := range a {
		inA[h.Seq] = struct{}{}
	}
	shared := make(map[string]struct{})
	for _, h := range b {
		if _, ok := inA[h.Seq]; ok {
			shared[h.Seq] = struct{}{}
		}
	}
	return filter(a, shared), filter(b, shared)
}

func filter(hs []Haplotype, keep map[string]struct{}) []Haplotype {
	out := make([]Haplotype, 0, len(hs))
	for _, h := range hs {
		if _, ok := keep[h.Seq]; ok {
			out = append(out, h)
		}
	}
	return out
}

// Sequences returns the distinct sequences of hs in first-seen order
func Sequences(hs []Haplotype) []string {
	seen := make(map[string]struct{}, len(hs))
	var out []string
	for _, h := range hs {
		if _, ok := seen[h.Seq]; ok {
			continue
		}
		seen[h.Seq] = struct{}{}
		out = append(out, h.Seq)
	}
	return out
}
