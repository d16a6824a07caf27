// Package graph turns an ordered list of called loci into a linear variant
// graph: contiguous segments, each carrying the alleles usable over its
// interval, plus the zygosity constraints implied by the calls.
package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ppiankov/vgmatch/internal/allele"
)

var (
	// ErrOverlappingLocus is returned when loci are unsorted or overlap
	ErrOverlappingLocus = errors.New("overlapping locus")
	// ErrMalformedSelection is returned when a locus selects an allele it does not have
	ErrMalformedSelection = errors.New("malformed allele selection")
	// ErrNotDrained is returned when constraints are read before the segments are consumed
	ErrNotDrained = errors.New("graph not drained")
)

// Locus is a called interval with its candidate alleles and diploid selection.
// Alleles[0] is the reference allele.
type Locus struct {
	Start   int
	Stop    int
	Alleles []string
	Indices [2]int
	Phased  bool
}

// Bounds limits the region covered by a graph. A nil end is derived from the loci.
type Bounds struct {
	Start *int
	Stop  *int
}

// Within returns closed bounds over [start, stop)
func Within(start, stop int) Bounds {
	return Bounds{Start: &start, Stop: &stop}
}

// Segment is one interval of the graph with its exhaustive allele choices
type Segment struct {
	Start   int
	Stop    int
	Alleles []allele.Allele
}

// Constraints maps a heterozygous allele to the number of times it must occur
// across the two haplotypes of a genotype
type Constraints map[allele.Key]int

// RequiresDistinct reports whether any allele must occur exactly once
func (c Constraints) RequiresDistinct() bool {
	for _, n := range c {
		if n == 1 {
			return true
		}
	}
	return false
}

// Source is a single-pass, forward-only sequence of segments
type Source interface {
	Next() bool
	Segment() Segment
	Err() error
}

// Graph lazily produces segments for one locus list.
// Constraints become readable once Next has returned false.
type Graph struct {
	ref   allele.Reference
	stop  *int
	loci  []Locus
	pos   int
	open  bool // pos not yet known (open start, no locus seen)
	next  int  // index of the next locus
	queue []Segment

	cur         Segment
	constraints Constraints
	done        bool
	err         error
}

// Build prepares a graph over the loci. Loci must be sorted by start and
// must not overlap; violations surface as ErrOverlappingLocus while draining.
func Build(ref allele.Reference, bounds Bounds, loci []Locus) *Graph {
	g := &Graph{
		ref:         ref,
		stop:        bounds.Stop,
		loci:        loci,
		open:        bounds.Start == nil,
		constraints: make(Constraints),
	}
	if bounds.Start != nil {
		g.pos = *bounds.Start
	}
	return g
}

// Next advances to the next segment
func (g *Graph) Next() bool {
	if g.done {
		return false
	}
	if len(g.queue) == 0 {
		g.fill()
	}
	if len(g.queue) == 0 {
		g.done = true
		return false
	}
	g.cur, g.queue = g.queue[0], g.queue[1:]
	return true
}

// Segment returns the current segment
func (g *Graph) Segment() Segment {
	return g.cur
}

// Err returns the error that stopped the graph, if any
func (g *Graph) Err() error {
	return g.err
}

// Constraints returns the zygosity constraints once every segment was consumed
func (g *Graph) Constraints() (Constraints, error) {
	if g.err != nil {
		return nil, g.err
	}
	if !g.done {
		return nil, ErrNotDrained
	}
	return g.constraints, nil
}

// fill queues the segments contributed by the next locus, or the trailing filler
func (g *Graph) fill() {
	if g.next >= len(g.loci) {
		// an open start with no loci leaves nothing to anchor a filler
		if g.stop != nil && !g.open && g.pos < *g.stop {
			g.queue = append(g.queue, g.filler(g.pos, *g.stop))
			g.pos = *g.stop
		}
		return
	}

	locus := g.loci[g.next]
	g.next++

	if !g.open {
		if g.pos > locus.Start {
			g.fail(fmt.Errorf("%w: previous stop=%d, current start=%d", ErrOverlappingLocus, g.pos, locus.Start))
			return
		}
		if g.pos < locus.Start {
			g.queue = append(g.queue, g.filler(g.pos, locus.Start))
		}
	}

	alleles, err := g.classify(locus)
	if err != nil {
		g.fail(err)
		return
	}
	g.queue = append(g.queue, Segment{Start: locus.Start, Stop: locus.Stop, Alleles: alleles})
	g.pos = locus.Stop
	g.open = false
}

func (g *Graph) filler(start, stop int) Segment {
	return Segment{Start: start, Stop: stop, Alleles: []allele.Allele{allele.NewRefCopy(start, stop, g.ref)}}
}

func (g *Graph) fail(err error) {
	g.err = err
	g.done = true
	g.queue = nil
}

// classify yields the alleles a locus contributes to its segment and records
// heterozygous multiplicities
func (g *Graph) classify(locus Locus) ([]allele.Allele, error) {
	if err := validate(locus); err != nil {
		return nil, err
	}

	distinct := distinctIndices(locus.Indices)
	het := len(distinct) > 1

	var alleles []allele.Allele
	for _, i := range distinct {
		switch {
		case i != 0 && het && locus.Phased:
			// each slot carrying the alt is its own phased allele
			for slot, idx := range locus.Indices {
				if idx != i {
					continue
				}
				a := allele.NewPhasedHetAlt(locus.Start, locus.Stop, locus.Alleles[i], allele.PhaseGroup(slot))
				g.constraints[a.Key()]++
				alleles = append(alleles, a)
			}
		case i != 0 && het:
			a := allele.NewHetAlt(locus.Start, locus.Stop, locus.Alleles[i])
			g.constraints[a.Key()] += slotCount(locus.Indices, i)
			alleles = append(alleles, a)
		case i != 0:
			alleles = append(alleles, allele.NewHomAlt(locus.Start, locus.Stop, locus.Alleles[i]))
		default:
			alleles = append(alleles, allele.NewRefCopy(locus.Start, locus.Stop, g.ref))
		}
	}
	return alleles, nil
}

func validate(locus Locus) error {
	if locus.Stop < locus.Start {
		return fmt.Errorf("%w: stop %d before start %d", ErrMalformedSelection, locus.Stop, locus.Start)
	}
	if len(locus.Alleles) == 0 {
		return fmt.Errorf("%w: locus at %d has no alleles", ErrMalformedSelection, locus.Start)
	}
	for _, idx := range locus.Indices {
		if idx < 0 || idx >= len(locus.Alleles) {
			return fmt.Errorf("%w: index %d out of range for %d alleles at %d", ErrMalformedSelection, idx, len(locus.Alleles), locus.Start)
		}
	}
	return nil
}

func distinctIndices(indices [2]int) []int {
	if indices[0] == indices[1] {
		return []int{indices[0]}
	}
	out := []int{indices[0], indices[1]}
	sort.Ints(out)
	return out
}

func slotCount(indices [2]int, i int) int {
	n := 0
	for _, idx := range indices {
		if idx == i {
			n++
		}
	}
	return n
}

// sliceSource replays materialized segments
type sliceSource struct {
	segments []Segment
	pos      int
}

// FromSegments wraps materialized segments as a Source
func FromSegments(segments []Segment) Source {
	return &sliceSource{segments: segments, pos: -1}
}

func (s *sliceSource) Next() bool {
	if s.pos+1 >= len(s.segments) {
		s.pos = len(s.segments)
		return false
	}
	s.pos++
	return true
}

func (s *sliceSource) Segment() Segment { return s.segments[s.pos] }
func (s *sliceSource) Err() error       { return nil }

// Drain consumes a source into a slice
func Drain(src Source) ([]Segment, error) {
	var segments []Segment
	for src.Next() {
		segments = append(segments, src.Segment())
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	return segments, nil
}
