package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/vgmatch/internal/graph"
)

// ErrInvalidDocument is returned for input documents that cannot describe a comparison
var ErrInvalidDocument = errors.New("invalid document")

// Comparison is one input document: a reference region and two
// representations of the same diploid calls
type Comparison struct {
	Name      string         `yaml:"name" json:"name"`
	Reference *ReferenceSpec `yaml:"reference,omitempty" json:"reference,omitempty"`
	Start     *int           `yaml:"start,omitempty" json:"start,omitempty"` // Open when unset
	Stop      *int           `yaml:"stop,omitempty" json:"stop,omitempty"`   // Open when unset
	Left      []LocusSpec    `yaml:"left" json:"left"`
	Right     []LocusSpec    `yaml:"right" json:"right"`
}

// Batch is a document holding many comparisons
type Batch struct {
	Reference   *ReferenceSpec `yaml:"reference,omitempty"` // Used by comparisons without their own
	Comparisons []Comparison   `yaml:"comparisons"`
}

// ReferenceSpec locates the reference bases, either inline or in an indexed FASTA
type ReferenceSpec struct {
	Contig   string `yaml:"contig" json:"contig"`
	Offset   int    `yaml:"offset,omitempty" json:"offset,omitempty"` // Coordinate of the first inline base
	Sequence string `yaml:"sequence,omitempty" json:"-"`
	Fasta    string `yaml:"fasta,omitempty" json:"fasta,omitempty"`
	Margin   int    `yaml:"margin,omitempty" json:"margin,omitempty"` // Extra FASTA bases loaded around the loci
}

// LocusSpec is a called locus in VCF-like notation
type LocusSpec struct {
	Start   int      `yaml:"start" json:"start"`
	Stop    *int     `yaml:"stop,omitempty" json:"stop,omitempty"` // Defaults to start + len(alleles[0])
	Alleles []string `yaml:"alleles" json:"alleles"`               // Reference allele first
	GT      string   `yaml:"gt" json:"gt"`                         // 0/1 unphased, 0|1 phased
}

// Validate checks the document shape; allele selections are checked when the graph is built
func (c *Comparison) Validate() error {
	if c.Reference == nil {
		return fmt.Errorf("%w: %q has no reference", ErrInvalidDocument, c.Name)
	}
	if err := c.Reference.Validate(); err != nil {
		return fmt.Errorf("%q: %w", c.Name, err)
	}
	if c.Start != nil && c.Stop != nil && *c.Start > *c.Stop {
		return fmt.Errorf("%w: %q has start %d after stop %d", ErrInvalidDocument, c.Name, *c.Start, *c.Stop)
	}
	return nil
}

// Validate checks that exactly one reference source is given
func (r *ReferenceSpec) Validate() error {
	switch {
	case r.Sequence != "" && r.Fasta != "":
		return fmt.Errorf("%w: reference has both sequence and fasta", ErrInvalidDocument)
	case r.Sequence == "" && r.Fasta == "":
		return fmt.Errorf("%w: reference has neither sequence nor fasta", ErrInvalidDocument)
	case r.Fasta != "" && r.Contig == "":
		return fmt.Errorf("%w: fasta reference needs a contig", ErrInvalidDocument)
	case r.Margin < 0:
		return fmt.Errorf("%w: negative reference margin", ErrInvalidDocument)
	}
	return nil
}

// Bounds returns the explicit bounds of the comparison
func (c *Comparison) Bounds() graph.Bounds {
	return graph.Bounds{Start: c.Start, Stop: c.Stop}
}

// Loci converts both representations
func (c *Comparison) Loci() (left, right []graph.Locus, err error) {
	if left, err = Loci(c.Left); err != nil {
		return nil, nil, fmt.Errorf("left: %w", err)
	}
	if right, err = Loci(c.Right); err != nil {
		return nil, nil, fmt.Errorf("right: %w", err)
	}
	return left, right, nil
}

// Loci converts a list of locus specs
func Loci(specs []LocusSpec) ([]graph.Locus, error) {
	loci := make([]graph.Locus, 0, len(specs))
	for _, s := range specs {
		l, err := s.Locus()
		if err != nil {
			return nil, err
		}
		loci = append(loci, l)
	}
	return loci, nil
}

// Locus converts the VCF-like notation into a graph locus
func (s LocusSpec) Locus() (graph.Locus, error) {
	if len(s.Alleles) == 0 {
		return graph.Locus{}, fmt.Errorf("%w: locus at %d has no alleles", ErrInvalidDocument, s.Start)
	}
	indices, phased, err := ParseGT(s.GT)
	if err != nil {
		return graph.Locus{}, fmt.Errorf("locus at %d: %w", s.Start, err)
	}

	stop := s.Start + len(s.Alleles[0])
	if s.Stop != nil {
		stop = *s.Stop
	}
	if stop < s.Start {
		return graph.Locus{}, fmt.Errorf("%w: locus at %d stops at %d", ErrInvalidDocument, s.Start, stop)
	}

	return graph.Locus{
		Start:   s.Start,
		Stop:    stop,
		Alleles: s.Alleles,
		Indices: indices,
		Phased:  phased,
	}, nil
}

// ParseGT parses a diploid genotype such as 0/1 or 1|0
func ParseGT(gt string) ([2]int, bool, error) {
	sep, phased := "/", false
	if strings.Contains(gt, "|") {
		sep, phased = "|", true
	}

	parts := strings.Split(gt, sep)
	if len(parts) != 2 {
		return [2]int{}, false, fmt.Errorf("%w: genotype %q is not diploid", graph.ErrMalformedSelection, gt)
	}

	var indices [2]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return [2]int{}, false, fmt.Errorf("%w: genotype %q has allele %q", graph.ErrMalformedSelection, gt, p)
		}
		indices[i] = n
	}
	return indices, phased, nil
}
