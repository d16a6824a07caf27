package genotype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/vgmatch/internal/allele"
	"github.com/ppiankov/vgmatch/internal/graph"
	"github.com/ppiankov/vgmatch/internal/haplotype"
	"github.com/ppiankov/vgmatch/internal/reference"
)

var testRef = reference.NewWindow("1", 0, "GGTGAGGTTACCAGAGAGTTCAGG")

var (
	hetA = allele.NewHetAlt(2, 3, "A")
	hetC = allele.NewHetAlt(4, 5, "C")
)

// pipeline runs the graph and haplotype stages for one representation
func pipeline(t *testing.T, loci ...graph.Locus) ([]haplotype.Haplotype, graph.Constraints) {
	t.Helper()
	g := graph.Build(testRef, graph.Bounds{}, loci)
	hs, err := haplotype.Generate(g)
	require.NoError(t, err)
	constraints, err := g.Constraints()
	require.NoError(t, err)
	return hs, constraints
}

func locus(start int, ref, alt string, a, b int) graph.Locus {
	return graph.Locus{Start: start, Stop: start + len(ref), Alleles: []string{ref, alt}, Indices: [2]int{a, b}}
}

func TestNew_Canonicalizes(t *testing.T) {
	assert.Equal(t, Genotype{First: "AGC", Second: "TGA"}, New("TGA", "AGC"))
	assert.Equal(t, New("TGA", "AGC"), New("AGC", "TGA"))
	assert.Equal(t, "AGC/TGA", New("TGA", "AGC").String())
	assert.Equal(t, "-/A", New("A", "").String())
	assert.True(t, New("A", "A").Homozygous())
}

func TestIsValid_ExactMultiset(t *testing.T) {
	constraints := graph.Constraints{hetA.Key(): 1, hetC.Key(): 1}

	assert.True(t, IsValid(constraints, []allele.HetAlt{hetA}, []allele.HetAlt{hetC}))
	assert.True(t, IsValid(constraints, nil, []allele.HetAlt{hetA, hetC}))

	// subset
	assert.False(t, IsValid(constraints, []allele.HetAlt{hetA}, nil))
	// superset by count
	assert.False(t, IsValid(constraints, []allele.HetAlt{hetA, hetC}, []allele.HetAlt{hetA}))
	// superset by key
	extra := allele.NewHetAlt(6, 7, "T")
	assert.False(t, IsValid(constraints, []allele.HetAlt{hetA, extra}, []allele.HetAlt{hetC}))
}

func TestIsValid_PhaseDistinguishesAlleles(t *testing.T) {
	p0 := allele.NewPhasedHetAlt(2, 3, "A", 0)
	p1 := allele.NewPhasedHetAlt(2, 3, "A", 1)
	constraints := graph.Constraints{p0.Key(): 1, p1.Key(): 1}

	assert.True(t, IsValid(constraints, []allele.HetAlt{p0}, []allele.HetAlt{p1}))
	assert.False(t, IsValid(constraints, []allele.HetAlt{p0}, []allele.HetAlt{p0}))
}

func TestIsValid_EmptyConstraintsAcceptAnything(t *testing.T) {
	assert.True(t, IsValid(nil, []allele.HetAlt{hetA}, []allele.HetAlt{hetC}))
	assert.True(t, IsValid(graph.Constraints{}, nil, nil))
}

func TestEnumerate_SingleSNP(t *testing.T) {
	hs, constraints := pipeline(t, locus(2, "T", "A", 0, 1))

	assert.Equal(t, []Genotype{{First: "A", Second: "T"}}, Enumerate(hs, constraints))
}

func TestEnumerate_DecomposedHaplotypeBeforeIntersection(t *testing.T) {
	hs, constraints := pipeline(t, locus(2, "T", "A", 0, 1), locus(4, "A", "C", 0, 1))

	// unphased calls cannot tell cis from trans
	assert.Equal(t, []Genotype{
		{First: "AGA", Second: "TGC"},
		{First: "AGC", Second: "TGA"},
	}, Enumerate(hs, constraints))
}

func TestEnumerate_PhasedCallsPinTheGenotype(t *testing.T) {
	cis := []graph.Locus{locus(2, "T", "A", 0, 1), locus(4, "A", "C", 0, 1)}
	cis[0].Phased, cis[1].Phased = true, true
	hs, constraints := pipeline(t, cis...)
	assert.Equal(t, []Genotype{{First: "AGC", Second: "TGA"}}, Enumerate(hs, constraints))

	trans := []graph.Locus{locus(2, "T", "A", 0, 1), locus(4, "A", "C", 1, 0)}
	trans[0].Phased, trans[1].Phased = true, true
	hs, constraints = pipeline(t, trans...)
	assert.Equal(t, []Genotype{{First: "AGA", Second: "TGC"}}, Enumerate(hs, constraints))
}

func TestEnumerate_HomozygousPairsWithItself(t *testing.T) {
	hs, constraints := pipeline(t, graph.Locus{Start: 2, Stop: 5, Alleles: []string{"TGA", "AGC"}, Indices: [2]int{1, 1}})

	require.Empty(t, constraints)
	assert.Equal(t, []Genotype{{First: "AGC", Second: "AGC"}}, Enumerate(hs, constraints))
}

func TestEnumerate_NoConstraintsAllowsEveryPair(t *testing.T) {
	hs := []haplotype.Haplotype{{Seq: "T"}, {Seq: "A"}}

	assert.Equal(t, []Genotype{
		{First: "A", Second: "A"},
		{First: "A", Second: "T"},
		{First: "T", Second: "T"},
	}, Enumerate(hs, nil))
}

func TestEnumerate_SelfPairingGatedByExactOnceConstraint(t *testing.T) {
	hs := []haplotype.Haplotype{{Seq: "T"}, {Seq: "A", Alts: []allele.HetAlt{hetA}}}

	// multiplicity two with no exact-once obligation: the alt path pairs with itself
	assert.Equal(t, []Genotype{{First: "A", Second: "A"}}, Enumerate(hs, graph.Constraints{hetA.Key(): 2}))

	// exact-once: only distinct paths are considered
	got := Enumerate(hs, graph.Constraints{hetA.Key(): 1})
	assert.Equal(t, []Genotype{{First: "A", Second: "T"}}, got)
	for _, g := range got {
		assert.False(t, g.Homozygous())
	}
}

func TestEnumerate_DistinctPathsWithEqualSequencesMayPair(t *testing.T) {
	other := allele.NewHetAlt(2, 3, "A")
	hs := []haplotype.Haplotype{
		{Seq: "A", Alts: []allele.HetAlt{hetA}},
		{Seq: "A"},
	}
	assert.Equal(t, []Genotype{{First: "A", Second: "A"}}, Enumerate(hs, graph.Constraints{other.Key(): 1}))
}

func TestEnumerate_NeverReturnsInexactPairs(t *testing.T) {
	hs, constraints := pipeline(t, locus(2, "T", "A", 0, 1), locus(4, "A", "C", 0, 1), locus(6, "G", "T", 0, 1))

	byPair := map[Genotype]bool{}
	for i := range hs {
		for j := i + 1; j < len(hs); j++ {
			if IsValid(constraints, hs[i].Alts, hs[j].Alts) {
				byPair[New(hs[i].Seq, hs[j].Seq)] = true
			}
		}
	}

	got := Enumerate(hs, constraints)
	require.NotEmpty(t, got)
	assert.Len(t, got, len(byPair))
	for _, g := range got {
		assert.True(t, byPair[g], g.String())
	}
}

func TestEnumerate_Empty(t *testing.T) {
	assert.Empty(t, Enumerate(nil, graph.Constraints{hetA.Key(): 1}))
}

func TestIntersectAndOverlaps(t *testing.T) {
	a := []Genotype{New("A", "T"), New("AGC", "TGA")}
	b := []Genotype{New("TGA", "AGC"), New("C", "C")}

	assert.Equal(t, []Genotype{{First: "AGC", Second: "TGA"}}, Intersect(a, b))
	assert.True(t, Overlaps(a, b))
	assert.False(t, Overlaps(a, nil))
	assert.False(t, Overlaps(nil, nil))
}
