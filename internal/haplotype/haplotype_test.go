package haplotype

import (
	"bytes"
	"log/slog"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/vgmatch/internal/allele"
	"github.com/ppiankov/vgmatch/internal/graph"
	"github.com/ppiankov/vgmatch/internal/reference"
)

var testRef = reference.NewWindow("1", 0, "GGTGAGGTTACCAGAGAGTTCAGG")

func snp(start int, ref, alt string, a, b int, phased bool) graph.Locus {
	return graph.Locus{
		Start:   start,
		Stop:    start + len(ref),
		Alleles: []string{ref, alt},
		Indices: [2]int{a, b},
		Phased:  phased,
	}
}

func generate(t *testing.T, bounds graph.Bounds, loci ...graph.Locus) []Haplotype {
	t.Helper()
	hs, err := Generate(graph.Build(testRef, bounds, loci))
	require.NoError(t, err)
	return hs
}

func seqs(hs []Haplotype) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.Seq
	}
	return out
}

func altSeqs(h Haplotype) []string {
	out := make([]string, 0, len(h.Alts))
	for _, a := range h.Alts {
		out = append(out, a.Seq())
	}
	return out
}

func TestGenerate_EmptyGraphYieldsEmptyHaplotype(t *testing.T) {
	hs := generate(t, graph.Bounds{})
	require.Len(t, hs, 1)
	assert.Equal(t, "", hs[0].Seq)
	assert.Empty(t, hs[0].Alts)
}

func TestGenerate_UnphasedExpandsEveryCombination(t *testing.T) {
	hs := generate(t, graph.Bounds{}, snp(2, "T", "A", 0, 1, false), snp(4, "A", "C", 0, 1, false))

	assert.Equal(t, []string{"TGA", "TGC", "AGA", "AGC"}, seqs(hs))
	assert.Empty(t, hs[0].Alts)
	assert.Equal(t, []string{"C"}, altSeqs(hs[1]))
	assert.Equal(t, []string{"A"}, altSeqs(hs[2]))
	assert.Equal(t, []string{"A", "C"}, altSeqs(hs[3]))
}

func TestGenerate_HomAltContributesSequenceOnly(t *testing.T) {
	hs := generate(t, graph.Within(1, 6), snp(2, "T", "A", 1, 1, false), snp(4, "A", "C", 0, 1, false))

	assert.Equal(t, []string{"GAGAG", "GAGCG"}, seqs(hs))
	assert.Empty(t, hs[0].Alts)
	assert.Equal(t, []string{"C"}, altSeqs(hs[1]))
}

func TestGenerate_PhasedCisKeepsAltsTogether(t *testing.T) {
	hs := generate(t, graph.Bounds{}, snp(2, "T", "A", 0, 1, true), snp(4, "A", "C", 0, 1, true))

	// the reference path has ruled out phase 1, so it cannot pick up the second alt
	assert.Equal(t, []string{"TGA", "AGA", "AGC"}, seqs(hs))
	assert.Equal(t, []string{"A", "C"}, altSeqs(hs[2]))
}

func TestGenerate_PhasedTransSeparatesAlts(t *testing.T) {
	hs := generate(t, graph.Bounds{}, snp(2, "T", "A", 0, 1, true), snp(4, "A", "C", 1, 0, true))

	assert.Equal(t, []string{"TGA", "TGC", "AGA"}, seqs(hs))
	assert.Equal(t, []string{"C"}, altSeqs(hs[1]))
	assert.Equal(t, []string{"A"}, altSeqs(hs[2]))
}

func TestGenerate_FallbackWhenNoAlleleMatchesCommittedPhase(t *testing.T) {
	ref := allele.NewRefCopy(2, 3, testRef)
	altA := allele.NewPhasedHetAlt(2, 3, "A", 1)
	altC := allele.NewPhasedHetAlt(3, 4, "C", 0)
	src := graph.FromSegments([]graph.Segment{
		{Start: 2, Stop: 3, Alleles: []allele.Allele{ref, altA}},
		{Start: 3, Stop: 4, Alleles: []allele.Allele{altC}},
	})

	hs, err := Generate(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"TC", "AC"}, seqs(hs))
}

func TestGenerate_ExcludedPhaseKillsPath(t *testing.T) {
	src := graph.FromSegments([]graph.Segment{
		{Start: 2, Stop: 3, Alleles: []allele.Allele{
			allele.NewRefCopy(2, 3, testRef),
			allele.NewPhasedHetAlt(2, 3, "A", 0),
			allele.NewPhasedHetAlt(2, 3, "G", 1),
		}},
		{Start: 3, Stop: 4, Alleles: []allele.Allele{
			allele.NewPhasedHetAlt(3, 4, "C", 0),
			allele.NewPhasedHetAlt(3, 4, "T", 1),
		}},
	})

	hs, err := Generate(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"AC", "GT"}, seqs(hs))
}

func TestGenerate_LengthConservation(t *testing.T) {
	loci := []graph.Locus{
		{Start: 2, Stop: 5, Alleles: []string{"TGA", ""}, Indices: [2]int{0, 1}},
		{Start: 7, Stop: 7, Alleles: []string{"", "CCCC"}, Indices: [2]int{1, 0}},
		{Start: 9, Stop: 10, Alleles: []string{"A", "G", "TT"}, Indices: [2]int{1, 2}},
	}
	src := graph.Build(testRef, graph.Within(0, 12), loci)
	segments, err := graph.Drain(src)
	require.NoError(t, err)

	hs, err := Generate(graph.FromSegments(segments))
	require.NoError(t, err)
	require.Len(t, hs, 8)

	// every segment contributes either its reference span or the alt length
	for _, h := range hs {
		want := 0
		for _, seg := range segments {
			chosen := seg.Alleles[0].Len()
			for _, a := range h.Alts {
				if a.Start() == seg.Start && a.Stop() == seg.Stop {
					chosen = a.Len()
				}
			}
			want += chosen
		}
		assert.Equal(t, want, len(h.Seq), h.Seq)
	}
}

func TestGenerate_PropagatesGraphErrors(t *testing.T) {
	loci := []graph.Locus{snp(4, "A", "C", 0, 1, false), snp(2, "T", "A", 0, 1, false)}
	_, err := Generate(graph.Build(testRef, graph.Bounds{}, loci))
	assert.ErrorIs(t, err, graph.ErrOverlappingLocus)
}

func TestGenerator_MaxPaths(t *testing.T) {
	loci := []graph.Locus{
		snp(2, "T", "A", 0, 1, false),
		snp(4, "A", "C", 0, 1, false),
		snp(6, "G", "T", 0, 1, false),
	}

	_, err := NewGenerator(WithMaxPaths(4)).Generate(graph.Build(testRef, graph.Bounds{}, loci))
	assert.ErrorIs(t, err, ErrTooManyPaths)

	hs, err := NewGenerator(WithMaxPaths(8)).Generate(graph.Build(testRef, graph.Bounds{}, loci))
	require.NoError(t, err)
	assert.Len(t, hs, 8)
}

func TestGenerator_DebugTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := NewGenerator(WithLogger(logger)).Generate(graph.Build(testRef, graph.Bounds{}, []graph.Locus{snp(2, "T", "A", 0, 1, true)}))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "graph step")
	assert.Contains(t, buf.String(), "seq=A")
}

func TestExtend_EmptyFrontierStaysEmpty(t *testing.T) {
	out := extend(nil, []allele.Allele{allele.NewHomAlt(2, 3, "A")})
	assert.Empty(t, out)
}

func TestAdvance_PhaseSetsOnlyGrow(t *testing.T) {
	alleles := []allele.Allele{
		allele.NewRefCopy(2, 3, testRef),
		allele.NewPhasedHetAlt(2, 3, "A", 0),
		allele.NewPhasedHetAlt(2, 3, "G", 1),
	}
	parent := path{
		seq:       "GG",
		confirmed: phaseSet{3: {}},
		excluded:  phaseSet{4: {}},
	}

	intro := introducible(alleles, parent.confirmed)
	assert.Equal(t, []allele.PhaseGroup{0, 1}, intro)

	for _, a := range prune(alleles, parent.confirmed, parent.excluded) {
		child := advance(parent, a, intro)
		for p := range parent.confirmed {
			assert.True(t, child.confirmed.has(p))
		}
		for p := range parent.excluded {
			assert.True(t, child.excluded.has(p))
		}
		for p := range child.confirmed {
			assert.False(t, child.excluded.has(p), "phase %d both confirmed and excluded", p)
		}
	}

	// the parent is never mutated
	assert.Len(t, parent.confirmed, 1)
	assert.Len(t, parent.excluded, 1)
}

func TestAdvance_SharesUnchangedSets(t *testing.T) {
	parent := path{confirmed: phaseSet{1: {}}, excluded: phaseSet{0: {}}}

	child := advance(parent, allele.NewHomAlt(2, 3, "A"), nil)
	assert.Equal(t, reflect.ValueOf(parent.confirmed).Pointer(), reflect.ValueOf(child.confirmed).Pointer())
	assert.Equal(t, reflect.ValueOf(parent.excluded).Pointer(), reflect.ValueOf(child.excluded).Pointer())

	child = advance(parent, allele.NewPhasedHetAlt(2, 3, "A", 1), nil)
	assert.Equal(t, reflect.ValueOf(parent.confirmed).Pointer(), reflect.ValueOf(child.confirmed).Pointer())
}

func TestAdvance_SiblingsDoNotShareAlts(t *testing.T) {
	base := make([]allele.HetAlt, 1, 8)
	base[0] = allele.NewHetAlt(0, 1, "T")
	parent := path{alts: base}

	left := advance(parent, allele.NewHetAlt(2, 3, "A"), nil)
	right := advance(parent, allele.NewHetAlt(2, 3, "C"), nil)

	assert.Equal(t, "A", left.alts[1].Seq())
	assert.Equal(t, "C", right.alts[1].Seq())
	assert.Len(t, parent.alts, 1)
}

func TestIntersect_FiltersToSharedSequences(t *testing.T) {
	a := []Haplotype{{Seq: "TGA"}, {Seq: "AGC"}, {Seq: "TTT"}, {Seq: "TGA"}}
	b := []Haplotype{{Seq: "AGC"}, {Seq: "GGG"}, {Seq: "TGA"}}

	fa, fb := Intersect(a, b)
	assert.Equal(t, []string{"TGA", "AGC", "TGA"}, seqs(fa))
	assert.Equal(t, []string{"AGC", "TGA"}, seqs(fb))
}

func TestIntersect_SymmetricAndIdempotent(t *testing.T) {
	a := generate(t, graph.Bounds{}, graph.Locus{Start: 2, Stop: 5, Alleles: []string{"TGA", "AGC"}, Indices: [2]int{0, 1}})
	b := generate(t, graph.Bounds{}, snp(2, "T", "A", 0, 1, false), snp(4, "A", "C", 0, 1, false))

	ab1, ab2 := Intersect(a, b)
	ba1, ba2 := Intersect(b, a)
	assert.ElementsMatch(t, Sequences(ab1), Sequences(ba2))
	assert.ElementsMatch(t, Sequences(ab2), Sequences(ba1))
	assert.ElementsMatch(t, []string{"TGA", "AGC"}, Sequences(ab2))

	again1, again2 := Intersect(ab1, ab2)
	assert.Equal(t, ab1, again1)
	assert.Equal(t, ab2, again2)
}

func TestIntersect_Disjoint(t *testing.T) {
	fa, fb := Intersect([]Haplotype{{Seq: "A"}}, []Haplotype{{Seq: "C"}})
	assert.Empty(t, fa)
	assert.Empty(t, fb)
}

func TestSequences_Dedupes(t *testing.T) {
	assert.Equal(t, []string{"A", "C"}, Sequences([]Haplotype{{Seq: "A"}, {Seq: "C"}, {Seq: "A"}}))
}
