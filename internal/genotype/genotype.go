// Package genotype pairs haplotypes into diploid genotypes that satisfy the
// zygosity constraints of a variant graph.
package genotype

import (
	"cmp"
	"maps"
	"slices"

	"github.com/ppiankov/vgmatch/internal/allele"
	"github.com/ppiankov/vgmatch/internal/graph"
	"github.com/ppiankov/vgmatch/internal/haplotype"
)

// Genotype is an unordered pair of haplotype sequences, stored with First <= Second
type Genotype struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// New canonicalizes a pair of haplotype sequences
func New(a, b string) Genotype {
	if a <= b {
		return Genotype{First: a, Second: b}
	}
	return Genotype{First: b, Second: a}
}

// String formats the genotype as first/second
func (g Genotype) String() string {
	return orDash(g.First) + "/" + orDash(g.Second)
}

// Homozygous reports whether both haplotypes spell the same sequence
func (g Genotype) Homozygous() bool {
	return g.First == g.Second
}

func compare(a, b Genotype) int {
	if c := cmp.Compare(a.First, b.First); c != 0 {
		return c
	}
	return cmp.Compare(a.Second, b.Second)
}

// IsValid reports whether the heterozygous alleles of two haplotypes together
// match the constraints exactly. Empty constraints accept any pair.
func IsValid(constraints graph.Constraints, alts1, alts2 []allele.HetAlt) bool {
	if len(constraints) == 0 {
		return true
	}
	observed := make(map[allele.Key]int, len(constraints))
	for _, a := range alts1 {
		observed[a.Key()]++
	}
	for _, a := range alts2 {
		observed[a.Key()]++
	}
	return maps.Equal(observed, map[allele.Key]int(constraints))
}

// Enumerate returns the sorted, de-duplicated genotypes admissible for the
// haplotypes. When some allele must occur exactly once, a haplotype is never
// paired with itself.
func Enumerate(paths []haplotype.Haplotype, constraints graph.Constraints) []Genotype {
	distinct := constraints.RequiresDistinct()

	seen := make(map[Genotype]struct{})
	for i := range paths {
		j := i
		if distinct {
			j = i + 1
		}
		for ; j < len(paths); j++ {
			if IsValid(constraints, paths[i].Alts, paths[j].Alts) {
				seen[New(paths[i].Seq, paths[j].Seq)] = struct{}{}
			}
		}
	}

	return sorted(seen)
}

// Intersect returns the genotypes present in both sorted sets
func Intersect(a, b []Genotype) []Genotype {
	in := make(map[Genotype]struct{}, len(a))
	for _, g := range a {
		in[g] = struct{}{}
	}
	shared := make(map[Genotype]struct{})
	for _, g := range b {
		if _, ok := in[g]; ok {
			shared[g] = struct{}{}
		}
	}
	return sorted(shared)
}

// Overlaps reports whether two genotype sets are both non-empty and share a genotype
func Overlaps(a, b []Genotype) bool {
	return len(Intersect(a, b)) > 0
}

func sorted(set map[Genotype]struct{}) []Genotype {
	return slices.SortedFunc(maps.Keys(set), compare)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
