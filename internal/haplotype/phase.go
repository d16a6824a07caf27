package haplotype

import (
	"slices"

	"github.com/ppiankov/vgmatch/internal/allele"
)

// phaseSet is an immutable set of phase groups. Paths share a set until one
// of them inserts, at which point only that path gets a copy.
type phaseSet map[allele.PhaseGroup]struct{}

func (s phaseSet) has(p allele.PhaseGroup) bool {
	_, ok := s[p]
	return ok
}

// with returns s itself when p is already present
func (s phaseSet) with(p allele.PhaseGroup) phaseSet {
	if s.has(p) {
		return s
	}
	out := make(phaseSet, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	out[p] = struct{}{}
	return out
}

// union returns s itself when add contributes nothing new
func (s phaseSet) union(add []allele.PhaseGroup) phaseSet {
	var fresh []allele.PhaseGroup
	for _, p := range add {
		if !s.has(p) {
			fresh = append(fresh, p)
		}
	}
	if len(fresh) == 0 {
		return s
	}
	out := make(phaseSet, len(s)+len(fresh))
	for k := range s {
		out[k] = struct{}{}
	}
	for _, p := range fresh {
		out[p] = struct{}{}
	}
	return out
}

func (s phaseSet) sorted() []allele.PhaseGroup {
	out := make([]allele.PhaseGroup, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
