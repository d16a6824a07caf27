// Package allele defines the edge labels of a linear variant graph.
package allele

import "fmt"

// Reference is a genomic sequence addressable by half-open, 0-based ranges
type Reference interface {
	Slice(start, stop int) string
}

// Kind distinguishes the three allele variants
type Kind int

const (
	KindRef Kind = iota
	KindHomAlt
	KindHetAlt
)

// String returns the variant name of the kind
func (k Kind) String() string {
	switch k {
	case KindRef:
		return "RefCopy"
	case KindHomAlt:
		return "HomAlt"
	case KindHetAlt:
		return "HetAlt"
	default:
		return "Unknown"
	}
}

// PhaseGroup identifies alleles that must travel on the same haplotype.
// Phased loci use the haplotype slot position as the group.
type PhaseGroup int

// Allele is one concrete sequence choice over an interval.
// The interface is sealed; RefCopy, HomAlt and HetAlt are the only variants.
type Allele interface {
	Start() int
	Stop() int
	Len() int
	Seq() string
	Phase() (PhaseGroup, bool)
	Key() Key
	String() string

	sealed()
}

// Key is the value identity of an allele, usable as a map key
type Key struct {
	Kind   Kind
	Start  int
	Stop   int
	Seq    string
	Phase  PhaseGroup
	Phased bool
}

// String formats the key like the allele it identifies
func (k Key) String() string {
	if k.Phased {
		return fmt.Sprintf("%s(%d, %d, %s, phase=%d)", k.Kind, k.Start, k.Stop, trimSeq(k.Seq), k.Phase)
	}
	return fmt.Sprintf("%s(%d, %d, %s)", k.Kind, k.Start, k.Stop, trimSeq(k.Seq))
}

// RefCopy copies the reference over its interval
type RefCopy struct {
	start, stop int
	ref         Reference
}

// NewRefCopy creates a reference-copy allele; its sequence is sliced on demand
func NewRefCopy(start, stop int, ref Reference) RefCopy {
	return RefCopy{start: start, stop: stop, ref: ref}
}

func (a RefCopy) Start() int                { return a.start }
func (a RefCopy) Stop() int                 { return a.stop }
func (a RefCopy) Len() int                  { return a.stop - a.start }
func (a RefCopy) Seq() string               { return a.ref.Slice(a.start, a.stop) }
func (a RefCopy) Phase() (PhaseGroup, bool) { return 0, false }
func (a RefCopy) sealed()                   {}

// Key returns the identity of the copy: interval plus reference bases
func (a RefCopy) Key() Key {
	return Key{Kind: KindRef, Start: a.start, Stop: a.stop, Seq: a.Seq()}
}

func (a RefCopy) String() string {
	return fmt.Sprintf("RefCopy(%d, %d, %s)", a.start, a.stop, trimRef(a.ref, a.start, a.stop))
}

// HomAlt is an alternate sequence carried by both haplotype slots
type HomAlt struct {
	start, stop int
	seq         string
}

// NewHomAlt creates a homozygous alternate allele
func NewHomAlt(start, stop int, seq string) HomAlt {
	return HomAlt{start: start, stop: stop, seq: seq}
}

func (a HomAlt) Start() int                { return a.start }
func (a HomAlt) Stop() int                 { return a.stop }
func (a HomAlt) Len() int                  { return len(a.seq) }
func (a HomAlt) Seq() string               { return a.seq }
func (a HomAlt) Phase() (PhaseGroup, bool) { return 0, false }
func (a HomAlt) sealed()                   {}

// Key returns the identity of the allele
func (a HomAlt) Key() Key {
	return Key{Kind: KindHomAlt, Start: a.start, Stop: a.stop, Seq: a.seq}
}

func (a HomAlt) String() string { return a.Key().String() }

// HetAlt is an alternate sequence carried by one haplotype slot, optionally
// tied to a phase group. Two HetAlts with different phases are different alleles.
type HetAlt struct {
	start, stop int
	seq         string
	phase       PhaseGroup
	phased      bool
}

// NewHetAlt creates an unphased heterozygous alternate allele
func NewHetAlt(start, stop int, seq string) HetAlt {
	return HetAlt{start: start, stop: stop, seq: seq}
}

// NewPhasedHetAlt creates a heterozygous alternate allele bound to a phase group
func NewPhasedHetAlt(start, stop int, seq string, phase PhaseGroup) HetAlt {
	return HetAlt{start: start, stop: stop, seq: seq, phase: phase, phased: true}
}

func (a HetAlt) Start() int                { return a.start }
func (a HetAlt) Stop() int                 { return a.stop }
func (a HetAlt) Len() int                  { return len(a.seq) }
func (a HetAlt) Seq() string               { return a.seq }
func (a HetAlt) Phase() (PhaseGroup, bool) { return a.phase, a.phased }
func (a HetAlt) sealed()                   {}

// Key returns the identity of the allele, phase included
func (a HetAlt) Key() Key {
	return Key{Kind: KindHetAlt, Start: a.start, Stop: a.stop, Seq: a.seq, Phase: a.phase, Phased: a.phased}
}

func (a HetAlt) String() string { return a.Key().String() }

// HetAltFromKey rebuilds a HetAlt from its identity
func HetAltFromKey(k Key) HetAlt {
	return HetAlt{start: k.Start, stop: k.Stop, seq: k.Seq, phase: k.Phase, phased: k.Phased}
}

const (
	trimMin    = 15
	trimMargin = 5
)

func trimSeq(seq string) string {
	if seq == "" {
		return "-"
	}
	if len(seq) >= trimMin {
		return seq[:trimMargin] + "..." + seq[len(seq)-trimMargin:]
	}
	return seq
}

func trimRef(ref Reference, start, stop int) string {
	if stop-start >= trimMin {
		return ref.Slice(start, start+trimMargin) + "..." + ref.Slice(stop-trimMargin, stop)
	}
	return trimSeq(ref.Slice(start, stop))
}
