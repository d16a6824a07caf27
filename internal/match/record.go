package match

import (
	"encoding/json"
	"fmt"

	"github.com/ppiankov/vgmatch/internal/allele"
	"github.com/ppiankov/vgmatch/internal/graph"
	"github.com/ppiankov/vgmatch/internal/haplotype"
)

// sideRecord is the cached form of a side
type sideRecord struct {
	Haplotypes  []haplotypeRecord  `json:"haplotypes"`
	Constraints []constraintRecord `json:"constraints"`
}

type haplotypeRecord struct {
	Seq  string         `json:"seq"`
	Alts []alleleRecord `json:"alts,omitempty"`
}

type constraintRecord struct {
	Allele alleleRecord `json:"allele"`
	Count  int          `json:"count"`
}

type alleleRecord struct {
	Start  int    `json:"start"`
	Stop   int    `json:"stop"`
	Seq    string `json:"seq"`
	Phase  int    `json:"phase,omitempty"`
	Phased bool   `json:"phased,omitempty"`
}

func toRecord(k allele.Key) alleleRecord {
	return alleleRecord{Start: k.Start, Stop: k.Stop, Seq: k.Seq, Phase: int(k.Phase), Phased: k.Phased}
}

func (r alleleRecord) key() allele.Key {
	return allele.Key{
		Kind:   allele.KindHetAlt,
		Start:  r.Start,
		Stop:   r.Stop,
		Seq:    r.Seq,
		Phase:  allele.PhaseGroup(r.Phase),
		Phased: r.Phased,
	}
}

func encodeSide(s *side) ([]byte, error) {
	rec := sideRecord{
		Haplotypes:  make([]haplotypeRecord, len(s.haplotypes)),
		Constraints: make([]constraintRecord, 0, len(s.constraints)),
	}
	for i, h := range s.haplotypes {
		rec.Haplotypes[i].Seq = h.Seq
		for _, a := range h.Alts {
			rec.Haplotypes[i].Alts = append(rec.Haplotypes[i].Alts, toRecord(a.Key()))
		}
	}
	for k, n := range s.constraints {
		rec.Constraints = append(rec.Constraints, constraintRecord{Allele: toRecord(k), Count: n})
	}
	return json.Marshal(rec)
}

func decodeSide(data []byte) (*side, error) {
	var rec sideRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode side: %w", err)
	}

	s := &side{
		haplotypes:  make([]haplotype.Haplotype, len(rec.Haplotypes)),
		constraints: make(graph.Constraints, len(rec.Constraints)),
	}
	for i, h := range rec.Haplotypes {
		s.haplotypes[i].Seq = h.Seq
		for _, a := range h.Alts {
			s.haplotypes[i].Alts = append(s.haplotypes[i].Alts, allele.HetAltFromKey(a.key()))
		}
	}
	for _, c := range rec.Constraints {
		s.constraints[c.Allele.key()] = c.Count
	}
	return s, nil
}
