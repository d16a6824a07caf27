package match

// Status classifies the outcome of a comparison
type Status int

const (
	StatusUnknown Status = iota
	// StatusMatch: the two representations admit a common genotype
	StatusMatch
	// StatusHaplotypeMismatch: no haplotype sequence is shared
	StatusHaplotypeMismatch
	// StatusZygosityMismatch: haplotypes are shared but the genotype sets are disjoint
	StatusZygosityMismatch
)

// Code returns the one-character status code
func (s Status) Code() string {
	switch s {
	case StatusMatch:
		return "="
	case StatusHaplotypeMismatch:
		return "H"
	case StatusZygosityMismatch:
		return "Z"
	default:
		return "?"
	}
}

func (s Status) String() string {
	switch s {
	case StatusMatch:
		return "MATCH"
	case StatusHaplotypeMismatch:
		return "HAPLOTYPE_MISMATCH"
	case StatusZygosityMismatch:
		return "ZYGOSITY_MISMATCH"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the status by name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
