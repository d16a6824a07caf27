package model

import "time"

// Report is the output of one vgmatch run
type Report struct {
	RunID       string             `json:"run_id"`     // Unique per invocation
	Tool        string             `json:"tool"`       // Always "vgmatch"
	Version     string             `json:"version"`
	StartedAt   time.Time          `json:"started_at"`
	Source      string             `json:"source"`     // Input document path
	Comparisons []ComparisonReport `json:"comparisons"`
	Summary     Summary            `json:"summary"`
}

// ComparisonReport is the outcome of one comparison
type ComparisonReport struct {
	Name             string        `json:"name"`
	Contig           string        `json:"contig,omitempty"`
	Start            *int          `json:"start,omitempty"` // Joint bounds used for both graphs
	Stop             *int          `json:"stop,omitempty"`
	Status           string        `json:"status"`          // MATCH, HAPLOTYPE_MISMATCH, ZYGOSITY_MISMATCH or ERROR
	Code             string        `json:"code"`            // =, H, Z or !
	Matched          bool          `json:"matched"`
	Left             SideReport    `json:"left"`
	Right            SideReport    `json:"right"`
	SharedHaplotypes []string      `json:"shared_haplotypes,omitempty"`
	SharedGenotypes  []string      `json:"shared_genotypes,omitempty"`
	Error            string        `json:"error,omitempty"`
	Elapsed          time.Duration `json:"elapsed_ns"`
}

// SideReport describes one representation of a comparison
type SideReport struct {
	Loci        int      `json:"loci"`
	Paths       int      `json:"paths"`        // Haplotype paths through the graph
	SharedPaths int      `json:"shared_paths"` // Paths whose sequence the other side also spells
	Constraints int      `json:"constraints"`  // Distinct heterozygous alleles
	Genotypes   []string `json:"genotypes,omitempty"`
}

// Status values reported for comparisons that failed to run
const (
	StatusError = "ERROR"
	CodeError   = "!"
)

// Failed reports whether the comparison could not be evaluated
func (r *ComparisonReport) Failed() bool {
	return r.Error != ""
}

// Summary aggregates a run
type Summary struct {
	Total               int          `json:"total"`
	Matched             int          `json:"matched"`
	HaplotypeMismatches int          `json:"haplotype_mismatches"`
	ZygosityMismatches  int          `json:"zygosity_mismatches"`
	Errors              int          `json:"errors"`
	MatchRate           float64      `json:"match_rate"` // Matched over evaluated comparisons
	Paths               Distribution `json:"paths"`      // Paths per representation
	ElapsedMillis       Distribution `json:"elapsed_ms"`
}

// Distribution summarizes a sample
type Distribution struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
}
